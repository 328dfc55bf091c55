// Package facts collects the host information shown in the text panel.
package facts

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/errgroup"
)

// Facts is a snapshot of the host. Empty strings mean unknown.
type Facts struct {
	User     string
	Distro   string
	Kernel   string
	Shell    string
	Terminal string
	WM       string
	CPUModel string
	GPU      string
	Theme    string
	Nix      string

	Packages    int
	Uptime      time.Duration
	InstallDate time.Time

	CPUPercent  float64
	MemUsed     uint64
	MemTotal    uint64
	DiskUsed    uint64
	DiskTotal   uint64
	DiskPercent float64
}

// MemPercent is the used share of physical memory.
func (f *Facts) MemPercent() float64 {
	if f.MemTotal == 0 {
		return 0
	}
	return float64(f.MemUsed) / float64(f.MemTotal) * 100
}

// Age is the number of whole days since InstallDate.
func (f *Facts) Age(now time.Time) int {
	if f.InstallDate.IsZero() {
		return 0
	}
	return int(now.Sub(f.InstallDate).Hours() / 24)
}

// Collector gathers Facts. Root and Getenv are replaceable for tests.
type Collector struct {
	// Root is the filesystem root used for file based lookups.
	Root string
	// InstallDate (YYYY-MM-DD) overrides the filesystem install time.
	InstallDate string
	// CPUSample is how long CPU usage is measured.
	CPUSample time.Duration

	Getenv func(string) string
	Logger log.Interface
}

// NewCollector returns a Collector for the running host.
func NewCollector(installDate string) *Collector {
	return &Collector{
		Root:        "/",
		InstallDate: installDate,
		CPUSample:   200 * time.Millisecond,
		Getenv:      os.Getenv,
		Logger:      log.Log,
	}
}

// Collect queries the host concurrently. Individual query failures leave
// their fields empty; only context cancellation is returned as an error.
func (c *Collector) Collect(ctx context.Context) (*Facts, error) {
	f := &Facts{
		User:     c.getenv("USER"),
		Shell:    shellName(c.getenv("SHELL")),
		Terminal: terminalName(c.getenv),
		WM:       windowManager(c.getenv),
		Theme:    c.theme(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		info, err := host.InfoWithContext(gctx)
		if err != nil {
			c.logger().WithError(err).Debug("host info")
			return gctx.Err()
		}
		f.Kernel = info.KernelVersion
		f.Uptime = time.Duration(info.Uptime) * time.Second
		f.Distro = c.distro(info.Platform, info.PlatformVersion)
		return nil
	})
	g.Go(func() error {
		infos, err := cpu.InfoWithContext(gctx)
		if err != nil || len(infos) == 0 {
			c.logger().WithError(err).Debug("cpu info")
			return gctx.Err()
		}
		f.CPUModel = cleanCPUModel(infos[0].ModelName)
		return nil
	})
	g.Go(func() error {
		pct, err := cpu.PercentWithContext(gctx, c.CPUSample, false)
		if err != nil || len(pct) == 0 {
			c.logger().WithError(err).Debug("cpu usage")
			return gctx.Err()
		}
		f.CPUPercent = pct[0]
		return nil
	})
	g.Go(func() error {
		vm, err := mem.VirtualMemoryWithContext(gctx)
		if err != nil {
			c.logger().WithError(err).Debug("memory")
			return gctx.Err()
		}
		f.MemUsed, f.MemTotal = vm.Used, vm.Total
		return nil
	})
	g.Go(func() error {
		du, err := disk.UsageWithContext(gctx, "/")
		if err != nil {
			c.logger().WithError(err).Debug("disk usage")
			return gctx.Err()
		}
		f.DiskUsed, f.DiskTotal, f.DiskPercent = du.Used, du.Total, du.UsedPercent
		return nil
	})
	g.Go(func() error {
		f.Packages = CountPackages(gctx, c.Root)
		return nil
	})
	g.Go(func() error {
		f.GPU = detectGPU(gctx)
		return nil
	})
	g.Go(func() error {
		f.Nix = nixGeneration(c.Root)
		return nil
	})
	g.Go(func() error {
		f.InstallDate = c.installDate()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

// Distro returns the distribution name without collecting the other facts.
func (c *Collector) Distro(ctx context.Context) string {
	var platform, version string
	if info, err := host.InfoWithContext(ctx); err == nil {
		platform, version = info.Platform, info.PlatformVersion
	}
	return c.distro(platform, version)
}

// distro prefers the os-release name; gopsutil's platform id is the fallback.
func (c *Collector) distro(platform, version string) string {
	if name := osReleaseName(filepath.Join(c.Root, "etc", "os-release")); name != "" {
		return name
	}
	if platform == "" {
		return ""
	}
	return strings.TrimSpace(platform + " " + version)
}

// installDate is the configured date, else the mtime of /ostree (atomic
// systems) or /.
func (c *Collector) installDate() time.Time {
	if c.InstallDate != "" {
		if t, err := time.ParseInLocation(time.DateOnly, c.InstallDate, time.Local); err == nil {
			return t
		}
		c.logger().WithField("date", c.InstallDate).Warn("invalid install date, using filesystem age")
	}
	for _, p := range []string{filepath.Join(c.Root, "ostree"), c.Root} {
		if fi, err := os.Stat(p); err == nil {
			return fi.ModTime()
		}
	}
	return time.Time{}
}

func (c *Collector) getenv(key string) string {
	if c.Getenv == nil {
		return ""
	}
	return c.Getenv(key)
}

func (c *Collector) logger() log.Interface {
	if c.Logger == nil {
		return log.Log
	}
	return c.Logger
}

// osReleaseName returns PRETTY_NAME, or NAME, from an os-release file.
func osReleaseName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var name, pretty string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "PRETTY_NAME":
			pretty = value
		case "NAME":
			name = value
		}
	}
	if pretty != "" {
		return pretty
	}
	return name
}

func cleanCPUModel(model string) string {
	r := strings.NewReplacer("(R)", "", "(TM)", "", "(tm)", "")
	return strings.Join(strings.Fields(r.Replace(model)), " ")
}
