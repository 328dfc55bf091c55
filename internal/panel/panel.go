// Package panel renders host facts as the styled text shown beside the logo.
package panel

import (
	"fmt"
	"strings"
	"time"

	"github.com/blacktop/huginn"
	"github.com/blacktop/huginn/internal/config"
	"github.com/blacktop/huginn/internal/facts"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// MaxValueWidth is the widest value shown in an info row.
const MaxValueWidth = 50

// BarWidth is the number of cells in a progress bar.
const BarWidth = 14

// Item is one "label • value" row.
type Item struct {
	Label string
	Value string
	// Max overrides MaxValueWidth when positive.
	Max int
}

// Items selects the rows enabled in cfg, skipping unknown values.
func Items(f *facts.Facts, cfg config.DisplayConfig, now time.Time) []Item {
	var items []Item
	add := func(enabled bool, label, value string, max int) {
		if enabled && value != "" {
			items = append(items, Item{Label: label, Value: value, Max: max})
		}
	}
	var age string
	if !f.InstallDate.IsZero() {
		age = fmt.Sprintf("%d days", f.Age(now))
	}
	var packages string
	if f.Packages > 0 {
		packages = humanize.Comma(int64(f.Packages))
	}

	add(cfg.Distro, "distro", f.Distro, 0)
	add(cfg.Age, "age", age, 0)
	add(cfg.Kernel, "kernel", f.Kernel, 0)
	add(cfg.Packages, "packages", packages, 0)
	add(cfg.Shell, "shell", f.Shell, 0)
	add(cfg.Term, "term", f.Terminal, 0)
	add(cfg.WM, "wm", f.WM, 0)
	add(cfg.CPU, "cpu", f.CPUModel, 0)
	add(cfg.GPU, "gpu", f.GPU, 55)
	add(cfg.Theme, "theme", f.Theme, 0)
	add(cfg.Nix, "nix", f.Nix, 0)
	return items
}

// Rows formats items with right aligned labels and truncated values.
func Rows(items []Item) []string {
	width := 0
	for _, it := range items {
		width = max(width, runewidth.StringWidth(it.Label))
	}
	rows := make([]string, 0, len(items))
	for _, it := range items {
		limit := MaxValueWidth
		if it.Max > 0 {
			limit = it.Max
		}
		label := runewidth.FillLeft(it.Label, width)
		rows = append(rows, fmt.Sprintf("%s %s %s",
			labelStyle.Render(label),
			bulletStyle.Render("•"),
			ansi.Truncate(it.Value, limit, "…"),
		))
	}
	return rows
}

// Colorbar renders the rainbow strip.
func Colorbar() string {
	var sb strings.Builder
	for _, s := range colorbarSteps {
		sb.WriteString(lipgloss.NewStyle().Foreground(s.color).Render(s.blocks))
	}
	return sb.String()
}

// Progress renders a bar of width cells, filled to percent.
func Progress(percent, width int, s Scheme) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	full := strings.Repeat("━", filled)
	empty := strings.Repeat("━", width-filled)
	return lipgloss.NewStyle().Foreground(s.color(percent)).Render(full) + emptyStyle.Render(empty)
}

// FormatUptime renders d as "N days, H hrs", "H hrs, M mins" or "M mins".
func FormatUptime(d time.Duration) string {
	secs := int64(d.Seconds())
	days := secs / 86400
	hours := (secs % 86400) / 3600
	minutes := (secs % 3600) / 60
	switch {
	case days > 0:
		return fmt.Sprintf("%d days, %d hrs", days, hours)
	case hours > 0:
		return fmt.Sprintf("%d hrs, %d mins", hours, minutes)
	default:
		return fmt.Sprintf("%d mins", minutes)
	}
}

// Options selects the panel sections.
type Options struct {
	Display config.DisplayConfig
	// Challenge, when non-nil, appends the challenge box.
	Challenge *Challenge
	Now       time.Time
}

// Build renders the complete text panel.
func Build(f *facts.Facts, opts Options) huginn.TextPanel {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	rows := Rows(Items(f, opts.Display, now))
	width := 0
	for _, r := range rows {
		width = max(width, ansi.StringWidth(r))
	}

	var lines []string
	lines = append(lines, center(Colorbar(), width), "")
	if f.User != "" {
		lines = append(lines, center(greetStyle.Render("Hi!")+" "+userStyle.Render(f.User), width))
	}
	if f.Uptime > 0 {
		lines = append(lines, center(upStyle.Render("up")+" "+uptimeStyle.Render(FormatUptime(f.Uptime)), width))
	}
	lines = append(lines, "")
	lines = append(lines, rows...)

	if opts.Display.Usage {
		lines = append(lines, "")
		lines = append(lines, usageBars(f)...)
	}

	if opts.Challenge != nil {
		status := opts.Challenge.Status(f.InstallDate, now)
		lines = append(lines, "")
		lines = append(lines, strings.Split(boxStyle.Render(strings.Join(status.Lines(), "\n")), "\n")...)
	}
	return huginn.TextPanel{Lines: lines}
}

func usageBars(f *facts.Facts) []string {
	bar := func(label string, pct float64, detail string) string {
		p := int(pct)
		line := fmt.Sprintf("%s %3d%% %s", barLabelStyle.Render(fmt.Sprintf("%4s", label)), p, Progress(p, BarWidth, UsageScheme))
		if detail != "" {
			line += " " + emptyStyle.Render(detail)
		}
		return line
	}
	var out []string
	out = append(out, bar("cpu", f.CPUPercent, ""))
	if f.MemTotal > 0 {
		out = append(out, bar("ram", f.MemPercent(), humanize.IBytes(f.MemUsed)+" / "+humanize.IBytes(f.MemTotal)))
	}
	if f.DiskTotal > 0 {
		out = append(out, bar("disk", f.DiskPercent, humanize.IBytes(f.DiskUsed)+" / "+humanize.IBytes(f.DiskTotal)))
	}
	return out
}

// center left pads s to sit in the middle of width columns.
func center(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", (width-w)/2) + s
}
