package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/apex/log"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "huginn"

type Config struct {
	Display   DisplayConfig   `koanf:"display"`
	Challenge ChallengeConfig `koanf:"challenge"`
	Logo      LogoConfig      `koanf:"logo"`
	Detect    DetectConfig    `koanf:"detect"`
	Scripts   ScriptsConfig   `koanf:"scripts"`
}

// DisplayConfig selects the info rows.
type DisplayConfig struct {
	Mode     string `koanf:"mode"` // "normal" or "challenge"
	Distro   bool   `koanf:"distro"`
	Age      bool   `koanf:"age"`
	Kernel   bool   `koanf:"kernel"`
	Packages bool   `koanf:"packages"`
	Shell    bool   `koanf:"shell"`
	Term     bool   `koanf:"term"`
	WM       bool   `koanf:"wm"`
	CPU      bool   `koanf:"cpu"`
	GPU      bool   `koanf:"gpu"`
	Theme    bool   `koanf:"theme"`
	Nix      bool   `koanf:"nix"`
	Usage    bool   `koanf:"usage"` // cpu/ram/disk bars

	// CustomInstallDate (YYYY-MM-DD) replaces the filesystem based age.
	CustomInstallDate string `koanf:"custom_install_date"`
}

// ChallengeConfig is the length of the "keep this install alive" challenge.
type ChallengeConfig struct {
	Years  int `koanf:"years"`
	Months int `koanf:"months"`
}

// LogoConfig controls how the distribution logo is drawn.
type LogoConfig struct {
	CustomPath string `koanf:"custom_path"` // overrides the logo store lookup
	Width      int    `koanf:"width"`       // columns
	Height     int    `koanf:"height"`      // rows
	Protocol   string `koanf:"protocol"`    // "auto", "kitty", "sixel", "iterm2" or "none"
	Fallback   string `koanf:"fallback"`    // "text" or "blocks"
	MaxColors  int    `koanf:"max_colors"`  // sixel palette size
	Dither     bool   `koanf:"dither"`
	Compress   bool   `koanf:"compress"`  // zlib kitty payloads
	Container  string `koanf:"container"` // iterm2 payload: "png" or "bmp"
}

// DetectConfig tunes terminal probing.
type DetectConfig struct {
	TimeoutMS int `koanf:"timeout_ms"`
	// TmuxPassthrough runs `tmux set -p allow-passthrough on` inside tmux.
	TmuxPassthrough bool `koanf:"tmux_passthrough"`
}

// ScriptsConfig holds shell commands run around the fetch.
type ScriptsConfig struct {
	PreFetch  string `koanf:"pre_fetch"`
	PostFetch string `koanf:"post_fetch"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Mode:     "normal",
			Distro:   true,
			Age:      true,
			Kernel:   true,
			Packages: true,
			Shell:    true,
			Term:     true,
			WM:       true,
			CPU:      true,
			GPU:      true,
			Theme:    true,
			Nix:      true,
			Usage:    true,
		},
		Challenge: ChallengeConfig{Years: 2},
		Logo: LogoConfig{
			Width:     20,
			Height:    10,
			Protocol:  "auto",
			Fallback:  "text",
			MaxColors: 256,
			Container: "png",
		},
		Detect: DetectConfig{
			TimeoutMS:       50,
			TmuxPassthrough: true,
		},
	}
}

// Load reads the config files in priority order (last wins) on top of the
// defaults. An explicit path must exist and parse. For the standard locations
// a broken file is reported once and the defaults are used, and when none
// exists the defaults are written to DefaultPath.
func Load(path string) (*Config, error) {
	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(expandPath(path)), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		return unmarshal(k)
	}
	return loadStandard(Paths(), DefaultPath(), log.Log), nil
}

// loadStandard always returns a usable config.
func loadStandard(paths []string, defaultPath string, l log.Interface) *Config {
	k := koanf.New(".")
	found := false
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		found = true
		if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
			l.WithError(err).WithField("path", p).Warn("failed to parse config, using defaults (fix the syntax or run 'huginn --generate-config')")
			return Default()
		}
	}

	if !found {
		if err := Default().Save(defaultPath); err != nil {
			l.WithError(err).WithField("path", defaultPath).Debug("could not create default config")
		}
		return Default()
	}

	cfg, err := unmarshal(k)
	if err != nil {
		l.WithError(err).Warn("invalid config, using defaults (run 'huginn --generate-config' to reset it)")
		return Default()
	}
	return cfg
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.Logo.CustomPath = expandPath(cfg.Logo.CustomPath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Paths returns the config file locations, lowest priority first.
func Paths() []string {
	paths := []string{filepath.Join(xdg.ConfigHome, appName, "config.toml")}

	// ~/.huginn.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+appName+".toml"))
	}

	// ./huginn.toml (pwd, highest priority)
	paths = append(paths, appName+".toml")

	return paths
}

// DefaultPath is where Save writes a generated config.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Validate rejects values that cannot be rendered.
func (c *Config) Validate() error {
	var errs []error
	if c.Challenge.Years < 0 || c.Challenge.Months < 0 {
		errs = append(errs, fmt.Errorf("challenge length must not be negative (%dy %dm)", c.Challenge.Years, c.Challenge.Months))
	}
	if c.Logo.Width <= 0 || c.Logo.Height <= 0 {
		errs = append(errs, fmt.Errorf("logo size must be positive (%dx%d)", c.Logo.Width, c.Logo.Height))
	}
	if c.Logo.MaxColors < 2 || c.Logo.MaxColors > 256 {
		errs = append(errs, fmt.Errorf("logo.max_colors must be within [2, 256], got %d", c.Logo.MaxColors))
	}
	switch c.Logo.Fallback {
	case "text", "blocks":
	default:
		errs = append(errs, fmt.Errorf("logo.fallback must be \"text\" or \"blocks\", got %q", c.Logo.Fallback))
	}
	switch c.Logo.Container {
	case "png", "bmp":
	default:
		errs = append(errs, fmt.Errorf("logo.container must be \"png\" or \"bmp\", got %q", c.Logo.Container))
	}
	if c.Display.CustomInstallDate != "" {
		if _, err := time.Parse(time.DateOnly, c.Display.CustomInstallDate); err != nil {
			errs = append(errs, fmt.Errorf("display.custom_install_date: %w", err))
		}
	}
	return errors.Join(errs...)
}

// DetectTimeout returns the terminal query deadline.
func (c *Config) DetectTimeout() time.Duration {
	if c.Detect.TimeoutMS <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(c.Detect.TimeoutMS) * time.Millisecond
}

// Save writes c as TOML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Parser().Marshal(c.toMap())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) toMap() map[string]any {
	return map[string]any{
		"display": map[string]any{
			"mode":                c.Display.Mode,
			"distro":              c.Display.Distro,
			"age":                 c.Display.Age,
			"kernel":              c.Display.Kernel,
			"packages":            c.Display.Packages,
			"shell":               c.Display.Shell,
			"term":                c.Display.Term,
			"wm":                  c.Display.WM,
			"cpu":                 c.Display.CPU,
			"gpu":                 c.Display.GPU,
			"theme":               c.Display.Theme,
			"nix":                 c.Display.Nix,
			"usage":               c.Display.Usage,
			"custom_install_date": c.Display.CustomInstallDate,
		},
		"challenge": map[string]any{
			"years":  int64(c.Challenge.Years),
			"months": int64(c.Challenge.Months),
		},
		"logo": map[string]any{
			"custom_path": c.Logo.CustomPath,
			"width":       int64(c.Logo.Width),
			"height":      int64(c.Logo.Height),
			"protocol":    c.Logo.Protocol,
			"fallback":    c.Logo.Fallback,
			"max_colors":  int64(c.Logo.MaxColors),
			"dither":      c.Logo.Dither,
			"compress":    c.Logo.Compress,
			"container":   c.Logo.Container,
		},
		"detect": map[string]any{
			"timeout_ms":       int64(c.Detect.TimeoutMS),
			"tmux_passthrough": c.Detect.TmuxPassthrough,
		},
		"scripts": map[string]any{
			"pre_fetch":  c.Scripts.PreFetch,
			"post_fetch": c.Scripts.PostFetch,
		},
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
