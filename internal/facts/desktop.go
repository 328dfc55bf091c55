package facts

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// terminalName returns a display name for the terminal emulator.
func terminalName(getenv func(string) string) string {
	if tp := getenv("TERM_PROGRAM"); tp != "" {
		switch strings.ToLower(tp) {
		case "ghostty":
			return "Ghostty"
		case "kitty":
			return "Kitty"
		case "wezterm":
			return "WezTerm"
		case "alacritty":
			return "Alacritty"
		case "iterm.app":
			return "iTerm2"
		case "apple_terminal":
			return "Terminal.app"
		case "vscode":
			return "VS Code"
		}
		return tp
	}
	if getenv("KITTY_WINDOW_ID") != "" {
		return "Kitty"
	}
	if t := getenv("TERMINAL"); t != "" {
		return filepath.Base(t)
	}
	return getenv("TERM")
}

// windowManager returns the desktop or window manager name.
func windowManager(getenv func(string) string) string {
	for _, key := range []string{"XDG_CURRENT_DESKTOP", "XDG_SESSION_DESKTOP", "DESKTOP_SESSION"} {
		v := getenv(key)
		if v == "" {
			continue
		}
		switch strings.ToLower(v) {
		case "hyprland":
			return "Hyprland"
		case "sway":
			return "Sway"
		}
		return v
	}
	return ""
}

func shellName(shell string) string {
	if shell == "" {
		return ""
	}
	return filepath.Base(shell)
}

// theme returns $GTK_THEME or the gtk-3.0 theme name.
func (c *Collector) theme() string {
	if t := c.getenv("GTK_THEME"); t != "" {
		return t
	}
	home := c.getenv("HOME")
	if home == "" {
		return ""
	}
	f, err := os.Open(filepath.Join(home, ".config", "gtk-3.0", "settings.ini"))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if ok && strings.TrimSpace(key) == "gtk-theme-name" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func detectGPU(ctx context.Context) string {
	if _, err := exec.LookPath("lspci"); err != nil {
		return ""
	}
	out, err := exec.CommandContext(ctx, "lspci").Output()
	if err != nil {
		return ""
	}
	return ParseLspci(string(out))
}

var gpuVendors = strings.NewReplacer(
	"NVIDIA Corporation", "NVIDIA",
	"Advanced Micro Devices, Inc. [AMD/ATI]", "AMD",
	"Advanced Micro Devices, Inc.", "AMD",
	"Intel Corporation", "Intel",
	"[AMD/ATI]", "",
)

// ParseLspci returns the first display controller in lspci output with
// vendor names shortened.
func ParseLspci(out string) string {
	for line := range strings.Lines(out) {
		if !strings.Contains(line, "VGA compatible controller") && !strings.Contains(line, "3D controller") {
			continue
		}
		parts := strings.SplitN(line, ":", 3)
		if len(parts) < 3 {
			continue
		}
		return strings.Join(strings.Fields(gpuVendors.Replace(parts[2])), " ")
	}
	return ""
}

// nixGeneration returns the current NixOS system generation number.
func nixGeneration(root string) string {
	if _, err := os.Stat(filepath.Join(root, "etc", "NIXOS")); err != nil {
		if _, err := os.Stat(filepath.Join(root, "run", "current-system")); err != nil {
			return ""
		}
	}
	for _, p := range []string{
		filepath.Join(root, "nix", "var", "nix", "profiles", "system"),
		filepath.Join(root, "run", "current-system"),
	} {
		link, err := os.Readlink(p)
		if err != nil {
			continue
		}
		if gen := generation(filepath.Base(link)); gen != "" {
			return gen
		}
	}
	return ""
}

// generation extracts 123 from "system-123-link".
func generation(name string) string {
	for part := range strings.SplitSeq(name, "-") {
		if part != "" && strings.Trim(part, "0123456789") == "" {
			return part
		}
	}
	return ""
}
