package facts

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CountPackages sums the packages of every package manager found under root.
// File based databases are read directly; rpm, guix and nix fall back to
// their CLIs.
func CountPackages(ctx context.Context, root string) int {
	total := 0
	total += countDirs(filepath.Join(root, "var", "lib", "pacman", "local"))
	total += countPrefixed(filepath.Join(root, "var", "lib", "dpkg", "status"), "Status: install ok installed")
	total += countPrefixed(filepath.Join(root, "lib", "apk", "db", "installed"), "P:")
	total += countPrefixed(filepath.Join(root, "var", "db", "xbps", "pkgdb-0.38.plist"), "<key>pkgver</key>")
	total += countDirs(filepath.Join(root, "var", "lib", "flatpak", "app"))
	total += countNested(filepath.Join(root, "var", "db", "pkg"))
	if root == "/" {
		total += countCommand(ctx, "rpm", "-qa")
		total += countCommand(ctx, "guix", "package", "--list-installed")
		total += countCommand(ctx, "nix-store", "--query", "--requisites", "/run/current-system/sw")
	}
	return total
}

// countDirs counts the directories in dir.
func countDirs(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			n++
		}
	}
	return n
}

// countNested counts the directories one level below dir, e.g. portage's
// category/package layout.
func countNested(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			n += countDirs(filepath.Join(dir, e.Name()))
		}
	}
	return n
}

// countPrefixed counts the lines of path starting with prefix, ignoring
// indentation.
func countPrefixed(path, prefix string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.HasPrefix(strings.TrimLeft(scanner.Text(), " \t"), prefix) {
			n++
		}
	}
	return n
}

func countCommand(ctx context.Context, name string, args ...string) int {
	if _, err := exec.LookPath(name); err != nil {
		return 0
	}
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return 0
	}
	return bytes.Count(bytes.TrimSpace(out), []byte{'\n'}) + min(1, len(bytes.TrimSpace(out)))
}
