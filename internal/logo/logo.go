// Package logo maps a distribution name to a logo file in the user's data
// directory.
package logo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/blacktop/huginn"
)

// Generic is the logo used when a distribution has no logo of its own.
const Generic = "linux"

// known maps a substring of the lowercased distribution name to a logo name.
// Order matters: "lmde" must win over "debian" and "endeavour" over "arch".
var known = []struct{ match, name string }{
	{"endeavour", "endeavouros"},
	{"garuda", "garuda"},
	{"manjaro", "manjaro"},
	{"arch", "arch"},
	{"lmde", "lmde"},
	{"mint", "mint"},
	{"pop", "popos"},
	{"ubuntu", "ubuntu"},
	{"debian", "debian"},
	{"fedora", "fedora"},
	{"gentoo", "gentoo"},
	{"guix", "guix"},
	{"nixos", "nixos"},
	{"obsidian", "obsidian"},
	{"venom", "venom"},
}

// extensions are tried in order for every logo name.
var extensions = []string{".svg", ".png"}

// Name returns the logo name for a distribution, or Generic.
func Name(distro string) string {
	d := strings.ToLower(distro)
	for _, k := range known {
		if strings.Contains(d, k.match) {
			return k.name
		}
	}
	return Generic
}

// Store finds logo files in a directory.
type Store struct {
	Dir string
	// CustomPath, when set, is used for every distribution.
	CustomPath string
}

// DefaultDir is $XDG_DATA_HOME/huginn/logos.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "huginn", "logos")
}

// NewStore returns a Store rooted at DefaultDir.
func NewStore(customPath string) *Store {
	return &Store{Dir: DefaultDir(), CustomPath: customPath}
}

// Find returns the path of the logo for distro, falling back to the generic
// logo. It returns huginn.ErrLogoNotFound when neither exists.
func (s *Store) Find(distro string) (string, error) {
	if s.CustomPath != "" {
		if _, err := os.Stat(s.CustomPath); err != nil {
			return "", fmt.Errorf("custom logo %s: %w", s.CustomPath, huginn.ErrLogoNotFound)
		}
		return s.CustomPath, nil
	}
	names := []string{Name(distro)}
	if names[0] != Generic {
		names = append(names, Generic)
	}
	for _, name := range names {
		for _, ext := range extensions {
			p := filepath.Join(s.Dir, name+ext)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("no logo for %q in %s: %w", distro, s.Dir, huginn.ErrLogoNotFound)
}

// Load finds and decodes the logo for distro.
func (s *Store) Load(distro string) (huginn.Logo, error) {
	path, err := s.Find(distro)
	if err != nil {
		return nil, err
	}
	return huginn.OpenLogo(path)
}
