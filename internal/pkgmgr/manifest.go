// Package pkgmgr installs the application's pinned runtime packages
// before the service can start.
package pkgmgr

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Package is one pinned runtime dependency.
type Package struct {
	Name    string
	Version string
}

// Pin renders the package back into manifest form.
func (p Package) Pin() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "==" + p.Version
}

// DefaultManifest is the documented default package set for the EOS
// application, used when no manifest file is supplied on first-run
// bootstrap.
func DefaultManifest() []Package {
	return []Package{
		{Name: "flask", Version: "3.0.3"},
		{Name: "sqlalchemy", Version: "2.0.35"},
		{Name: "psycopg2-binary", Version: "2.9.9"},
		{Name: "pyjwt", Version: "2.9.0"},
	}
}

// LoadManifest reads one package==version pin per line from path. Blank
// lines and #-comments are skipped; carriage returns are stripped. An
// absent manifest file is not an error: the default package set is
// returned so a first-run bootstrap can proceed.
func LoadManifest(path string) ([]Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultManifest(), nil
		}
		return nil, fmt.Errorf("pkgmgr: read manifest %s: %w", path, err)
	}

	var pkgs []Package
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "\r", ""))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, version, pinned := strings.Cut(line, "==")
		name = strings.TrimSpace(name)
		version = strings.TrimSpace(version)
		if name == "" || (pinned && version == "") {
			return nil, fmt.Errorf("pkgmgr: manifest %s line %d: malformed pin %q", path, i+1, line)
		}
		pkgs = append(pkgs, Package{Name: name, Version: version})
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("pkgmgr: manifest %s contains no packages", path)
	}
	return pkgs, nil
}
