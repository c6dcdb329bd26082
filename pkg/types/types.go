// Package types holds the shared data model: the embedded configuration
// shape, release/file records, and the on-disk installation database
// entries. These types are immutable value objects; the mutable framework
// state that owns them lives in pkg/framework.
package types

import (
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/api/icons"
	"github.com/flanksource/maintenancetool/pkg/version"
)

// File is a named, downloadable artifact belonging to a Release. Name is
// matched against a package's platform regex; URL is fetched verbatim.
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Release is one versioned bundle of Files returned by a release source.
type Release struct {
	Version version.Version `json:"version"`
	Files   []File          `json:"files"`
}

// PackageSource names the handler that resolves releases for a package,
// the regex (containing a literal "#PLATFORM#" token) used to pick the
// right File from a Release, and an opaque handler-specific config table
// decoded generically from TOML.
type PackageSource struct {
	HandlerName string         `json:"handler_name" toml:"name"`
	MatchRegex  string         `json:"match_regex" toml:"match"`
	Config      map[string]any `json:"config" toml:"config"`
}

// PackageDescription is one installable entry in the embedded catalog.
type PackageDescription struct {
	Name        string        `json:"name" toml:"name"`
	Description string        `json:"description" toml:"description"`
	Default     *bool         `json:"default,omitempty" toml:"default"`
	Source      PackageSource `json:"source" toml:"source"`
}

// IsDefault reports whether this package should be preselected, treating
// an absent Default field as false.
func (p PackageDescription) IsDefault() bool {
	return p.Default != nil && *p.Default
}

// GeneralConfig holds catalog-wide display strings.
type GeneralConfig struct {
	Name              string `json:"name" toml:"name"`
	InstallingMessage string `json:"installing_message" toml:"installing_message"`
}

// Config is the fully decoded embedded catalog. It is built once at
// process start and never mutated afterward.
type Config struct {
	General  GeneralConfig        `json:"general" toml:"general"`
	Packages []PackageDescription `json:"packages" toml:"packages"`
}

// PackageByName returns the PackageDescription with the given name, or
// false if no such package exists in the catalog.
func (c Config) PackageByName(name string) (PackageDescription, bool) {
	for _, p := range c.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return PackageDescription{}, false
}

// DefaultPackageNames returns the names of every package whose Default
// field is true, in catalog order.
func (c Config) DefaultPackageNames() []string {
	var names []string
	for _, p := range c.Packages {
		if p.IsDefault() {
			names = append(names, p.Name)
		}
	}
	return names
}

// LocalInstallation is one package's entry in the on-disk database: the
// version that was installed and the exact ordered list of paths (in
// creation order, each ancestor directory before the files inside it)
// that install left behind.
type LocalInstallation struct {
	Name    string          `json:"name"`
	Version version.Version `json:"version"`
	Files   []string        `json:"files"`
}

// Pretty renders a one-line colored summary for CLI/log output, matching
// the teacher pack's clicky.Text summary convention.
func (l LocalInstallation) Pretty() api.Text {
	text := clicky.Text("").Add(icons.Success).Append(" " + l.Name, "bold")
	text = text.Append("@" + l.Version.String())
	text = text.Append(fmt.Sprintf(" (%d files)", len(l.Files)), "text-muted")
	return text
}

// InstallationStatus is the read-only snapshot returned by
// GET /api/installation-status.
type InstallationStatus struct {
	Database           []LocalInstallation `json:"database"`
	InstallPath        string              `json:"install_path"`
	PreexistingInstall bool                `json:"preexisting_install"`
}
