// Package platform resolves the running OS/architecture, used to pick
// the right asset out of a release and to name the maintenance tool's
// own copied executable.
package platform

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// Platform is a target OS/architecture pair.
type Platform struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

var (
	globalOSOverride   string
	globalArchOverride string
	globalMutex        sync.RWMutex
)

// String renders "os-arch". The "#PLATFORM#" token in a package's
// match_regex is substituted with OS alone (see pkg/tasks), not with this
// form.
func (p Platform) String() string {
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}

// SetGlobalOverrides lets the --os/--arch flags force platform detection,
// mainly for testing an install against a non-native target.
func SetGlobalOverrides(osOverride, archOverride string) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalOSOverride = osOverride
	globalArchOverride = archOverride
}

// Current returns the running platform, honoring any override set via
// SetGlobalOverrides.
func Current() Platform {
	globalMutex.RLock()
	defer globalMutex.RUnlock()

	os := globalOSOverride
	arch := globalArchOverride
	if os == "" {
		os = runtime.GOOS
	}
	if arch == "" {
		arch = runtime.GOARCH
	}
	return Platform{OS: os, Arch: arch}
}

// IsWindows reports whether p is a Windows target.
func (p Platform) IsWindows() bool {
	return p.OS == "windows"
}

// BinaryExtension returns ".exe" on Windows, "" otherwise.
func (p Platform) BinaryExtension() string {
	if p.IsWindows() {
		return ".exe"
	}
	return ""
}

// AddExtension appends the platform's binary extension to filename,
// unless it is already present.
func (p Platform) AddExtension(filename string) string {
	ext := p.BinaryExtension()
	if ext == "" || strings.HasSuffix(filename, ext) {
		return filename
	}
	return filename + ext
}
