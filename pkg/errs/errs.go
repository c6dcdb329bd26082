// Package errs defines the typed error taxonomy shared across the
// installer. Every error the core returns across a package boundary is one
// of these kinds, so callers can branch on Kind() or use errors.As against
// the concrete type.
package errs

import "fmt"

// ConfigError reports a problem loading or validating the embedded
// configuration (malformed TOML, missing required field, bad regex).
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
func (e *ConfigError) Kind() string  { return "config" }

// BindError reports a failure binding the local control-plane listener.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string { return fmt.Sprintf("bind %s: %v", e.Addr, e.Err) }
func (e *BindError) Unwrap() error { return e.Err }
func (e *BindError) Kind() string  { return "bind" }

// SourceError reports a failure resolving releases from a release source
// handler (bad response, malformed JSON, unknown handler name).
type SourceError struct {
	Handler string
	Package string
	Err     error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s (package %s): %v", e.Handler, e.Package, e.Err)
}
func (e *SourceError) Unwrap() error { return e.Err }
func (e *SourceError) Kind() string  { return "source" }

// NoMatchingRelease reports that a source resolved a release but no asset
// matched the package's match_regex.
type NoMatchingRelease struct {
	Package string
	Regex   string
}

func (e *NoMatchingRelease) Error() string {
	return fmt.Sprintf("package %s: no asset matched regex %q", e.Package, e.Regex)
}
func (e *NoMatchingRelease) Kind() string { return "no_matching_release" }

// NetworkError wraps a transport-level failure (timeout, connection reset,
// non-2xx status) from the HTTP client.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network %s: %v", e.URL, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }
func (e *NetworkError) Kind() string  { return "network" }

// ArchiveError reports a malformed archive or a path-traversal entry
// rejected during extraction.
type ArchiveError struct {
	Archive string
	Entry   string
	Err     error
}

func (e *ArchiveError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("archive %s: entry %q: %v", e.Archive, e.Entry, e.Err)
	}
	return fmt.Sprintf("archive %s: %v", e.Archive, e.Err)
}
func (e *ArchiveError) Unwrap() error { return e.Err }
func (e *ArchiveError) Kind() string  { return "archive" }

// FilesystemError reports a failure touching the local filesystem: an
// install directory that isn't empty for a fresh install, an archive entry
// that collides with an existing file, or a permission failure.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string { return fmt.Sprintf("filesystem %s: %v", e.Path, e.Err) }
func (e *FilesystemError) Unwrap() error { return e.Err }
func (e *FilesystemError) Kind() string  { return "filesystem" }

// InstanceConflict reports that another instance of the tool (or the
// installed application itself) is already running.
type InstanceConflict struct {
	ProcessName string
	PID         int32
}

func (e *InstanceConflict) Error() string {
	return fmt.Sprintf("instance already running: %s (pid %d)", e.ProcessName, e.PID)
}
func (e *InstanceConflict) Kind() string { return "instance_conflict" }

// LockError reports a failure acquiring or releasing the framework's
// internal synchronization, surfaced only in pathological shutdown races.
type LockError struct {
	Op  string
	Err error
}

func (e *LockError) Error() string { return fmt.Sprintf("lock %s: %v", e.Op, e.Err) }
func (e *LockError) Unwrap() error { return e.Err }
func (e *LockError) Kind() string  { return "lock" }
