// Package archive provides a uniform per-entry streaming view over the
// archive formats a release can ship: zip, tar.gz/tgz, and tar.xz/txz.
// Callers iterate entries with ForEach rather than extracting to a
// temporary directory first, so install can stream straight to the final
// destination.
package archive

import (
	"io"
	"path"
	"strings"

	"github.com/flanksource/maintenancetool/pkg/errs"
)

// EntryHandler is invoked once per archive entry in archive order. index is
// zero-based; total is the entry count when the format can report it
// up-front, or -1 when unknown (used only for progress display). p is the
// entry's normalized relative path ("/" separators, no leading separator);
// directory entries have a trailing "/". r streams that entry's contents
// and is only valid for the duration of the call. Returning an error
// aborts iteration and is propagated by ForEach.
type EntryHandler func(index int, total int, p string, r io.Reader) error

// Archive is an opened archive ready for streaming iteration.
type Archive interface {
	// ForEach walks every entry in archive order, invoking fn for each.
	ForEach(fn EntryHandler) error
}

// Open selects an Archive implementation by the extension of nameHint and
// wraps data for streaming iteration. Supported extensions: .zip,
// .tar.gz, .tgz, .tar.xz, .txz.
func Open(nameHint string, data []byte) (Archive, error) {
	lower := strings.ToLower(nameHint)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return newZipArchive(data)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return newTarGzArchive(data), nil
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return newTarXzArchive(data), nil
	default:
		return nil, &errs.ArchiveError{Archive: nameHint, Err: errUnsupportedFormat(lower)}
	}
}

type errUnsupportedFormat string

func (e errUnsupportedFormat) Error() string { return "unsupported archive format: " + string(e) }

// normalizePath converts an archive-native entry name into the
// slash-separated, leading-separator-stripped relative path form the spec
// requires, and reports whether the path is safe to extract (does not
// escape the root via ".." components).
func normalizePath(name string) (cleaned string, safe bool) {
	isDir := strings.HasSuffix(name, "/") || strings.HasSuffix(name, "\\")

	slashed := strings.ReplaceAll(name, "\\", "/")
	slashed = strings.TrimLeft(slashed, "/")

	clean := path.Clean(slashed)
	if clean == "." {
		clean = ""
	}

	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return slashed, false
	}

	if isDir && clean != "" {
		clean += "/"
	}

	return clean, true
}
