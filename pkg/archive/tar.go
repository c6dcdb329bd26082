package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"

	"github.com/flanksource/maintenancetool/pkg/errs"
	"github.com/ulikunitz/xz"
)

// tarArchive wraps a tar stream produced by an arbitrary decompressor.
// Tar does not record an entry count up front, so total is reported as
// unknown (-1) for every entry, matching spec.md §4.3's
// "total_or_unknown" semantics for formats that don't know their length.
type tarArchive struct {
	open func() (io.ReadCloser, error)
	kind string
}

func newTarGzArchive(data []byte) *tarArchive {
	return &tarArchive{
		kind: "tar.gz",
		open: func() (io.ReadCloser, error) {
			return gzip.NewReader(bytes.NewReader(data))
		},
	}
}

func newTarXzArchive(data []byte) *tarArchive {
	return &tarArchive{
		kind: "tar.xz",
		open: func() (io.ReadCloser, error) {
			xzr, err := xz.NewReader(bytes.NewReader(data))
			if err != nil {
				return nil, err
			}
			return io.NopCloser(xzr), nil
		},
	}
}

func (a *tarArchive) ForEach(fn EntryHandler) error {
	rc, err := a.open()
	if err != nil {
		return &errs.ArchiveError{Archive: a.kind, Err: err}
	}
	defer rc.Close()

	tr := tar.NewReader(rc)
	index := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &errs.ArchiveError{Archive: a.kind, Err: err}
		}

		name := hdr.Name
		if hdr.Typeflag == tar.TypeDir && !hasTrailingSlash(name) {
			name += "/"
		}

		cleaned, safe := normalizePath(name)
		if !safe {
			return &errs.ArchiveError{Archive: a.kind, Entry: hdr.Name, Err: errPathEscape}
		}

		if hdr.Typeflag != tar.TypeReg && hdr.Typeflag != tar.TypeDir {
			index++
			continue
		}

		if err := fn(index, -1, cleaned, tr); err != nil {
			return err
		}
		index++
	}
}

func hasTrailingSlash(s string) bool {
	return len(s) > 0 && s[len(s)-1] == '/'
}
