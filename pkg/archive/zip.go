package archive

import (
	"archive/zip"
	"bytes"

	"github.com/flanksource/maintenancetool/pkg/errs"
)

type zipArchive struct {
	reader *zip.Reader
}

func newZipArchive(data []byte) (*zipArchive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &errs.ArchiveError{Archive: "zip", Err: err}
	}
	return &zipArchive{reader: r}, nil
}

func (a *zipArchive) ForEach(fn EntryHandler) error {
	total := len(a.reader.File)
	for i, f := range a.reader.File {
		cleaned, safe := normalizePath(f.Name)
		if !safe {
			return &errs.ArchiveError{Archive: "zip", Entry: f.Name, Err: errPathEscape}
		}

		rc, err := f.Open()
		if err != nil {
			return &errs.ArchiveError{Archive: "zip", Entry: f.Name, Err: err}
		}

		err = fn(i, total, cleaned, rc)
		closeErr := rc.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return &errs.ArchiveError{Archive: "zip", Entry: f.Name, Err: closeErr}
		}
	}
	return nil
}

var errPathEscape = pathEscapeError{}

type pathEscapeError struct{}

func (pathEscapeError) Error() string { return "entry path escapes extraction root" }
