package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for name, contents := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOpenUnsupportedFormat(t *testing.T) {
	_, err := Open("thing.rar", []byte{})
	assert.Error(t, err)
}

func TestZipForEachNormalizesAndReadsContents(t *testing.T) {
	data := buildZip(t, map[string]string{
		"bin/foo": "hello",
		"README":  "docs",
	})

	a, err := Open("pkg.zip", data)
	require.NoError(t, err)

	seen := map[string]string{}
	err = a.ForEach(func(index, total int, p string, r io.Reader) error {
		contents, readErr := io.ReadAll(r)
		if readErr != nil {
			return readErr
		}
		seen[p] = string(contents)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", seen["bin/foo"])
	assert.Equal(t, "docs", seen["README"])
}

func TestZipForEachRejectsPathEscape(t *testing.T) {
	data := buildZip(t, map[string]string{
		"../../etc/passwd": "evil",
	})

	a, err := Open("pkg.zip", data)
	require.NoError(t, err)

	err = a.ForEach(func(index, total int, p string, r io.Reader) error {
		return nil
	})
	assert.Error(t, err)
}

func TestNormalizePathStripsLeadingSeparatorsAndBackslashes(t *testing.T) {
	cleaned, safe := normalizePath("/foo\\bar.txt")
	assert.True(t, safe)
	assert.Equal(t, "foo/bar.txt", cleaned)
}

func TestNormalizePathDirectoryTrailingSlash(t *testing.T) {
	cleaned, safe := normalizePath("foo/bar/")
	assert.True(t, safe)
	assert.Equal(t, "foo/bar/", cleaned)
}

func TestNormalizePathRejectsDotDot(t *testing.T) {
	_, safe := normalizePath("../escape.txt")
	assert.False(t, safe)
}
