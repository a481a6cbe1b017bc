package reader

import (
	"archive/tar"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"

	"github.com/archivemaster/archivemaster/pkg/types"
)

type tarReader struct {
	source   string
	f        *os.File
	decomp   io.Closer
	tr       *tar.Reader
	warnings []*types.Warning
}

func openTar(path string, kind types.ArchiveKind) (types.ArchiveReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rdr := &tarReader{source: path, f: f}
	var stream io.Reader = f
	switch kind {
	case types.KindTarGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		rdr.decomp = gz
		stream = gz
	case types.KindTarBz2:
		stream = bzip2.NewReader(f)
	}
	rdr.tr = tar.NewReader(stream)
	return rdr, nil
}

// Next streams sequentially through the archive. Entry types the merge
// cannot carry (devices, FIFOs, hard links) are skipped with a warning.
func (t *tarReader) Next() (*types.ArchiveEntry, error) {
	for {
		hdr, err := t.tr.Next()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrCorruptEntry, t.source, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir, tar.TypeReg, tar.TypeSymlink:
		default:
			t.warnings = append(t.warnings, &types.Warning{
				Source: t.source,
				Entry:  hdr.Name,
				Err:    fmt.Errorf("%w: tar type %q", types.ErrUnsupportedEntry, hdr.Typeflag),
			})
			continue
		}

		name := hdr.Name
		if !utf8.ValidString(name) {
			name = strings.ToValidUTF8(name, "�")
			t.warnings = append(t.warnings, &types.Warning{
				Source: t.source,
				Entry:  name,
				Err:    fmt.Errorf("entry name is not valid unicode, decoded permissively"),
			})
		}

		entry := &types.ArchiveEntry{
			Path:    strings.TrimSuffix(name, "/"),
			Size:    hdr.Size,
			Mode:    hdr.FileInfo().Mode(),
			ModTime: hdr.ModTime,
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			entry.IsDir = true
		case tar.TypeSymlink:
			entry.IsSymlink = true
			entry.LinkTarget = hdr.Linkname
			entry.Size = 0
		default:
			entry.Body = t.tr
		}
		return entry, nil
	}
}

func (t *tarReader) Warnings() []*types.Warning { return t.warnings }

func (t *tarReader) Close() error {
	if t.decomp != nil {
		t.decomp.Close()
	}
	return t.f.Close()
}
