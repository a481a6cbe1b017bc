package reader

import (
	"archive/zip"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/archivemaster/archivemaster/pkg/types"
)

// Symlink targets are stored as tiny entry bodies. Anything larger than this
// is not a sane link target.
const maxLinkTarget = 32 * 1024

type zipReader struct {
	source   string
	rc       *zip.ReadCloser
	idx      int
	cur      io.ReadCloser
	warnings []*types.Warning
}

func openZip(path string) (types.ArchiveReader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &zipReader{source: path, rc: rc}, nil
}

// Next walks the central directory in archive order. The previous entry's
// content stream is closed before the next one is opened, keeping a single
// entry's decompressor live at a time.
func (z *zipReader) Next() (*types.ArchiveEntry, error) {
	if z.cur != nil {
		z.cur.Close()
		z.cur = nil
	}
	if z.idx >= len(z.rc.File) {
		return nil, io.EOF
	}
	f := z.rc.File[z.idx]
	z.idx++

	name := f.Name
	if !utf8.ValidString(name) {
		name = strings.ToValidUTF8(name, "�")
		z.warnings = append(z.warnings, &types.Warning{
			Source: z.source,
			Entry:  name,
			Err:    fmt.Errorf("entry name is not valid unicode, decoded permissively"),
		})
	}

	mode := f.Mode()
	entry := &types.ArchiveEntry{
		Path:    strings.TrimSuffix(name, "/"),
		Size:    int64(f.UncompressedSize64),
		Mode:    mode,
		ModTime: f.Modified,
		IsDir:   f.FileInfo().IsDir(),
	}

	switch {
	case entry.IsDir:
	case mode&os.ModeSymlink != 0:
		entry.IsSymlink = true
		target, err := z.readLinkTarget(f)
		if err != nil {
			return nil, err
		}
		entry.LinkTarget = target
	default:
		body, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrCorruptEntry, entry.Path, err)
		}
		z.cur = body
		entry.Body = body
	}
	return entry, nil
}

func (z *zipReader) readLinkTarget(f *zip.File) (string, error) {
	body, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrCorruptEntry, f.Name, err)
	}
	defer body.Close()
	target, err := ioutil.ReadAll(io.LimitReader(body, maxLinkTarget))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrCorruptEntry, f.Name, err)
	}
	return string(target), nil
}

func (z *zipReader) Warnings() []*types.Warning { return z.warnings }

func (z *zipReader) Close() error {
	if z.cur != nil {
		z.cur.Close()
		z.cur = nil
	}
	return z.rc.Close()
}
