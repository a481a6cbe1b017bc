package writer

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"

	"github.com/archivemaster/archivemaster/pkg/types"
)

type zipWriter struct {
	f         *os.File
	zw        *zip.Writer
	dest, tmp string
	published bool
}

func newZipWriter(f *os.File, dest, tmp string, level int) *zipWriter {
	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	return &zipWriter{f: f, zw: zw, dest: dest, tmp: tmp}
}

// WriteEntry appends one entry, deflated at the configured level. Directory
// entries use the trailing-slash convention. Entry names are written with
// the UTF-8 flag set by the underlying encoder. Symlinks are written the
// Info-ZIP way, the link mode bit set and the target stored as the body.
func (w *zipWriter) WriteEntry(entry *types.ArchiveEntry, body io.Reader) error {
	hdr := &zip.FileHeader{
		Name:     entry.Path,
		Method:   zip.Deflate,
		Modified: entry.ModTime,
	}
	hdr.SetMode(entry.Mode)
	switch {
	case entry.IsDir:
		hdr.Name += "/"
		hdr.Method = zip.Store
	case entry.IsSymlink:
		hdr.SetMode(entry.Mode | os.ModeSymlink)
		hdr.Method = zip.Store
	}
	out, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrOutputWrite, entry.Path, err)
	}
	if entry.IsSymlink {
		if _, err := out.Write([]byte(entry.LinkTarget)); err != nil {
			return fmt.Errorf("%w: %s: %v", types.ErrOutputWrite, entry.Path, err)
		}
		return nil
	}
	if entry.IsDir || body == nil {
		return nil
	}
	_, err = streamEntry(out, body)
	return err
}

func (w *zipWriter) Finalize() error {
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrOutputWrite, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrOutputWrite, err)
	}
	if err := os.Rename(w.tmp, w.dest); err != nil {
		return fmt.Errorf("%w: %v", types.ErrOutputWrite, err)
	}
	w.published = true
	return nil
}

func (w *zipWriter) Abort() error {
	if w.published {
		return nil
	}
	w.zw.Close()
	w.f.Close()
	return os.Remove(w.tmp)
}
