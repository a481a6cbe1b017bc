package writer

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"

	"github.com/archivemaster/archivemaster/pkg/types"
)

type tarWriter struct {
	f         *os.File
	compdst   io.Closer
	tw        *tar.Writer
	dest, tmp string
	published bool
}

func newTarWriter(f *os.File, dest, tmp string, comp types.CompressionType, level int) (*tarWriter, error) {
	w := &tarWriter{f: f, dest: dest, tmp: tmp}
	var stream io.Writer = f
	switch comp {
	case types.CompressionGzip:
		gz, err := gzip.NewWriterLevel(f, level)
		if err != nil {
			return nil, err
		}
		w.compdst = gz
		stream = gz
	case types.CompressionBzip2:
		bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{Level: level})
		if err != nil {
			return nil, err
		}
		w.compdst = bz
		stream = bz
	}
	w.tw = tar.NewWriter(stream)
	return w, nil
}

// WriteEntry appends one entry with ustar-compatible headers, preserving
// permission bits and symlink targets. When a source stream fails mid-entry
// the remaining bytes are zero-filled so the archive stays structurally
// sound, and the corrupt-entry error is still reported.
func (w *tarWriter) WriteEntry(entry *types.ArchiveEntry, body io.Reader) error {
	hdr := &tar.Header{
		Name:    entry.Path,
		Mode:    int64(entry.Mode.Perm()),
		ModTime: entry.ModTime,
		Size:    entry.Size,
	}
	switch {
	case entry.IsDir:
		hdr.Typeflag = tar.TypeDir
		hdr.Name += "/"
		hdr.Size = 0
	case entry.IsSymlink:
		hdr.Typeflag = tar.TypeSymlink
		hdr.Linkname = entry.LinkTarget
		hdr.Size = 0
	default:
		hdr.Typeflag = tar.TypeReg
	}
	if err := w.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrOutputWrite, entry.Path, err)
	}
	if hdr.Typeflag != tar.TypeReg || body == nil {
		return nil
	}
	written, err := streamEntry(w.tw, body)
	if err != nil && errors.Is(err, types.ErrCorruptEntry) && written < entry.Size {
		if _, padErr := io.CopyN(w.tw, zeroReader{}, entry.Size-written); padErr != nil {
			return fmt.Errorf("%w: %s: %v", types.ErrOutputWrite, entry.Path, padErr)
		}
	}
	return err
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func (w *tarWriter) Finalize() error {
	if err := w.tw.Close(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrOutputWrite, err)
	}
	if w.compdst != nil {
		if err := w.compdst.Close(); err != nil {
			return fmt.Errorf("%w: %v", types.ErrOutputWrite, err)
		}
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

func (w *tarWriter) Abort() error {
	if w.published {
		return nil
	}
	w.tw.Close()
	if w.compdst != nil {
		w.compdst.Close()
	}
	w.f.Close()
	return os.Remove(w.tmp)
}
