package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/archivemaster/archivemaster/pkg/types"
	"github.com/archivemaster/archivemaster/pkg/util"
)

// Create opens a writer session for the given destination. Output is staged
// at a temporary sibling path and only renamed into place by Finalize, so a
// failed or cancelled merge never leaves a partial file at the destination.
func Create(dest string, f types.OutputFormat, comp types.CompressionType, level int) (types.ArchiveWriter, error) {
	if comp == "" {
		comp = types.DefaultCompression(f)
	}
	tmp := fmt.Sprintf("%s.tmp-%s", dest, util.GenerateToken(8))
	file, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrOutputWrite, err)
	}
	switch f {
	case types.FormatZip:
		return newZipWriter(file, dest, tmp, level), nil
	case types.FormatTar, types.FormatTarGz, types.FormatTarBz2:
		w, err := newTarWriter(file, dest, tmp, comp, level)
		if err != nil {
			file.Close()
			os.Remove(tmp)
			return nil, fmt.Errorf("%w: %v", types.ErrOutputWrite, err)
		}
		return w, nil
	}
	file.Close()
	os.Remove(tmp)
	return nil, fmt.Errorf("%w: unknown output format %q", types.ErrInvalidJob, f)
}

// streamEntry copies one entry body, tagging failures by side: read errors
// mean the source entry is corrupt, write errors mean the destination
// cannot be trusted. Returns the number of bytes written.
func streamEntry(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("%w: %v", types.ErrOutputWrite, werr)
			}
			written += int64(n)
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("%w: %v", types.ErrCorruptEntry, rerr)
		}
	}
}
