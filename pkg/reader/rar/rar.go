package rar

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/nwaples/rardecode/v2"

	"github.com/archivemaster/archivemaster/pkg/types"
)

const maxLinkTarget = 32 * 1024

// New returns the default RAR extraction backend, built on the pure Go
// rardecode implementation. Multi-volume sets are followed through the
// volume chain starting from the first file of the set.
func New() types.RarExtractor { return &extractor{} }

type extractor struct{}

func (e *extractor) Open(set types.VolumeSet) (types.ArchiveReader, error) {
	rc, err := rardecode.OpenReader(set.First())
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", set.First(), err)
	}
	return &volumeReader{source: set.First(), rc: rc}, nil
}

type volumeReader struct {
	source   string
	rc       *rardecode.ReadCloser
	warnings []*types.Warning
}

func (r *volumeReader) Next() (*types.ArchiveEntry, error) {
	hdr, err := r.rc.Next()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrCorruptEntry, r.source, err)
	}

	mode := hdr.Mode()
	entry := &types.ArchiveEntry{
		// RAR archives written on Windows carry backslash separators.
		Path:    strings.ReplaceAll(hdr.Name, `\`, "/"),
		Size:    hdr.UnPackedSize,
		Mode:    mode,
		ModTime: hdr.ModificationTime,
		IsDir:   hdr.IsDir,
	}
	switch {
	case entry.IsDir:
	case mode&os.ModeSymlink != 0:
		entry.IsSymlink = true
		entry.Size = 0
		target, err := ioutil.ReadAll(io.LimitReader(r.rc, maxLinkTarget))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrCorruptEntry, entry.Path, err)
		}
		entry.LinkTarget = string(target)
	default:
		entry.Body = r.rc
	}
	return entry, nil
}

func (r *volumeReader) Warnings() []*types.Warning { return r.warnings }

func (r *volumeReader) Close() error { return r.rc.Close() }
