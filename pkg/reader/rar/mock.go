package rar

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/archivemaster/archivemaster/pkg/types"
)

// MockEntry describes one entry served by a Mock extractor.
type MockEntry struct {
	Path    string
	Dir     bool
	Symlink bool
	Target  string
	Content string
}

// Mock returns a fake RAR backend yielding the given entries for any volume
// set it is asked to open.
func Mock(entries ...MockEntry) types.RarExtractor {
	return &mockExtractor{entries: entries}
}

// MockError returns a fake RAR backend whose Open always fails with the
// given error.
func MockError(err error) types.RarExtractor {
	return &mockExtractor{err: err}
}

type mockExtractor struct {
	entries []MockEntry
	err     error
}

func (m *mockExtractor) Open(set types.VolumeSet) (types.ArchiveReader, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &mockReader{source: set.First(), entries: m.entries}, nil
}

type mockReader struct {
	source  string
	entries []MockEntry
	idx     int
}

func (m *mockReader) Next() (*types.ArchiveEntry, error) {
	if m.idx >= len(m.entries) {
		return nil, io.EOF
	}
	e := m.entries[m.idx]
	m.idx++

	entry := &types.ArchiveEntry{
		Path:    e.Path,
		ModTime: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	switch {
	case e.Dir:
		entry.IsDir = true
		entry.Mode = os.ModeDir | 0755
	case e.Symlink:
		entry.IsSymlink = true
		entry.LinkTarget = e.Target
		entry.Mode = os.ModeSymlink | 0777
	default:
		entry.Mode = 0644
		entry.Size = int64(len(e.Content))
		entry.Body = strings.NewReader(e.Content)
	}
	return entry, nil
}

func (m *mockReader) Warnings() []*types.Warning { return nil }

func (m *mockReader) Close() error { return nil }
