package types

import (
	"io"
	"os"
	"time"
)

// ArchiveEntry is one logical file, directory, or symlink record inside an
// archive, together with its metadata and (for regular files) a content
// stream.
type ArchiveEntry struct {
	// Path is the forward-slash separated relative path of the entry.
	Path string
	// Size is the uncompressed size of the entry contents in bytes.
	Size int64
	// Mode holds the permission and type bits of the entry.
	Mode os.FileMode
	// ModTime is the entry's modification timestamp.
	ModTime time.Time
	// IsDir reports whether the entry is a directory record.
	IsDir bool
	// IsSymlink reports whether the entry is a symbolic link record.
	IsSymlink bool
	// LinkTarget is the symlink target when IsSymlink is true.
	LinkTarget string
	// Body streams the entry contents. It is owned by the producing
	// ArchiveReader and is only valid until the next call to Next or Close
	// on that reader.
	Body io.Reader
}

// VolumeSet is the ordered list of files making up one logical RAR archive.
// A non-multi-volume archive is a set of size one. Volumes are contiguous;
// the set is resolved from the first volume's naming pattern.
type VolumeSet []string

// First returns the first volume of the set.
func (v VolumeSet) First() string { return v[0] }
