package types

import "io"

// ArchiveWriter produces one output archive, streaming entry contents
// directly from their source readers. Writers stage output at a temporary
// path; the destination file only comes into existence on Finalize, so a
// partial or failed merge never leaves an artifact a consumer could mistake
// for a complete archive.
type ArchiveWriter interface {
	// WriteEntry appends one entry. Body may be nil for directories and
	// symlinks. Read-side failures are wrapped in ErrCorruptEntry,
	// write-side failures in ErrOutputWrite, and entries the format cannot
	// represent in ErrUnsupportedEntry.
	WriteEntry(entry *ArchiveEntry, body io.Reader) error
	// Finalize flushes all state and atomically publishes the output file.
	Finalize() error
	// Abort discards the staged output. Safe to call after a failed
	// Finalize; a no-op once the output has been published.
	Abort() error
}
