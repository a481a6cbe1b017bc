package types

// ArchiveReader lazily enumerates the entries of one logical archive, which
// may be a single file or a reassembled multi-volume set. Implementations
// hold the underlying file handles open for the duration of the session.
//
// Readers follow a single-cursor discipline: the Body of the entry returned
// by Next is invalidated by the following call to Next or Close, so content
// must be consumed (or abandoned) one entry at a time. No implementation
// buffers an entire archive in memory.
type ArchiveReader interface {
	// Next advances to the next entry, returning io.EOF after the last one.
	Next() (*ArchiveEntry, error)
	// Warnings returns the non-fatal problems accumulated so far, such as
	// entry names that required a permissive Unicode decode.
	Warnings() []*Warning
	// Close releases the session and any open volume handles.
	Close() error
}

// RarExtractor is the injected capability that opens a resolved RAR volume
// set as one logical stream. Modeling this as an interface keeps the native
// backend swappable and lets tests substitute a fake.
type RarExtractor interface {
	// Open opens the volume set for enumeration.
	Open(set VolumeSet) (ArchiveReader, error)
}
