package types

// ArchiveKind represents the detected container format of an input archive.
type ArchiveKind string

const (
	// KindUnknown is returned when a file matches no known archive signature.
	KindUnknown ArchiveKind = ""
	// KindZip is a ZIP archive.
	KindZip ArchiveKind = "zip"
	// KindRar is a RAR archive, possibly the first volume of a multi-volume set.
	KindRar ArchiveKind = "rar"
	// KindTar is an uncompressed TAR archive.
	KindTar ArchiveKind = "tar"
	// KindTarGz is a gzip-compressed TAR archive.
	KindTarGz ArchiveKind = "tar.gz"
	// KindTarBz2 is a bzip2-compressed TAR archive.
	KindTarBz2 ArchiveKind = "tar.bz2"
)

// OutputFormat represents the container format of the merged output archive.
type OutputFormat string

const (
	// FormatZip produces a ZIP output archive.
	FormatZip OutputFormat = "zip"
	// FormatTar produces an uncompressed TAR output archive.
	FormatTar OutputFormat = "tar"
	// FormatTarGz produces a gzip-compressed TAR output archive.
	FormatTarGz OutputFormat = "tar.gz"
	// FormatTarBz2 produces a bzip2-compressed TAR output archive.
	FormatTarBz2 OutputFormat = "tar.bz2"
)

// CompressionType represents the compression method applied to output entries.
type CompressionType string

const (
	// CompressionDeflate is the standard ZIP entry compression.
	CompressionDeflate CompressionType = "deflate"
	// CompressionGzip wraps TAR output in a gzip stream.
	CompressionGzip CompressionType = "gzip"
	// CompressionBzip2 wraps TAR output in a bzip2 stream.
	CompressionBzip2 CompressionType = "bzip2"
	// CompressionNone writes TAR output uncompressed.
	CompressionNone CompressionType = "none"
)

// DefaultCompression returns the compression type implied by an output format.
func DefaultCompression(f OutputFormat) CompressionType {
	switch f {
	case FormatZip:
		return CompressionDeflate
	case FormatTarGz:
		return CompressionGzip
	case FormatTarBz2:
		return CompressionBzip2
	}
	return CompressionNone
}
