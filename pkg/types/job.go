package types

import "fmt"

const (
	// MinCompressionLevel is the weakest accepted compression level.
	MinCompressionLevel = 1
	// MaxCompressionLevel is the strongest accepted compression level.
	MaxCompressionLevel = 9
	// DefaultCompressionLevel is used when a job does not specify a level.
	DefaultCompressionLevel = 6
)

// ArchiveJob is a validated description of one merge operation. It is the
// contract between the CLI/GUI collaborators and the merge engine, and can be
// round-tripped through a YAML job file.
type ArchiveJob struct {
	// Inputs are the archives to merge, in order. Later inputs win name
	// collisions in the output.
	Inputs []string `yaml:"inputs"`
	// Output is the destination path for the merged archive.
	Output string `yaml:"output"`
	// Format is the container format of the output archive.
	Format OutputFormat `yaml:"format"`
	// Compression is the compression method for output entries. When empty
	// it defaults from the format.
	Compression CompressionType `yaml:"compression,omitempty"`
	// Level is the compression level, clamped to [1, 9].
	Level int `yaml:"level,omitempty"`
}

// Validate checks that the job description is internally consistent. It does
// not touch the filesystem.
func (j *ArchiveJob) Validate() error {
	if len(j.Inputs) == 0 {
		return fmt.Errorf("%w: no input archives", ErrInvalidJob)
	}
	if j.Output == "" {
		return fmt.Errorf("%w: no output path", ErrInvalidJob)
	}
	switch j.Format {
	case FormatZip, FormatTar, FormatTarGz, FormatTarBz2:
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidJob, j.Format)
	}
	if j.Compression == "" {
		return nil
	}
	if want := DefaultCompression(j.Format); j.Compression != want {
		return fmt.Errorf("%w: compression %q is not valid for format %q", ErrInvalidJob, j.Compression, j.Format)
	}
	return nil
}

// EffectiveLevel returns the compression level the engine will actually use,
// clamping out-of-range values rather than failing the job.
func (j *ArchiveJob) EffectiveLevel() int {
	if j.Level == 0 {
		return DefaultCompressionLevel
	}
	if j.Level < MinCompressionLevel {
		return MinCompressionLevel
	}
	if j.Level > MaxCompressionLevel {
		return MaxCompressionLevel
	}
	return j.Level
}
