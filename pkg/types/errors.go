package types

import (
	"errors"
	"fmt"
)

// Error taxonomy for merge operations. Per-entry and per-input failures are
// surfaced as Warnings through the ProgressSink and the merge continues;
// output-side failures and cancellation terminate the job.
var (
	// ErrInvalidJob means the job description failed validation.
	ErrInvalidJob = errors.New("invalid job description")
	// ErrUnsupportedFormat means a file matched no known archive signature.
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	// ErrIncompleteVolumeSet means a multi-volume RAR chain could not be
	// established from the given first volume.
	ErrIncompleteVolumeSet = errors.New("incomplete multi-volume set")
	// ErrRarBackendUnavailable means no RAR extraction backend is configured.
	ErrRarBackendUnavailable = errors.New("rar backend unavailable")
	// ErrCorruptEntry means one entry's content stream failed mid-read.
	ErrCorruptEntry = errors.New("corrupt archive entry")
	// ErrUnsupportedEntry means the output format cannot represent the entry,
	// such as a device node source record. The entry is dropped with a warning.
	ErrUnsupportedEntry = errors.New("entry not representable in output format")
	// ErrOutputWrite means the destination could not be written. Fatal.
	ErrOutputWrite = errors.New("output write error")
	// ErrCancelled means the job was cancelled by the caller.
	ErrCancelled = errors.New("merge cancelled")
	// ErrNoUsableInputs means every input was skipped during planning.
	ErrNoUsableInputs = errors.New("no usable input archives")
)

// Warning is a non-fatal problem encountered during a merge. Warnings are
// delivered through the ProgressSink with enough context for the caller to
// log them; the engine itself never logs.
type Warning struct {
	// Source is the input archive the warning originated from.
	Source string
	// Entry is the entry path within the source, when applicable.
	Entry string
	// Err is the underlying cause.
	Err error
}

func (w *Warning) Error() string {
	if w.Entry != "" {
		return fmt.Sprintf("%s: %s: %v", w.Source, w.Entry, w.Err)
	}
	return fmt.Sprintf("%s: %v", w.Source, w.Err)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (w *Warning) Unwrap() error { return w.Err }
