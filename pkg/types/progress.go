package types

import "time"

// EventType classifies a ProgressSink notification.
type EventType string

const (
	// EventStarted fires once when the job begins planning.
	EventStarted EventType = "started"
	// EventEntryProcessed fires after each entry is written.
	EventEntryProcessed EventType = "entry-processed"
	// EventWarning fires for every non-fatal problem.
	EventWarning EventType = "warning"
	// EventCompleted fires when the output has been published.
	EventCompleted EventType = "completed"
	// EventCancelled fires when the job stops on a cancellation request.
	EventCancelled EventType = "cancelled"
	// EventFailed fires when the job terminates on a fatal error.
	EventFailed EventType = "failed"
)

// Event is a single ProgressSink notification.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// Entry is the output path of the entry just written, for
	// EventEntryProcessed.
	Entry string
	// Warning carries the problem detail for EventWarning.
	Warning *Warning
	// State is a snapshot of job progress at the time of the event.
	State ProgressState
	// Summary is populated on EventCompleted.
	Summary *OutputSummary
	// Err is populated on EventFailed.
	Err error
}

// ProgressSink receives progress and log events from a running merge. It is
// invoked from the job's worker goroutine and must be safe to call there.
type ProgressSink interface {
	Notify(event *Event)
}

// ProgressState is an advisory snapshot of one merge job. It is updated by
// the worker and read by the caller; readers tolerate stale values.
type ProgressState struct {
	// TotalEntries is the number of entries planned for the output.
	TotalEntries uint64
	// ProcessedEntries is the number of entries written so far.
	ProcessedEntries uint64
	// CurrentFile is the entry most recently written.
	CurrentFile string
	// Elapsed is the time since the job started.
	Elapsed time.Duration
	// Cancelled reports whether cancellation has been requested.
	Cancelled bool
}

// OutputSummary describes a completed merge.
type OutputSummary struct {
	// OutputPath is the published archive.
	OutputPath string
	// EntriesWritten is the number of entries in the output.
	EntriesWritten uint64
	// Warnings is the number of non-fatal problems reported.
	Warnings int
	// OutputSize is the size of the output archive in bytes.
	OutputSize int64
	// SHA256 is the checksum of the output archive.
	SHA256 string
	// EffectiveLevel is the compression level actually used after clamping.
	EffectiveLevel int
	// Elapsed is the total duration of the merge.
	Elapsed time.Duration
}
