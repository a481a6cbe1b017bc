package types

// MergeEngine is the entry point for merge operations. Implementations run
// one job at a time per handle on a dedicated worker goroutine, with no
// intra-job parallelism: archive writers are single-writer append-only, and
// a sequential pipeline bounds the number of open volume handles.
type MergeEngine interface {
	// Run executes the job synchronously on the calling goroutine. Intended
	// for CLI use.
	Run(job *ArchiveJob, sink ProgressSink) (*OutputSummary, error)
	// Submit starts the job on a worker goroutine and returns immediately.
	Submit(job *ArchiveJob, sink ProgressSink) JobHandle
}

// JobHandle tracks one submitted merge job.
type JobHandle interface {
	// Cancel requests cooperative cancellation. The worker polls the flag
	// between entries, so the worst-case latency is the time to stream the
	// entry currently in flight.
	Cancel()
	// Poll returns an advisory snapshot of job progress.
	Poll() ProgressState
	// Wait blocks until the job terminates and returns its result.
	Wait() (*OutputSummary, error)
}
