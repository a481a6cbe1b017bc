package merge

import "github.com/archivemaster/archivemaster/pkg/types"

// handle tracks one submitted job. Cancellation is a single shared flag:
// written here, polled by the worker between entries.
type handle struct {
	tracker *tracker
	done    chan struct{}
	summary *types.OutputSummary
	err     error
}

func (h *handle) Cancel() { h.tracker.cancel() }

func (h *handle) Poll() types.ProgressState { return h.tracker.snapshot() }

func (h *handle) Wait() (*types.OutputSummary, error) {
	<-h.done
	return h.summary, h.err
}
