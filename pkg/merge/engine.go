package merge

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/archivemaster/archivemaster/pkg/format"
	"github.com/archivemaster/archivemaster/pkg/reader"
	"github.com/archivemaster/archivemaster/pkg/types"
	"github.com/archivemaster/archivemaster/pkg/util"
	"github.com/archivemaster/archivemaster/pkg/writer"
)

// New returns a merge engine. RAR inputs are opened through the backend
// configured at reader.RarBackend.
func New() types.MergeEngine { return &engine{} }

type engine struct{}

// Run executes the job synchronously and returns its summary.
func (e *engine) Run(job *types.ArchiveJob, sink types.ProgressSink) (*types.OutputSummary, error) {
	return e.run(job, sink, newTracker())
}

// Submit starts the job on a worker goroutine.
func (e *engine) Submit(job *types.ArchiveJob, sink types.ProgressSink) types.JobHandle {
	t := newTracker()
	h := &handle{tracker: t, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.summary, h.err = e.run(job, sink, t)
	}()
	return h
}

func (e *engine) run(job *types.ArchiveJob, sink types.ProgressSink, t *tracker) (*types.OutputSummary, error) {
	if sink == nil {
		sink = nopSink{}
	}
	fail := func(err error) (*types.OutputSummary, error) {
		sink.Notify(&types.Event{Type: types.EventFailed, Err: err, State: t.snapshot()})
		return nil, err
	}

	if err := job.Validate(); err != nil {
		return fail(err)
	}
	sink.Notify(&types.Event{Type: types.EventStarted, State: t.snapshot()})

	warnings := 0
	warn := func(w *types.Warning) {
		warnings++
		sink.Notify(&types.Event{Type: types.EventWarning, Warning: w, State: t.snapshot()})
	}

	// Planning: enumerate every input without reading content to size the
	// job and settle all output paths up front. Unreadable inputs are
	// skipped with a warning unless nothing usable remains.
	scanned := e.scanInputs(job, warn)
	if len(scanned) == 0 {
		return fail(types.ErrNoUsableInputs)
	}
	plan := buildPlan(scanned)
	t.setTotal(plan.total)

	w, err := writer.Create(job.Output, job.Format, job.Compression, job.EffectiveLevel())
	if err != nil {
		return fail(err)
	}

	for _, in := range plan.inputs {
		if err := e.writeInput(in, w, t, sink, warn); err != nil {
			w.Abort()
			if errors.Is(err, types.ErrCancelled) {
				sink.Notify(&types.Event{Type: types.EventCancelled, State: t.snapshot()})
				return nil, err
			}
			return fail(err)
		}
	}

	if err := w.Finalize(); err != nil {
		w.Abort()
		return fail(err)
	}

	summary := &types.OutputSummary{
		OutputPath:     job.Output,
		EntriesWritten: t.snapshot().ProcessedEntries,
		Warnings:       warnings,
		EffectiveLevel: job.EffectiveLevel(),
		Elapsed:        time.Since(t.start),
	}
	if stat, err := os.Stat(job.Output); err == nil {
		summary.OutputSize = stat.Size()
	}
	if sum, err := util.CalculateSHA256SumFile(job.Output); err == nil {
		summary.SHA256 = sum
	}
	sink.Notify(&types.Event{Type: types.EventCompleted, Summary: summary, State: t.snapshot()})
	return summary, nil
}

func (e *engine) scanInputs(job *types.ArchiveJob, warn func(*types.Warning)) []*scannedInput {
	var out []*scannedInput
	for _, input := range job.Inputs {
		kind, err := format.Detect(input)
		if err != nil {
			warn(&types.Warning{Source: input, Err: err})
			continue
		}
		rdr, err := reader.OpenKind(input, kind)
		if err != nil {
			warn(&types.Warning{Source: input, Err: err})
			continue
		}
		si := &scannedInput{path: input, kind: kind}
		for {
			entry, err := rdr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				warn(&types.Warning{Source: input, Err: err})
				break
			}
			meta := *entry
			meta.Body = nil
			si.entries = append(si.entries, &meta)
		}
		for _, w := range rdr.Warnings() {
			warn(w)
		}
		rdr.Close()
		out = append(out, si)
	}
	return out
}

// writeInput re-opens one input and streams its planned entries to the
// writer. The cancellation flag is polled after each entry, never
// mid-entry, so the output never holds a truncated record on cancel.
func (e *engine) writeInput(in *plannedInput, w types.ArchiveWriter, t *tracker, sink types.ProgressSink, warn func(*types.Warning)) error {
	rdr, err := reader.OpenKind(in.path, in.kind)
	if err != nil {
		warn(&types.Warning{Source: in.path, Err: err})
		return nil
	}
	defer rdr.Close()

	for i := 0; i < len(in.outputs); i++ {
		entry, err := rdr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			warn(&types.Warning{Source: in.path, Err: err})
			break
		}
		po := in.outputs[i]
		if po.skip {
			continue
		}

		out := *entry
		out.Path = po.path
		if err := w.WriteEntry(&out, entry.Body); err != nil {
			if errors.Is(err, types.ErrCorruptEntry) || errors.Is(err, types.ErrUnsupportedEntry) {
				warn(&types.Warning{Source: in.path, Entry: po.path, Err: err})
				continue
			}
			return err
		}

		t.entryDone(po.path)
		sink.Notify(&types.Event{Type: types.EventEntryProcessed, Entry: po.path, State: t.snapshot()})
		if t.isCancelled() {
			return types.ErrCancelled
		}
	}
	return nil
}
