package merge

import (
	"sync/atomic"
	"time"

	"github.com/archivemaster/archivemaster/pkg/types"
)

// tracker is the shared progress state of one running job. The worker
// goroutine writes it, callers read it; all fields are updated atomically
// and readers tolerate stale snapshots.
type tracker struct {
	total     uint64
	processed uint64
	cancelled uint32
	start     time.Time
	current   atomic.Value
}

func newTracker() *tracker {
	t := &tracker{start: time.Now()}
	t.current.Store("")
	return t
}

func (t *tracker) setTotal(n uint64) { atomic.StoreUint64(&t.total, n) }

func (t *tracker) entryDone(name string) {
	t.current.Store(name)
	atomic.AddUint64(&t.processed, 1)
}

func (t *tracker) cancel() { atomic.StoreUint32(&t.cancelled, 1) }

func (t *tracker) isCancelled() bool { return atomic.LoadUint32(&t.cancelled) == 1 }

func (t *tracker) snapshot() types.ProgressState {
	return types.ProgressState{
		TotalEntries:     atomic.LoadUint64(&t.total),
		ProcessedEntries: atomic.LoadUint64(&t.processed),
		CurrentFile:      t.current.Load().(string),
		Elapsed:          time.Since(t.start),
		Cancelled:        t.isCancelled(),
	}
}
