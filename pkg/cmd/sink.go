package cmd

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/archivemaster/archivemaster/pkg/log"
	"github.com/archivemaster/archivemaster/pkg/types"
)

const timeRounding = 10 * time.Millisecond

// cliSink renders merge progress on stderr and forwards warnings to the
// logger. It is invoked from the job's worker goroutine.
type cliSink struct {
	mux     sync.Mutex
	showBar bool
	bar     *progressbar.ProgressBar
	skips   int
}

func newCLISink(showBar bool) *cliSink { return &cliSink{showBar: showBar} }

func (s *cliSink) Notify(event *types.Event) {
	s.mux.Lock()
	defer s.mux.Unlock()
	switch event.Type {
	case types.EventStarted:
		log.Debug("Merge started")
	case types.EventEntryProcessed:
		if !s.showBar {
			log.Debugf("Processed %s\n", event.Entry)
			return
		}
		if s.bar == nil {
			s.bar = progressbar.NewOptions64(int64(event.State.TotalEntries),
				progressbar.OptionSetDescription("merging"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		s.bar.Set64(int64(event.State.ProcessedEntries))
	case types.EventWarning:
		log.Warning(event.Warning.Error())
		if isInputSkip(event.Warning.Err) {
			s.skips++
		}
	case types.EventCompleted:
		s.finishBar()
	case types.EventCancelled:
		s.finishBar()
		log.Warningf("Merge cancelled after %d of %d entries\n",
			event.State.ProcessedEntries, event.State.TotalEntries)
	case types.EventFailed:
		s.finishBar()
		log.Debugf("Merge failed: %v\n", event.Err)
	}
}

func (s *cliSink) finishBar() {
	if s.bar != nil {
		s.bar.Finish()
		fmt.Fprintln(os.Stderr)
		s.bar = nil
	}
}

func (s *cliSink) inputSkips() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.skips
}

func isInputSkip(err error) bool {
	return errors.Is(err, types.ErrUnsupportedFormat) ||
		errors.Is(err, types.ErrIncompleteVolumeSet) ||
		errors.Is(err, types.ErrRarBackendUnavailable)
}
