package merge

import (
	"sync"

	"github.com/archivemaster/archivemaster/pkg/types"
)

type nopSink struct{}

func (nopSink) Notify(*types.Event) {}

// MockSink records every event it receives for inspection by tests.
type MockSink struct {
	mux    sync.Mutex
	events []*types.Event
}

// Notify implements types.ProgressSink.
func (m *MockSink) Notify(event *types.Event) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of all recorded events.
func (m *MockSink) Events() []*types.Event {
	m.mux.Lock()
	defer m.mux.Unlock()
	out := make([]*types.Event, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOfType returns the recorded events of the given type.
func (m *MockSink) EventsOfType(t types.EventType) []*types.Event {
	m.mux.Lock()
	defer m.mux.Unlock()
	var out []*types.Event
	for _, ev := range m.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
