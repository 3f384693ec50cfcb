package session

import "fmt"

// State is a phase of the analysis session lifecycle
type State int

const (
	Idle       State = iota // nothing selected
	Selected                // files chosen, not submitted
	Submitting              // one upload in flight
	Completed               // last submission succeeded
	Failed                  // last submission errored; transient, settles to Selected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets states appear by name in JSON views
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{Idle, Selected, Submitting, Completed, Failed} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// EventKind identifies a notification for the presentation layer
type EventKind int

const (
	// EventResultsReady asks the presentation layer to bring results into view
	EventResultsReady EventKind = iota
	// EventSubmitFailed carries a transient, retryable failure notice
	EventSubmitFailed
	// EventHistoryCleared follows a confirmed history clear
	EventHistoryCleared
)

func (k EventKind) String() string {
	switch k {
	case EventResultsReady:
		return "results_ready"
	case EventSubmitFailed:
		return "submit_failed"
	case EventHistoryCleared:
		return "history_cleared"
	default:
		return "unknown"
	}
}

// Event is emitted by the orchestrator after a transition
type Event struct {
	Kind    EventKind
	Entry   *HistoryRef
	Err     error
	Message string
}

// HistoryRef points at the history entry created by a submission
type HistoryRef struct {
	ID          string
	ResultCount int
	FileCount   int
}

// Listener receives orchestrator events. It is called synchronously after
// the orchestrator has released its lock.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) {
	f(e)
}
