package vm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the variant an Event carries.
type EventKind int

const (
	EventStart EventKind = iota
	EventGracefulStop
	EventCrash
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "Start"
	case EventGracefulStop:
		return "GracefulStop"
	case EventCrash:
		return "Crash"
	default:
		return "Unknown"
	}
}

// Event is one entry in a VM's append-only lifecycle log. Exactly one
// Start event opens the log; exactly one terminal event (GracefulStop or
// Crash) closes it.
type Event struct {
	Kind          EventKind
	At            time.Time
	ApplicationID uuid.UUID
	Code          int32 // meaningful only for EventGracefulStop
}

func (e Event) String() string {
	switch e.Kind {
	case EventGracefulStop:
		return fmt.Sprintf("[%s] %s GracefulStop{code=%d}", e.At.Format(time.RFC3339Nano), e.ApplicationID, e.Code)
	default:
		return fmt.Sprintf("[%s] %s %s", e.At.Format(time.RFC3339Nano), e.ApplicationID, e.Kind)
	}
}

func newStartEvent(id uuid.UUID) Event {
	return Event{Kind: EventStart, At: time.Now().UTC(), ApplicationID: id}
}

func newGracefulStopEvent(id uuid.UUID, code int32) Event {
	return Event{Kind: EventGracefulStop, At: time.Now().UTC(), ApplicationID: id, Code: code}
}

func newCrashEvent(id uuid.UUID) Event {
	return Event{Kind: EventCrash, At: time.Now().UTC(), ApplicationID: id}
}
