package domain

import "fmt"

type QueueMode string

const (
	// PlayAndQueue plays the selection now and keeps the existing queue.
	PlayAndQueue QueueMode = "play_and_queue"
	// PlayAndClear clears the queue before playing the selection.
	PlayAndClear QueueMode = "play_and_clear"
	// BuildQueue appends the selection to the queue.
	BuildQueue QueueMode = "build_queue"
)

const DefaultQueueMode = PlayAndQueue

func ParseQueueMode(s string) (QueueMode, error) {
	switch m := QueueMode(s); m {
	case PlayAndQueue, PlayAndClear, BuildQueue:
		return m, nil
	default:
		return "", fmt.Errorf("unknown queue mode %q", s)
	}
}

// SessionState is threaded through the scan loop by value. CurrentRoom and
// QueueMode are persisted; LastCode and LastOutcome live only in memory.
type SessionState struct {
	CurrentRoom string
	QueueMode   QueueMode
	// LastCode is empty when there is no code to suppress.
	LastCode    string
	LastOutcome bool
}

func NewSessionState(room string, mode QueueMode) SessionState {
	if mode == "" {
		mode = DefaultQueueMode
	}
	return SessionState{
		CurrentRoom: room,
		QueueMode:   mode,
		LastOutcome: true,
	}
}
