package application

import (
	"fmt"
	"net/url"
	"strconv"

	"qrplay/internal/domain"
)

// Plan is the outcome of dispatching one command: the calls to issue, in
// order, and the session state after the command.
type Plan struct {
	Calls       []domain.Call
	State       domain.SessionState
	PersistRoom bool
	PersistMode bool
}

type DispatcherOptions struct {
	DefaultVolume int
	// Language is the speech-synthesis language tag appended to say requests.
	Language string
}

// Dispatcher turns classified commands into speaker calls without
// performing any I/O.
type Dispatcher struct {
	volume   string
	language string
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	lang := opts.Language
	if lang == "" {
		lang = "de"
	}
	return &Dispatcher{
		volume:   strconv.Itoa(opts.DefaultVolume),
		language: lang,
	}
}

// Plan decides which calls a command needs given the current state. An
// Unrecognized command yields no calls and its classification error.
func (d *Dispatcher) Plan(cmd domain.Command, state domain.SessionState) (Plan, error) {
	plan := Plan{State: state}
	room := state.CurrentRoom

	switch c := cmd.(type) {
	case domain.Transport:
		plan.Calls = append(plan.Calls, domain.RoomCall(room, string(c.Op)))
		if c.Op == domain.TransportNext {
			plan.Calls = append(plan.Calls, domain.RoomCall(room, "play"))
		}

	case domain.SetQueueMode:
		plan.State.QueueMode = c.Mode
		plan.PersistMode = true
		if c.Mode == domain.PlayAndClear {
			plan.Calls = append(plan.Calls, domain.RoomCall(room, "clearqueue"))
		}

	case domain.SwitchRoom:
		plan.Calls = append(plan.Calls,
			domain.RoomCall(room, "pause"),
			d.VolumeCall(c.Room),
		)
		plan.State.CurrentRoom = c.Room
		plan.PersistRoom = true

	case domain.Speak:
		target := c.Room
		if target == "" {
			target = room
		}
		plan.Calls = append(plan.Calls, d.SayCall(target, c.Phrase))

	case domain.RoomAction:
		plan.Calls = append(plan.Calls, domain.RoomCall(room, c.Path))

	case domain.StreamingTrack:
		plan.Calls = d.withClear(state, fmt.Sprintf("%s/%s/%s", c.Service.APIPath(), queueAction(state.QueueMode), c.URI))

	case domain.LibrarySearch:
		plan.Calls = d.withClear(state, fmt.Sprintf("musicsearch/library/%s/%s", c.Kind, url.PathEscape(c.Query)))

	case domain.FavoriteOrPlaylist:
		plan.Calls = d.withClear(state, fmt.Sprintf("%s/%s", c.Kind, url.PathEscape(c.Name)))

	case domain.TuneIn:
		plan.Calls = d.withClear(state, fmt.Sprintf("tunein/%s/%s", c.Action, c.Station))

	case domain.Unrecognized:
		if c.Err != nil {
			return plan, c.Err
		}
		return plan, &domain.ClassificationError{Code: c.Raw, Err: domain.ErrUnrecognized}

	default:
		return plan, fmt.Errorf("dispatching %T: %w", cmd, domain.ErrUnrecognized)
	}

	return plan, nil
}

// VolumeCall sets a room to the configured default volume.
func (d *Dispatcher) VolumeCall(room string) domain.Call {
	return domain.RoomCall(room, "volume/"+d.volume)
}

func (d *Dispatcher) SayCall(room, phrase string) domain.Call {
	return domain.RoomCall(room, fmt.Sprintf("say/%s/%s", url.PathEscape(phrase), d.language))
}

func (d *Dispatcher) withClear(state domain.SessionState, path string) []domain.Call {
	var calls []domain.Call
	if state.QueueMode == domain.PlayAndClear {
		calls = append(calls, domain.RoomCall(state.CurrentRoom, "clearqueue"))
	}
	return append(calls, domain.RoomCall(state.CurrentRoom, path))
}

func queueAction(mode domain.QueueMode) string {
	if mode == domain.BuildQueue {
		return "queue"
	}
	return "now"
}
