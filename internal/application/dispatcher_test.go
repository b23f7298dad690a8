package application_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"qrplay/internal/application"
	"qrplay/internal/domain"
)

func newDispatcher() *application.Dispatcher {
	return application.NewDispatcher(application.DispatcherOptions{DefaultVolume: 25, Language: "de"})
}

func TestDispatcher_Plan(t *testing.T) {
	base := domain.NewSessionState("Büro", domain.PlayAndQueue)

	withMode := func(mode domain.QueueMode) domain.SessionState {
		s := base
		s.QueueMode = mode
		return s
	}

	tests := []struct {
		name      string
		code      string
		state     domain.SessionState
		wantCalls []domain.Call
	}{
		{
			name:      "playpause",
			code:      "cmd:playpause",
			state:     base,
			wantCalls: []domain.Call{{Room: "Büro", Path: "playpause"}},
		},
		{
			name:  "next also plays",
			code:  "cmd:next",
			state: base,
			wantCalls: []domain.Call{
				{Room: "Büro", Path: "next"},
				{Room: "Büro", Path: "play"},
			},
		},
		{
			name:      "previous",
			code:      "cmd:previous",
			state:     base,
			wantCalls: []domain.Call{{Room: "Büro", Path: "previous"}},
		},
		{
			name:      "queue issues nothing",
			code:      "cmd:queue",
			state:     base,
			wantCalls: nil,
		},
		{
			name:      "unqueue clears the queue",
			code:      "cmd:unqueue",
			state:     base,
			wantCalls: []domain.Call{{Room: "Büro", Path: "clearqueue"}},
		},
		{
			name:  "switch room",
			code:  "cmd:room|Kitchen",
			state: base,
			wantCalls: []domain.Call{
				{Room: "Büro", Path: "pause"},
				{Room: "Kitchen", Path: "volume/25"},
			},
		},
		{
			name:      "speak in named room",
			code:      "cmd:say|Kitchen|Essen ist fertig",
			state:     base,
			wantCalls: []domain.Call{{Room: "Kitchen", Path: "say/Essen%20ist%20fertig/de"}},
		},
		{
			name:      "speak in current room",
			code:      "cmd:say||Hallo",
			state:     base,
			wantCalls: []domain.Call{{Room: "Büro", Path: "say/Hallo/de"}},
		},
		{
			name:      "room action",
			code:      "cmd:volume:40",
			state:     base,
			wantCalls: []domain.Call{{Room: "Büro", Path: "volume/40"}},
		},
		{
			name:      "spotify now",
			code:      "spotify:track:123",
			state:     base,
			wantCalls: []domain.Call{{Room: "Büro", Path: "spotify/now/track:123"}},
		},
		{
			name:      "spotify queued in build mode",
			code:      "spotify:track:123",
			state:     withMode(domain.BuildQueue),
			wantCalls: []domain.Call{{Room: "Büro", Path: "spotify/queue/track:123"}},
		},
		{
			name:  "aldilife clears first in clear mode",
			code:  "aldilife:album:42",
			state: withMode(domain.PlayAndClear),
			wantCalls: []domain.Call{
				{Room: "Büro", Path: "clearqueue"},
				{Room: "Büro", Path: "aldilifemusic/now/album:42"},
			},
		},
		{
			name:      "library album",
			code:      "lib:album|Abbey Road",
			state:     base,
			wantCalls: []domain.Call{{Room: "Büro", Path: "musicsearch/library/album/Abbey%20Road"}},
		},
		{
			name:      "library song",
			code:      "lib:song|Let it be",
			state:     base,
			wantCalls: []domain.Call{{Room: "Büro", Path: "musicsearch/library/song/Let%20it%20be"}},
		},
		{
			name:      "playlist",
			code:      "playlist:Road Trip",
			state:     withMode(domain.BuildQueue),
			wantCalls: []domain.Call{{Room: "Büro", Path: "playlist/Road%20Trip"}},
		},
		{
			name:  "tunein clears first in clear mode",
			code:  "tunein:play:s12345",
			state: withMode(domain.PlayAndClear),
			wantCalls: []domain.Call{
				{Room: "Büro", Path: "clearqueue"},
				{Room: "Büro", Path: "tunein/play/s12345"},
			},
		},
	}

	d := newDispatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := d.Plan(domain.Classify(tt.code), tt.state)
			if err != nil {
				t.Fatalf("Plan error: %v", err)
			}
			if diff := cmp.Diff(tt.wantCalls, plan.Calls); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDispatcher_FavoriteClearsOnlyInClearMode(t *testing.T) {
	d := newDispatcher()

	for _, mode := range []domain.QueueMode{domain.PlayAndQueue, domain.PlayAndClear, domain.BuildQueue} {
		t.Run(string(mode), func(t *testing.T) {
			plan, err := d.Plan(domain.Classify("favorite:MyList"), domain.NewSessionState("Büro", mode))
			if err != nil {
				t.Fatalf("Plan error: %v", err)
			}

			want := []domain.Call{{Room: "Büro", Path: "favorite/MyList"}}
			if mode == domain.PlayAndClear {
				want = append([]domain.Call{{Room: "Büro", Path: "clearqueue"}}, want...)
			}
			if diff := cmp.Diff(want, plan.Calls); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDispatcher_StateChanges(t *testing.T) {
	d := newDispatcher()
	state := domain.NewSessionState("Büro", domain.PlayAndQueue)

	plan, err := d.Plan(domain.Classify("cmd:room|Kitchen"), state)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.State.CurrentRoom != "Kitchen" || !plan.PersistRoom || plan.PersistMode {
		t.Errorf("room switch: got state %+v persistRoom=%v persistMode=%v", plan.State, plan.PersistRoom, plan.PersistMode)
	}

	plan, err = d.Plan(domain.Classify("cmd:queue"), state)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if plan.State.QueueMode != domain.BuildQueue || !plan.PersistMode || plan.PersistRoom {
		t.Errorf("queue mode: got state %+v persistRoom=%v persistMode=%v", plan.State, plan.PersistRoom, plan.PersistMode)
	}

	plan, err = d.Plan(domain.Classify("spotify:track:1"), state)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if diff := cmp.Diff(state, plan.State); diff != "" {
		t.Errorf("playback must not change state (-want +got):\n%s", diff)
	}
}

func TestDispatcher_UnrecognizedFails(t *testing.T) {
	d := newDispatcher()

	for _, code := range []string{"nonsense", "favorite:", "cmd:room"} {
		plan, err := d.Plan(domain.Classify(code), domain.NewSessionState("Büro", domain.PlayAndClear))
		if err == nil {
			t.Errorf("%q: expected classification error", code)
		}
		if len(plan.Calls) != 0 {
			t.Errorf("%q: expected no calls, got %v", code, plan.Calls)
		}
		var cerr *domain.ClassificationError
		if !errors.As(err, &cerr) {
			t.Errorf("%q: expected *ClassificationError, got %T", code, err)
		}
	}
}

func TestSignalFor(t *testing.T) {
	if got := application.SignalFor(true); got != domain.IndicatorPulseGreen {
		t.Errorf("success: got %s", got)
	}
	if got := application.SignalFor(false); got != domain.IndicatorPulseRed {
		t.Errorf("failure: got %s", got)
	}
}
