package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"qrplay/internal/domain"
)

type Outcome int

const (
	// OutcomeSkipped means the code was suppressed as a duplicate or empty.
	OutcomeSkipped Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "skipped"
	}
}

type StartupOptions struct {
	SpeakWelcome bool
	LoadLibrary  bool
	Phrases      StartupPhrases
}

type StartupPhrases struct {
	Welcome  string
	Indexing string
	Ready    string
	Prompt   string
}

const shutdownTimeout = 10 * time.Second

// Player drives scanned codes through classification, dispatch and
// feedback, one code at a time.
type Player struct {
	source     ScanSource
	dispatcher *Dispatcher
	speaker    SpeakerAPI
	store      StateStore
	indicator  Indicator
	notifier   Notifier
	startup    StartupOptions
	logger     *slog.Logger
}

func NewPlayer(
	source ScanSource,
	dispatcher *Dispatcher,
	speaker SpeakerAPI,
	store StateStore,
	indicator Indicator,
	notifier Notifier,
	startup StartupOptions,
	logger *slog.Logger,
) *Player {
	return &Player{
		source:     source,
		dispatcher: dispatcher,
		speaker:    speaker,
		store:      store,
		indicator:  indicator,
		notifier:   notifier,
		startup:    startup,
		logger:     logger,
	}
}

// Run prepares the current room, then processes codes from the source
// until it is exhausted or ctx is cancelled. It returns the final state.
func (p *Player) Run(ctx context.Context, state domain.SessionState) (domain.SessionState, error) {
	p.prepare(ctx, state)

	p.logger.Info("starting scan source", "source", p.source.Name())
	if err := p.source.Start(ctx); err != nil {
		return state, fmt.Errorf("starting scan source: %w", err)
	}
	defer func() {
		if err := p.source.Stop(); err != nil {
			p.logger.Error("stopping scan source", "error", err)
		}
	}()

	p.indicate(ctx, domain.IndicatorRainbow)

	p.logger.Info("ready, waiting for codes",
		"room", state.CurrentRoom,
		"queue_mode", state.QueueMode,
	)

	for {
		code, err := p.source.NextCode(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.logger.Info("scan source exhausted", "source", p.source.Name())
				return state, nil
			}
			p.interrupted(ctx)
			if ctx.Err() != nil {
				return state, ctx.Err()
			}
			return state, fmt.Errorf("reading scan source: %w", err)
		}

		state, _ = p.Process(ctx, state, code)
	}
}

// Process handles one scanned code and returns the updated state. Repeated
// non-command codes are skipped without any call; a failed code clears
// LastCode so scanning it again is retried.
func (p *Player) Process(ctx context.Context, state domain.SessionState, code string) (domain.SessionState, Outcome) {
	code = strings.TrimSpace(code)
	if code == "" {
		return state, OutcomeSkipped
	}

	if code == state.LastCode && !domain.IsCommandCode(code) {
		p.logger.Info("ignoring repeated code", "code", code)
		return state, OutcomeSkipped
	}

	logger := p.logger.With("scan_id", uuid.NewString(), "code", code)

	cmd := domain.Classify(code)
	logger.Info("handling code", "command", cmd.String(), "room", state.CurrentRoom)

	next, err := p.dispatch(ctx, logger, cmd, state)
	ok := err == nil
	if ok {
		next.LastCode = code
	} else {
		logger.Warn("code failed", "error", err)
		next.LastCode = ""
		if notifyErr := p.notifier.Notify(ctx, fmt.Sprintf("Code %q failed: %v", code, err)); notifyErr != nil {
			logger.Error("notifying failure", "error", notifyErr)
		}
	}
	next.LastOutcome = ok

	p.indicate(ctx, SignalFor(ok))

	if ok {
		return next, OutcomeSuccess
	}
	return next, OutcomeFailure
}

func (p *Player) dispatch(ctx context.Context, logger *slog.Logger, cmd domain.Command, state domain.SessionState) (domain.SessionState, error) {
	plan, err := p.dispatcher.Plan(cmd, state)
	if err != nil {
		return state, err
	}

	var errs []error
	for _, call := range plan.Calls {
		if err := p.speaker.Execute(ctx, call); err != nil {
			logger.Error("speaker call failed", "call", call.String(), "error", err)
			errs = append(errs, fmt.Errorf("calling %s: %w", call, err))
			continue
		}
		logger.Debug("speaker call done", "call", call.String())
	}

	if plan.PersistRoom {
		if err := p.store.SaveRoom(plan.State.CurrentRoom); err != nil {
			logger.Warn("persisting room", "error", err)
		}
	}
	if plan.PersistMode {
		if err := p.store.SaveQueueMode(plan.State.QueueMode); err != nil {
			logger.Warn("persisting queue mode", "error", err)
		}
	}

	return plan.State, errors.Join(errs...)
}

func (p *Player) prepare(ctx context.Context, state domain.SessionState) {
	room := state.CurrentRoom
	p.call(ctx, domain.RoomCall(room, "pause"))
	p.call(ctx, p.dispatcher.VolumeCall(room))

	phrases := p.startup.Phrases
	p.say(ctx, room, phrases.Welcome)

	if p.startup.LoadLibrary {
		p.logger.Info("indexing the music library")
		p.say(ctx, room, phrases.Indexing)
		p.call(ctx, domain.RoomCall(room, "musicsearch/library/load"))
		p.logger.Info("library indexing complete")
		p.say(ctx, room, phrases.Ready)
	}

	p.say(ctx, room, phrases.Prompt)
}

func (p *Player) say(ctx context.Context, room, phrase string) {
	if !p.startup.SpeakWelcome || phrase == "" {
		return
	}
	p.call(ctx, p.dispatcher.SayCall(room, phrase))
}

func (p *Player) call(ctx context.Context, call domain.Call) {
	if err := p.speaker.Execute(ctx, call); err != nil {
		p.logger.Warn("startup call failed", "call", call.String(), "error", err)
	}
}

func (p *Player) indicate(ctx context.Context, kind domain.IndicatorKind) {
	if err := p.indicator.Signal(ctx, kind); err != nil {
		p.logger.Warn("signaling indicator", "kind", kind, "error", err)
	}
}

// interrupted signals failure and clears the indicator when the loop ends
// abnormally. ctx may already be cancelled, so cleanup gets its own deadline.
func (p *Player) interrupted(ctx context.Context) {
	p.logger.Info("stopping scanner")

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	p.indicate(cleanupCtx, domain.IndicatorPulseRed)
	if err := p.indicator.Clear(cleanupCtx); err != nil {
		p.logger.Warn("clearing indicator", "error", err)
	}
}
