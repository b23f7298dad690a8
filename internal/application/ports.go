package application

import (
	"context"

	"qrplay/internal/domain"
)

// ScanSource yields scanned codes one line at a time. NextCode returns
// io.EOF when the source is exhausted.
type ScanSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextCode(ctx context.Context) (string, error)
	Name() string
}

// SpeakerAPI executes a described call against the speaker system. A nil
// error means the API reported success.
type SpeakerAPI interface {
	Execute(ctx context.Context, call domain.Call) error
}

type StateStore interface {
	SaveRoom(room string) error
	SaveQueueMode(mode domain.QueueMode) error
}

type Indicator interface {
	Signal(ctx context.Context, kind domain.IndicatorKind) error
	Clear(ctx context.Context) error
}

type NoopIndicator struct{}

func (NoopIndicator) Signal(_ context.Context, _ domain.IndicatorKind) error { return nil }
func (NoopIndicator) Clear(_ context.Context) error                          { return nil }
