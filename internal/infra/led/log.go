package led

import (
	"context"
	"log/slog"

	"qrplay/internal/domain"
)

// LogIndicator stands in for LED hardware by logging each signal.
type LogIndicator struct {
	logger *slog.Logger
}

func NewLogIndicator(logger *slog.Logger) *LogIndicator {
	return &LogIndicator{logger: logger}
}

func (l *LogIndicator) Signal(_ context.Context, kind domain.IndicatorKind) error {
	l.logger.Info("indicator", "kind", kind)
	return nil
}

func (l *LogIndicator) Clear(_ context.Context) error {
	l.logger.Debug("indicator cleared")
	return nil
}
