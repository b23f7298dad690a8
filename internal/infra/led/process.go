package led

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"qrplay/internal/domain"
)

const DefaultDuration = 4 * time.Second

// ProcessIndicator runs one external animation process per signal, lets it
// play for a fixed duration and then kills it.
type ProcessIndicator struct {
	commands map[domain.IndicatorKind][]string
	clear    []string
	duration time.Duration
	logger   *slog.Logger
}

func NewProcessIndicator(commands map[domain.IndicatorKind][]string, clear []string, duration time.Duration, logger *slog.Logger) *ProcessIndicator {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &ProcessIndicator{
		commands: commands,
		clear:    clear,
		duration: duration,
		logger:   logger,
	}
}

// Signal blocks for the indicator duration, or until ctx is done.
func (p *ProcessIndicator) Signal(ctx context.Context, kind domain.IndicatorKind) error {
	argv := p.commands[kind]
	if len(argv) == 0 {
		p.logger.Debug("no animation configured", "kind", kind)
		return nil
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s animation: %w", kind, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(p.duration)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			p.logger.Warn("animation exited early", "kind", kind, "error", err)
		}
	case <-timer.C:
		p.kill(cmd, done)
	case <-ctx.Done():
		p.kill(cmd, done)
	}

	return p.Clear(ctx)
}

func (p *ProcessIndicator) kill(cmd *exec.Cmd, done <-chan error) {
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warn("killing animation", "error", err)
	}
	<-done
}

// Clear switches all LEDs off using the configured clear command.
func (p *ProcessIndicator) Clear(ctx context.Context) error {
	if len(p.clear) == 0 {
		return nil
	}
	if err := exec.CommandContext(ctx, p.clear[0], p.clear[1:]...).Run(); err != nil {
		return fmt.Errorf("clearing leds: %w", err)
	}
	return nil
}
