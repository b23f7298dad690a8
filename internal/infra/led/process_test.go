package led_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"qrplay/internal/domain"
	"qrplay/internal/infra/led"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessIndicator_KillsAfterDuration(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "cleared")

	indicator := led.NewProcessIndicator(
		map[domain.IndicatorKind][]string{
			domain.IndicatorPulseGreen: {"sleep", "30"},
		},
		[]string{"touch", marker},
		50*time.Millisecond,
		discardLogger(),
	)

	start := time.Now()
	if err := indicator.Signal(context.Background(), domain.IndicatorPulseGreen); err != nil {
		t.Fatalf("Signal error: %v", err)
	}

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("animation was not killed, took %s", elapsed)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("clear command did not run: %v", err)
	}
}

func TestProcessIndicator_RunsKindSpecificCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "kind")

	indicator := led.NewProcessIndicator(
		map[domain.IndicatorKind][]string{
			domain.IndicatorPulseRed: {"sh", "-c", "echo red > " + out},
		},
		nil,
		2*time.Second,
		discardLogger(),
	)

	if err := indicator.Signal(context.Background(), domain.IndicatorPulseRed); err != nil {
		t.Fatalf("Signal error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if strings.TrimSpace(string(data)) != "red" {
		t.Errorf("output: got %q", data)
	}
}

func TestProcessIndicator_UnconfiguredKindIsNoop(t *testing.T) {
	indicator := led.NewProcessIndicator(nil, nil, time.Second, discardLogger())

	if err := indicator.Signal(context.Background(), domain.IndicatorRainbow); err != nil {
		t.Errorf("Signal error: %v", err)
	}
}

func TestProcessIndicator_MissingBinary(t *testing.T) {
	indicator := led.NewProcessIndicator(
		map[domain.IndicatorKind][]string{
			domain.IndicatorRainbow: {"/nonexistent/animation"},
		},
		nil,
		time.Second,
		discardLogger(),
	)

	if err := indicator.Signal(context.Background(), domain.IndicatorRainbow); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestProcessIndicator_CancelledContext(t *testing.T) {
	indicator := led.NewProcessIndicator(
		map[domain.IndicatorKind][]string{
			domain.IndicatorPulseGreen: {"sleep", "30"},
		},
		nil,
		time.Minute,
		discardLogger(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_ = indicator.Signal(ctx, domain.IndicatorPulseGreen)
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("signal ignored cancellation, took %s", elapsed)
	}
}
