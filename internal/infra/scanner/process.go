package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultCommand runs zbarcam headless on the default camera.
var DefaultCommand = []string{"/usr/bin/zbarcam", "--prescale=500x500", "--nodisplay"}

// ProcessSource runs an external scanner and reads one code per line from
// its standard output.
type ProcessSource struct {
	argv       []string
	offset     int
	repairSJIS bool
	logger     *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	group   *errgroup.Group
	lines   chan string
	stop    chan struct{}
	running bool
}

func NewProcessSource(argv []string, offset int, repairSJIS bool, logger *slog.Logger) *ProcessSource {
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	return &ProcessSource{
		argv:       argv,
		offset:     offset,
		repairSJIS: repairSJIS,
		logger:     logger,
	}
}

func (p *ProcessSource) Name() string {
	return "process"
}

func (p *ProcessSource) Start(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	cmd := exec.Command(p.argv[0], p.argv[1:]...)
	cmd.Stderr = &logWriter{logger: p.logger}
	cmd.WaitDelay = 2 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening scanner output: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting scanner %s: %w", p.argv[0], err)
	}

	p.logger.Info("scanner process started", "command", strings.Join(p.argv, " "), "pid", cmd.Process.Pid)

	p.cmd = cmd
	p.lines = make(chan string)
	p.stop = make(chan struct{})
	p.group = new(errgroup.Group)
	p.running = true

	lines, stop := p.lines, p.stop
	p.group.Go(func() error {
		defer close(lines)

		sc := bufio.NewScanner(stdout)
	read:
		for sc.Scan() {
			line := sc.Text()
			if p.repairSJIS {
				line = RepairShiftJIS(line)
			}
			code := ExtractCode(line, p.offset)
			if code == "" {
				continue
			}
			select {
			case lines <- code:
			case <-stop:
				break read
			}
		}
		scanErr := sc.Err()

		if err := cmd.Wait(); err != nil {
			return fmt.Errorf("scanner process: %w", err)
		}
		return scanErr
	})

	return nil
}

func (p *ProcessSource) NextCode(ctx context.Context) (string, error) {
	p.mu.Lock()
	lines, group := p.lines, p.group
	p.mu.Unlock()

	if lines == nil {
		return "", errors.New("scanner process not started")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case code, ok := <-lines:
		if !ok {
			err := group.Wait()
			if err == nil {
				err = errors.New("output closed")
			}
			return "", fmt.Errorf("scanner process ended: %w", err)
		}
		return code, nil
	}
}

// Stop kills the scanner process and waits for its reader to finish.
func (p *ProcessSource) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false

	close(p.stop)
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warn("killing scanner process", "error", err)
	}

	if err := p.group.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return err
		}
	}
	p.logger.Info("scanner process stopped")
	return nil
}

type logWriter struct {
	logger *slog.Logger
}

func (w *logWriter) Write(b []byte) (int, error) {
	if msg := strings.TrimSpace(string(b)); msg != "" {
		w.logger.Debug("scanner", "output", msg)
	}
	return len(b), nil
}
