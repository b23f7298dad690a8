package scanner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const DefaultReplayDelay = 10 * time.Second

// ReplaySource feeds codes from a script file, pausing after each one.
type ReplaySource struct {
	path    string
	delay   time.Duration
	codes   []string
	index   int
	pending bool
}

func NewReplaySource(path string, delay time.Duration) *ReplaySource {
	return &ReplaySource{
		path:  path,
		delay: delay,
	}
}

func (r *ReplaySource) Name() string {
	return "replay"
}

func (r *ReplaySource) Start(_ context.Context) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("opening replay script: %w", err)
	}
	defer f.Close()

	codes, err := ParseScript(f)
	if err != nil {
		return fmt.Errorf("reading replay script %s: %w", r.path, err)
	}

	r.codes = codes
	r.index = 0
	r.pending = false
	return nil
}

func (r *ReplaySource) Stop() error {
	return nil
}

// NextCode returns the next scripted code, or io.EOF once the script and
// the delay after its last code are done.
func (r *ReplaySource) NextCode(ctx context.Context) (string, error) {
	if r.pending && r.delay > 0 {
		timer := time.NewTimer(r.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	r.pending = false

	if r.index >= len(r.codes) {
		return "", io.EOF
	}

	code := r.codes[r.index]
	r.index++
	r.pending = true
	return code, nil
}

// ParseScript reads one code per line. Everything after a '#' is a
// comment; blank lines are skipped.
func ParseScript(rd io.Reader) ([]string, error) {
	var codes []string

	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "#")
		line = strings.TrimSpace(line)
		if line != "" {
			codes = append(codes, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return codes, nil
}
