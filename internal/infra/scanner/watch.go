package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
)

const spoolExt = ".txt"

// WatchSource turns script files dropped into a spool directory into
// codes. Writers should create the file under another name and rename it
// into place so it is never read half-written.
type WatchSource struct {
	dir       string
	watcher   *fsnotify.Watcher
	queue     []string
	// processed holds files that could not be renamed away after reading.
	processed map[string]bool
	logger    *slog.Logger
}

func NewWatchSource(dir string, logger *slog.Logger) *WatchSource {
	return &WatchSource{
		dir:       dir,
		processed: make(map[string]bool),
		logger:    logger,
	}
}

func (w *WatchSource) Name() string {
	return "watch"
}

func (w *WatchSource) Start(_ context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("creating spool dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.watcher = watcher

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading spool dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		w.ingest(filepath.Join(w.dir, name))
	}

	w.logger.Info("watching spool directory", "dir", w.dir, "pending", len(w.queue))
	return nil
}

func (w *WatchSource) Stop() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

func (w *WatchSource) NextCode(ctx context.Context) (string, error) {
	if w.watcher == nil {
		return "", errors.New("spool watcher not started")
	}

	for {
		if len(w.queue) > 0 {
			code := w.queue[0]
			w.queue = w.queue[1:]
			return code, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return "", errors.New("spool watcher closed")
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.ingest(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return "", errors.New("spool watcher closed")
			}
			w.logger.Warn("spool watcher error", "error", err)
		}
	}
}

func (w *WatchSource) ingest(path string) {
	if filepath.Ext(path) != spoolExt || w.processed[path] {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.logger.Warn("opening spool file", "path", path, "error", err)
		}
		return
	}
	codes, err := ParseScript(f)
	f.Close()
	if err != nil {
		w.logger.Warn("reading spool file", "path", path, "error", err)
		return
	}

	if err := os.Rename(path, path+".processed"); err != nil {
		w.logger.Warn("marking spool file processed", "path", path, "error", err)
		w.processed[path] = true
	}

	w.logger.Info("queued codes from spool file", "path", path, "codes", len(codes))
	w.queue = append(w.queue, codes...)
}
