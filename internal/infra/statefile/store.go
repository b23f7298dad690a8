package statefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"qrplay/internal/domain"
)

const (
	RoomFile = ".last-device"
	ModeFile = ".last-playmode"
)

// Store keeps the current room and queue mode in two plain-text files,
// each rewritten wholesale on change.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

func (s *Store) SaveRoom(room string) error {
	return s.write(RoomFile, room)
}

func (s *Store) SaveQueueMode(mode domain.QueueMode) error {
	return s.write(ModeFile, string(mode))
}

// LoadRoom returns the persisted room. A missing or empty file yields an
// error wrapping domain.ErrStateUnavailable.
func (s *Store) LoadRoom() (string, error) {
	return s.read(RoomFile)
}

func (s *Store) LoadQueueMode() (domain.QueueMode, error) {
	raw, err := s.read(ModeFile)
	if err != nil {
		return "", err
	}
	mode, err := domain.ParseQueueMode(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrStateUnavailable, ModeFile, err)
	}
	return mode, nil
}

func (s *Store) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s not found", domain.ErrStateUnavailable, name)
		}
		return "", fmt.Errorf("%w: reading %s: %v", domain.ErrStateUnavailable, name, err)
	}

	value := strings.ReplaceAll(string(data), "\n", "")
	value = strings.TrimRight(value, "\r")
	if value == "" {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrStateUnavailable, name)
	}
	return value, nil
}

func (s *Store) write(name, value string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
