package statefile

import (
	"log/slog"

	"qrplay/internal/domain"
)

// Restore builds the startup session: an explicit room override wins,
// then the persisted room, then fallbackRoom. Unreadable files are logged
// and replaced by defaults.
func (s *Store) Restore(override, fallbackRoom string, logger *slog.Logger) domain.SessionState {
	room := override
	switch {
	case room != "":
		logger.Info("using room from command line", "room", room)
	default:
		persisted, err := s.LoadRoom()
		if err != nil {
			room = fallbackRoom
			logger.Info("initial room", "room", room, "reason", err)
		} else {
			room = persisted
			logger.Info("defaulting to last used room", "room", room)
		}
	}

	mode, err := s.LoadQueueMode()
	if err != nil {
		mode = domain.DefaultQueueMode
		logger.Info("queue mode", "mode", mode, "reason", err)
	} else {
		logger.Info("defaulting to last used queue mode", "mode", mode)
	}

	return domain.NewSessionState(room, mode)
}
