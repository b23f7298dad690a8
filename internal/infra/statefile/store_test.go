package statefile_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrplay/internal/domain"
	"qrplay/internal/infra/statefile"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := statefile.NewStore(dir)

	require.NoError(t, store.SaveRoom("Kitchen"))
	require.NoError(t, store.SaveQueueMode(domain.BuildQueue))

	room, err := store.LoadRoom()
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", room)

	mode, err := store.LoadQueueMode()
	require.NoError(t, err)
	assert.Equal(t, domain.BuildQueue, mode)

	data, err := os.ReadFile(filepath.Join(dir, statefile.RoomFile))
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", string(data))
}

func TestStore_OverwritesWholesale(t *testing.T) {
	store := statefile.NewStore(t.TempDir())

	require.NoError(t, store.SaveRoom("Living Room"))
	require.NoError(t, store.SaveRoom("Bad"))

	room, err := store.LoadRoom()
	require.NoError(t, err)
	assert.Equal(t, "Bad", room)
}

func TestStore_MissingFiles(t *testing.T) {
	store := statefile.NewStore(t.TempDir())

	_, err := store.LoadRoom()
	assert.True(t, errors.Is(err, domain.ErrStateUnavailable))

	_, err = store.LoadQueueMode()
	assert.True(t, errors.Is(err, domain.ErrStateUnavailable))
}

func TestStore_UnknownModeTag(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, statefile.ModeFile), []byte("shuffle\n"), 0644))

	_, err := statefile.NewStore(dir).LoadQueueMode()
	assert.ErrorIs(t, err, domain.ErrStateUnavailable)
}

func TestStore_TrailingNewline(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, statefile.RoomFile), []byte("Büro\n"), 0644))

	room, err := statefile.NewStore(dir).LoadRoom()
	require.NoError(t, err)
	assert.Equal(t, "Büro", room)
}

func TestStore_Restore(t *testing.T) {
	t.Run("defaults without files", func(t *testing.T) {
		state := statefile.NewStore(t.TempDir()).Restore("", "Büro", discardLogger())
		assert.Equal(t, "Büro", state.CurrentRoom)
		assert.Equal(t, domain.PlayAndQueue, state.QueueMode)
		assert.Empty(t, state.LastCode)
	})

	t.Run("persisted room survives restart", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, statefile.NewStore(dir).SaveRoom("Kitchen"))
		require.NoError(t, statefile.NewStore(dir).SaveQueueMode(domain.PlayAndClear))

		state := statefile.NewStore(dir).Restore("", "Büro", discardLogger())
		assert.Equal(t, "Kitchen", state.CurrentRoom)
		assert.Equal(t, domain.PlayAndClear, state.QueueMode)
	})

	t.Run("override wins", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, statefile.NewStore(dir).SaveRoom("Kitchen"))

		state := statefile.NewStore(dir).Restore("Bad", "Büro", discardLogger())
		assert.Equal(t, "Bad", state.CurrentRoom)
	})
}
