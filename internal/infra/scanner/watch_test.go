package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrplay/internal/infra/scanner"
)

func dropSpoolFile(t *testing.T, dir, name, content string) {
	t.Helper()
	tmp := filepath.Join(dir, name+".tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0644))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, name)))
}

func TestWatchSource_ExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	dropSpoolFile(t, dir, "01.txt", "cmd:room|Kitchen\n# note\nfavorite:Morning\n")

	source := scanner.NewWatchSource(dir, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, source.Start(ctx))
	defer source.Stop()

	code, err := source.NextCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cmd:room|Kitchen", code)

	code, err = source.NextCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "favorite:Morning", code)

	_, err = os.Stat(filepath.Join(dir, "01.txt.processed"))
	assert.NoError(t, err, "spool file should be marked processed")

	go func() {
		time.Sleep(50 * time.Millisecond)
		tmp := filepath.Join(dir, "02.txt.tmp")
		os.WriteFile(tmp, []byte("spotify:track:9\n"), 0644)
		os.Rename(tmp, filepath.Join(dir, "02.txt"))
	}()

	code, err = source.NextCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "spotify:track:9", code)
}

func TestWatchSource_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("cmd:next\n"), 0644))

	source := scanner.NewWatchSource(dir, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, source.Start(ctx))
	defer source.Stop()

	_, err := source.NextCode(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWatchSource_NotStarted(t *testing.T) {
	source := scanner.NewWatchSource(t.TempDir(), discardLogger())
	_, err := source.NextCode(context.Background())
	assert.Error(t, err)
}
