package handoff

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for port file handoff:
// - WritePortFile/ReadPortFile round trip, including nested directories
// - ReadPortFile reports missing files and garbage content distinctly
// - AwaitPortFile returns immediately for existing files
// - AwaitPortFile picks up a file written later
// - AwaitPortFile gives up when the context is done
// - RemovePortFile tolerates missing files

func TestWriteReadPortFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "port")

	require.NoError(t, WritePortFile(path, 40123))

	port, err := ReadPortFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(40123), port)

	// Overwrite replaces the value
	require.NoError(t, WritePortFile(path, 40124))
	port, err = ReadPortFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(40124), port)

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestReadPortFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadPortFile(filepath.Join(t.TempDir(), "port"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPortFileMissing)

	_, err = ReadPortFile(filepath.Join(t.TempDir(), "no-such-dir", "port"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPortFileMissing)
}

func TestReadPortFile_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "text", content: "not a port"},
		{name: "zero", content: "0"},
		{name: "out of range", content: "70000"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "port")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := ReadPortFile(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPort)
			assert.NotErrorIs(t, err, ErrPortFileMissing)
		})
	}
}

func TestAwaitPortFile_AlreadyThere(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "port")
	require.NoError(t, WritePortFile(path, 5555))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	port, err := AwaitPortFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, uint16(5555), port)
}

func TestAwaitPortFile_WrittenLater(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run", "port")

	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = WritePortFile(path, 6666)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	port, err := AwaitPortFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, uint16(6666), port)
}

func TestAwaitPortFile_ContextDone(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "port")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := AwaitPortFile(ctx, path)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRemovePortFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "port")
	require.NoError(t, WritePortFile(path, 7777))

	require.NoError(t, RemovePortFile(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err))

	// Second removal is a no-op
	assert.NoError(t, RemovePortFile(path))
}
