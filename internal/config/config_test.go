package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultTuning(t *testing.T) {
	d := DefaultTuning()
	require.Equal(t, 512, d.MaxLineLength)
	require.Equal(t, 100, d.OutputQueueDepth)
	require.Equal(t, 10*time.Minute, d.ReadTimeout)
}

func TestLoadTuningNoPath(t *testing.T) {
	tn, err := LoadTuning("")
	require.NoError(t, err)
	require.Equal(t, DefaultTuning(), tn)
}

func TestLoadTuningMissingFile(t *testing.T) {
	tn, err := LoadTuning(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultTuning(), tn)
}

func TestLoadTuningPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_line_length: 1024\n"), 0o644))

	tn, err := LoadTuning(path)
	require.NoError(t, err)
	require.Equal(t, 1024, tn.MaxLineLength)
	require.Equal(t, DefaultTuning().OutputQueueDepth, tn.OutputQueueDepth)
}

func TestLoadTuningInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_line_length: [not, a, number]\n"), 0o644))

	_, err := LoadTuning(path)
	require.Error(t, err)
}
