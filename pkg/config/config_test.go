package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cielang/cie/pkg/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cie.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
[run]
json_errors = true
dump_env = true

[repl]
prompt = ">> "
history_file = "/tmp/hist"

[watch]
debounce = 250000000
clear_screen = true

[log]
level = "debug"
trace_file = "/tmp/trace.jsonl"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Run.JSONErrors)
	assert.True(t, cfg.Run.DumpEnv)
	assert.Equal(t, ">> ", cfg.Repl.Prompt)
	assert.Equal(t, "/tmp/hist", cfg.Repl.HistoryFile)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.True(t, cfg.Watch.ClearScreen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/trace.jsonl", cfg.Log.TraceFile)
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	path := writeConfig(t, `
[repl]
prompt = "? "
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "? ", cfg.Repl.Prompt)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Repl.HistoryFile)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "loud"
`)

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "invalid log level")
}

func TestLoad_MalformedToml(t *testing.T) {
	path := writeConfig(t, `[run`)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := config.LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "cie> ", cfg.Repl.Prompt)
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "cie> ", cfg.Repl.Prompt)
	assert.False(t, cfg.Run.JSONErrors)
}
