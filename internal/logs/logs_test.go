package logs_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cielang/cie/internal/logs"
)

func TestNew_TextToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := logs.New(&buf, "")
	require.NoError(t, err)
	require.Nil(t, closer)

	logger.Info("hello", "file", "a.cie")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "file=a.cie")
}

func TestNew_TraceFileGetsJSON(t *testing.T) {
	var buf bytes.Buffer
	trace := filepath.Join(t.TempDir(), "trace.jsonl")

	logger, closer, err := logs.New(&buf, trace)
	require.NoError(t, err)
	logger.Info("run start", "file", "a.cie")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(trace)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &rec))
	assert.Equal(t, "run start", rec["msg"])
	assert.Equal(t, "a.cie", rec["file"])
}

func TestSetLevel_FiltersTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logs.New(&buf, "")
	require.NoError(t, err)

	logs.SetLevel("error")
	defer logs.SetLevel("info")

	logger.Info("quiet")
	logger.Error("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
