package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerJSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger("warn", "json", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "control", "Chat")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "Chat", entry["control"])
}

func TestInitLoggerDefaultsToTextAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger("bogus", "", &buf)

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Same(t, logger, Logger)
}

func TestDeferredHoldsUntilFlush(t *testing.T) {
	var deferred Deferred
	logger := InitLogger("info", "text", &deferred)
	logger.Warn("skip audio session", "pid", 42)

	var out bytes.Buffer
	require.NoError(t, deferred.Flush(&out))
	assert.Contains(t, out.String(), "skip audio session")
	assert.Contains(t, out.String(), "pid=42")

	out.Reset()
	require.NoError(t, deferred.Flush(&out))
	assert.Empty(t, out.String())
}
