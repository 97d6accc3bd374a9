package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := Log{AppName: "test", Logger: newLogrusLogger("debug", &buf)}

	l.Error("RideService.Accept", "tx failed", "ride", "42")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "error", out["level"])
	assert.Equal(t, "tx failed", out["msg"])
	assert.Equal(t, "RideService.Accept", out["context"])
	assert.Equal(t, "ride", out["scope"])
	assert.Equal(t, "42", out["meta"])
	assert.Equal(t, "test", out["service"])
	assert.Contains(t, out["file"], "log_test.go")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := Log{AppName: "test", Logger: newLogrusLogger("WARN", &buf)}

	l.Info("ctx", "hidden", "", "")
	assert.Zero(t, buf.Len())

	l.Warn("ctx", "shown", "", "")
	assert.Contains(t, buf.String(), "shown")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := Log{AppName: "test", Logger: newLogrusLogger("chatty", &buf)}

	l.Debug("ctx", "hidden", "", "")
	l.Info("ctx", "shown", "", "")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
