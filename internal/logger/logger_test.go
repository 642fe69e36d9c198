package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_LevelAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newConsole(&buf, false, "gif", true).Component("pump")

	l.Debug().Msg("hidden")
	l.Warn().Int("frame", 2).Msg("skipped")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "pump")
	assert.Contains(t, out, "frame=2")
}

func TestConsole_Debug(t *testing.T) {
	var buf bytes.Buffer
	l := newConsole(&buf, true, "gif", true)

	l.Debug().Msg("shown")

	assert.Contains(t, buf.String(), "shown")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newJSON(&buf, false).Component("player")

	l.Debug().Msg("hidden")
	l.Error().Msg("load failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"c":"player"`)
	assert.Contains(t, out, `"message":"load failed"`)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error().Msg("nothing")
	l.Component("x").Info().Msg("nothing")
}
