package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
)

func TestInit_JSONOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info"}) })

	Info().Msg("hidden")
	Warn().Str("k", "v").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestParseLevel_UnknownFallsBackToInfo(t *testing.T) {
	assert.Equal(t, "info", parseLevel("nonsense").String())
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
}

func TestWatermillAdapter_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info"}) })

	adapter := NewWatermillAdapter().With(watermill.LogFields{"topic": "engagement.created"})
	adapter.Error("handler failed", errors.New("boom"), watermill.LogFields{"attempt": 1})

	out := buf.String()
	assert.Contains(t, out, `"topic":"engagement.created"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"component":"events"`)
}

func TestDebug_OnlyAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info"}) })

	Debug().Msg("quiet")
	assert.Empty(t, buf.String())

	Init(Config{Level: "debug", Format: "json", Output: &buf})
	Debug().Msg("loud")
	assert.Contains(t, buf.String(), `"level":"debug"`)
	assert.Contains(t, buf.String(), `"message":"loud"`)
}
