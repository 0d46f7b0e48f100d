package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "question-bank", "production")

	logger.Info().Str("path", "/questions/").Msg("request")
	logger.Debug().Msg("скрыто на уровне info")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "question-bank", entry["app"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "/questions/", entry["path"])
	assert.Equal(t, "request", entry["message"])
}

func TestNewWithWriter_DevelopmentIsConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "question-bank", "development")

	logger.Debug().Msg("boot")
	assert.Contains(t, buf.String(), "boot")
	assert.Contains(t, buf.String(), "app=question-bank")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "question-bank", "production")

	ctx := IntoContext(context.Background(), logger)
	FromContext(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	buf.Reset()
	fallback := FromContext(context.Background())
	require.NotNil(t, fallback)
	fallback.Error().Msg("lost")
	assert.Empty(t, buf.String())
}
