package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", JSON: true, Prefix: "ETL1 Proveedores", Output: &buf})

	log.With("bucket", "raw").Info("ultima particion encontrada", "partition", "proveedores/2024-02-15")

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "ultima particion encontrada", got["msg"])
	assert.Equal(t, "raw", got["bucket"])
	assert.Equal(t, "proveedores/2024-02-15", got["partition"])
	assert.Contains(t, line, "ETL1 Proveedores")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", JSON: true, Output: &buf})

	log.Debug("hidden")
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "verbose", JSON: false, Output: &buf})

	log.Debug("hidden")
	assert.Empty(t, buf.String())
	log.Info("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", " debug ")
	t.Setenv("LOG_FORMAT", "text")

	cfg := ConfigFromEnv("athena-query")
	assert.Equal(t, "debug", cfg.Level)
	assert.False(t, cfg.JSON)
	assert.Equal(t, "athena-query", cfg.Prefix)
}
