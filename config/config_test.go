package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	for _, k := range []string{"FQBENCH_CONFIG", "FQBENCH_LOG_LEVEL", "FQBENCH_TIME_BINARY", "FQBENCH_REDIS_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	o, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "tools.yaml", o.ConfigFile)
	assert.Equal(t, "info", o.LogLevel)
	assert.Equal(t, "/usr/bin/time", o.TimeBinary)
	assert.Empty(t, o.RedisURL)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("FQBENCH_WORKDIR", "/scratch")
	t.Setenv("FQBENCH_METRICS_FILE", "/var/lib/node_exporter/fqbench.prom")
	o, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "/scratch", o.WorkDir)
	assert.Equal(t, "/var/lib/node_exporter/fqbench.prom", o.MetricsFile)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("FQBENCH_REDIS_URL=redis://localhost:6379/2\n"), 0o644))
	t.Setenv("FQBENCH_REDIS_URL", "")
	os.Unsetenv("FQBENCH_REDIS_URL")

	n, err := LoadEnv([]string{file, filepath.Join(dir, ".env.local")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "redis://localhost:6379/2", os.Getenv("FQBENCH_REDIS_URL"))

	n, err = LoadEnv([]string{filepath.Join(dir, "missing")})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLogrusLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"silent":  logrus.PanicLevel,
		"error":   logrus.ErrorLevel,
		"warn":    logrus.WarnLevel,
		"info":    logrus.InfoLevel,
		"DEBUG":   logrus.DebugLevel,
		"verbose": logrus.InfoLevel,
	}
	for name, want := range cases {
		o := Options{LogLevel: name}
		assert.Equal(t, want, o.LogrusLogLevel(), name)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	o := Options{LogLevel: "warn", LogFormat: "json"}
	logger := o.NewLogger(&buf)
	logger.Info("hidden")
	logger.WithField("tool", "gzip").Warn("skipping tool")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"tool":"gzip"`)
}
