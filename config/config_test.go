package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "stderr", cfg.Status.Output)
	assert.Equal(t, 120, cfg.Status.MaxLabelWidth)
	assert.Equal(t, 6*time.Second, cfg.Status.NotificationDuration)
	assert.Equal(t, 5*time.Second, cfg.Status.DrainTimeout)
	assert.Equal(t, 3*time.Second, cfg.Status.CancelTimeout)
	assert.Equal(t, "termstatus", cfg.Monitoring.MetricsPrefix)
	assert.Empty(t, cfg.Monitoring.PushURL)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
status:
  output: stdout
  max_label_width: 80
  notification_duration: 2s
logging:
  level: debug
  format: json
monitoring:
  push_url: http://localhost:8428
  metrics_prefix: myapp
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "stdout", cfg.Status.Output)
	assert.Equal(t, 80, cfg.Status.MaxLabelWidth)
	assert.Equal(t, 2*time.Second, cfg.Status.NotificationDuration)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "http://localhost:8428", cfg.Monitoring.PushURL)
	assert.Equal(t, "myapp", cfg.Monitoring.MetricsPrefix)

	// Unset fields still get defaults.
	assert.Equal(t, 5*time.Second, cfg.Status.DrainTimeout)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "status: [not a mapping")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid output", func(t *testing.T) {
		path := writeConfig(t, "status:\n  output: /dev/tty9\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "status.output")
	})

	t.Run("negative label width", func(t *testing.T) {
		path := writeConfig(t, "status:\n  max_label_width: -5\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "max_label_width")
	})

	t.Run("negative drain timeout", func(t *testing.T) {
		path := writeConfig(t, "status:\n  drain_timeout: -1s\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "drain_timeout")
	})
}

func TestWriter(t *testing.T) {
	assert.Same(t, os.Stdout, (&StatusConfig{Output: "stdout"}).Writer())
	assert.Same(t, os.Stderr, (&StatusConfig{Output: "stderr"}).Writer())
}
