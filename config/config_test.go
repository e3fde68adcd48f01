package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "arbor.yaml", `
listen_addr: ":6000"
wal:
  dir: /tmp/wal
  segment_size: 1024
  segment_age: 5m
kafka:
  enabled: true
  brokers: ["broker-1:9092"]
  topic: idx.events
  broadcast_interval: 1s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.ListenAddr)
	assert.Equal(t, "/tmp/wal", cfg.WAL.Dir)
	assert.Equal(t, uint64(1024), cfg.WAL.SegmentSize)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"broker-1:9092"}, cfg.Kafka.Brokers)

	age, err := cfg.SegmentAge()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, age)

	// Unset fields keep their defaults.
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "arbor.json", `{"listen_addr": ":7000", "wal": {"dir": "/d"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "/d", cfg.WAL.Dir)
}

func TestLoadRejectsBadInput(t *testing.T) {
	_, err := Load(writeFile(t, "arbor.toml", "x = 1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(writeFile(t, "bad.yaml", `
wal:
  dir: /d
  segment_age: "not-a-duration"
`))
	assert.ErrorContains(t, err, "segment_age")

	_, err = Load(writeFile(t, "kafka.yaml", `
kafka:
  enabled: true
  brokers: []
`))
	assert.ErrorContains(t, err, "kafka.brokers")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
