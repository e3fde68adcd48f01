// Package config loads and validates the server configuration from
// YAML or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr  string `yaml:"listen_addr" json:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`

	WAL      WALConfig   `yaml:"wal" json:"wal"`
	Outbox   OutboxCfg   `yaml:"outbox" json:"outbox"`
	Snapshot SnapshotCfg `yaml:"snapshot" json:"snapshot"`
	Kafka    KafkaConfig `yaml:"kafka" json:"kafka"`
}

type WALConfig struct {
	Dir         string `yaml:"dir" json:"dir"`
	SegmentSize uint64 `yaml:"segment_size" json:"segment_size"`
	SegmentAge  string `yaml:"segment_age" json:"segment_age"`
}

type OutboxCfg struct {
	Dir string `yaml:"dir" json:"dir"`
}

type SnapshotCfg struct {
	Dir      string `yaml:"dir" json:"dir"`
	Interval string `yaml:"interval" json:"interval"`
}

type KafkaConfig struct {
	Enabled           bool     `yaml:"enabled" json:"enabled"`
	Brokers           []string `yaml:"brokers" json:"brokers"`
	Topic             string   `yaml:"topic" json:"topic"`
	Group             string   `yaml:"group" json:"group"`
	BroadcastInterval string   `yaml:"broadcast_interval" json:"broadcast_interval"`
}

func Default() *Config {
	return &Config{
		ListenAddr:  ":50051",
		MetricsAddr: ":9090",
		WAL: WALConfig{
			Dir:         "./data/wal",
			SegmentSize: 2 * 1024 * 1024,
			SegmentAge:  "1m",
		},
		Outbox:   OutboxCfg{Dir: "./data/outbox"},
		Snapshot: SnapshotCfg{Dir: "./data/snapshots", Interval: "30s"},
		Kafka: KafkaConfig{
			Enabled:           false,
			Brokers:           []string{"localhost:9092"},
			Topic:             "arbor.inserts",
			Group:             "arbor-follower",
			BroadcastInterval: "250ms",
		},
	}
}

// Load reads a config file, fills unset fields from defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must be set")
	}
	if c.WAL.Dir == "" {
		return fmt.Errorf("wal.dir must be set")
	}
	if _, err := c.SegmentAge(); err != nil {
		return err
	}
	if _, err := c.SnapshotInterval(); err != nil {
		return err
	}
	if _, err := c.BroadcastInterval(); err != nil {
		return err
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers must be set when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic must be set when kafka is enabled")
		}
	}
	return nil
}

func (c *Config) SegmentAge() (time.Duration, error) {
	return parseDuration("wal.segment_age", c.WAL.SegmentAge)
}

func (c *Config) SnapshotInterval() (time.Duration, error) {
	return parseDuration("snapshot.interval", c.Snapshot.Interval)
}

func (c *Config) BroadcastInterval() (time.Duration, error) {
	return parseDuration("kafka.broadcast_interval", c.Kafka.BroadcastInterval)
}

func parseDuration(field, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must be non-negative", field)
	}
	return d, nil
}
