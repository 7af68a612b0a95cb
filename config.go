package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ringqueue/ring"
)

// envReplacer maps flag names to environment keys: producer-core becomes
// RINGBENCH_PRODUCER_CORE.
var envReplacer = strings.NewReplacer("-", "_")

// benchConfig is the resolved harness configuration.
type benchConfig struct {
	Capacity     int
	Items        int
	Runs         int
	Allocator    string
	ProducerCore int
	ConsumerCore int
	Stall        time.Duration
	Cooldown     time.Duration
	MetricsAddr  string
	DB           string
}

var errConfig = errors.New("invalid configuration")

// loadConfig reads and validates every setting from v.
func loadConfig(v *viper.Viper) (benchConfig, error) {
	cfg := benchConfig{
		Capacity:     v.GetInt("capacity"),
		Items:        v.GetInt("items"),
		Runs:         v.GetInt("runs"),
		Allocator:    strings.ToLower(v.GetString("alloc")),
		ProducerCore: v.GetInt("producer-core"),
		ConsumerCore: v.GetInt("consumer-core"),
		Stall:        v.GetDuration("stall"),
		Cooldown:     v.GetDuration("cooldown"),
		MetricsAddr:  v.GetString("metrics"),
		DB:           v.GetString("db"),
	}

	switch {
	case cfg.Capacity <= 0 || uint64(cfg.Capacity) > ring.MaxCapacity:
		return cfg, fmt.Errorf("%w: capacity %d", errConfig, cfg.Capacity)
	case cfg.Items < 0:
		return cfg, fmt.Errorf("%w: items %d", errConfig, cfg.Items)
	case cfg.Runs <= 0:
		return cfg, fmt.Errorf("%w: runs %d", errConfig, cfg.Runs)
	case cfg.Stall <= 0:
		return cfg, fmt.Errorf("%w: stall %v", errConfig, cfg.Stall)
	case cfg.Cooldown <= 0:
		return cfg, fmt.Errorf("%w: cooldown %v", errConfig, cfg.Cooldown)
	}
	if _, ok := allocators[cfg.Allocator]; !ok {
		return cfg, fmt.Errorf("%w: allocator %q", errConfig, cfg.Allocator)
	}
	return cfg, nil
}
