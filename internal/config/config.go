// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Config holds runtime configuration for the loop launcher, loaded from
// environment variables.
type Config struct {
	Script       string        // Lua driver script
	PollInterval time.Duration // how often the driver's update runs
	Volume       float64       // output volume, 0..1
	LogLevel     string

	// Offline rendering
	BouncePath   string // write a WAV here instead of playing when set
	BounceCycles int    // global loop cycles to render
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Script:       envStr("LOOP_SCRIPT", "scripts/somber.lua"),
		PollInterval: envDuration("LOOP_POLL_INTERVAL", 10*time.Millisecond),
		Volume:       min(max(envFloat("LOOP_VOLUME", 1), 0), 1),
		LogLevel:     envStr("LOOP_LOG_LEVEL", "info"),
		BouncePath:   envStr("LOOP_BOUNCE", ""),
		BounceCycles: envInt("LOOP_BOUNCE_CYCLES", 4),
	}
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return lvl
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts Go durations ("25ms") or plain milliseconds ("25").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Millisecond
	}
	return fallback
}
