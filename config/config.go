// SPDX-License-Identifier: EPL-2.0

// Package config reads the engine settings from the environment.
package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/audtl/beat"
	"github.com/ik5/audtl/filesource"
	"github.com/ik5/audtl/timeline"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Audio format shared by every node
	SampleRate      int
	Channels        int
	FramesPerBuffer int

	// Tempo and zoom
	BPM            float64
	PixelPerSample float64

	// File cache
	CacheBudgetMB int
	LazyThreshold time.Duration // files this long are decoded on demand

	LogLevel string // debug, info, warn or error
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SampleRate:      envInt("AUDTL_SAMPLE_RATE", 44100),
		Channels:        envInt("AUDTL_CHANNELS", 2),
		FramesPerBuffer: envInt("AUDTL_FRAMES_PER_BUFFER", 1024),

		BPM:            envFloat("AUDTL_BPM", 120),
		PixelPerSample: envFloat("AUDTL_PIXEL_PER_SAMPLE", 0.01),

		CacheBudgetMB: envInt("AUDTL_CACHE_BUDGET_MB", 500),
		LazyThreshold: time.Duration(envInt("AUDTL_LAZY_THRESHOLD", 300)) * time.Second,

		LogLevel: envStr("AUDTL_LOG_LEVEL", "info"),
	}
}

func (c Config) Format() timeline.Format {
	return timeline.Format{
		SampleRate:      c.SampleRate,
		Channels:        c.Channels,
		FramesPerBuffer: c.FramesPerBuffer,
	}
}

func (c Config) Beat() *beat.Beat {
	return beat.New(c.BPM, float64(c.SampleRate), c.PixelPerSample)
}

// CacheOptions configures a filesource.Cache from c.
func (c Config) CacheOptions(log *slog.Logger) []filesource.CacheOption {
	return []filesource.CacheOption{
		filesource.WithBudget(int64(c.CacheBudgetMB) * 1024 * 1024),
		filesource.WithLazyThreshold(c.LazyThreshold),
		filesource.WithLogger(log),
	}
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Logger writes text records at the configured level to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level()}))
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
