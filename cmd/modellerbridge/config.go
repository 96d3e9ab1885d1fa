package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/modellerbridge/internal/bridge"
	"github.com/danmuck/modellerbridge/internal/protocol/wire"
)

type fileConfig struct {
	ToolWaitAttempts    int     `toml:"tool_wait_attempts"`
	ToolWaitInterval    string  `toml:"tool_wait_interval"`
	ToolWaitMaxInterval string  `toml:"tool_wait_max_interval"`
	ToolWaitMultiplier  float64 `toml:"tool_wait_multiplier"`
	ToolWaitJitter      bool    `toml:"tool_wait_jitter"`
	ProgressInterval    string  `toml:"progress_interval"`
	TextEncoding        string  `toml:"text_encoding"`
	MaxTextBytes        uint64  `toml:"max_text_bytes"`
	LogLevel            string  `toml:"log_level"`
	LogFile             string  `toml:"log_file"`
	AdminListen         string  `toml:"admin_listen"`
	OTLPEndpoint        string  `toml:"otlp_endpoint"`
	ToolboxRoot         string  `toml:"toolbox_root"`
}

// appConfig is everything the process needs besides its positional
// arguments.
type appConfig struct {
	Bridge       bridge.Config
	LogLevel     string
	LogFile      string
	AdminListen  string
	OTLPEndpoint string
	ToolboxRoot  string
}

func defaultAppConfig() appConfig {
	return appConfig{Bridge: bridge.DefaultConfig()}
}

// loadAppConfig overlays the keys present in path on the defaults. An empty
// path returns the defaults.
func loadAppConfig(path string) (appConfig, error) {
	cfg := defaultAppConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return appConfig{}, fmt.Errorf("load modellerbridge config: %w", err)
	}

	if meta.IsDefined("tool_wait_attempts") {
		if raw.ToolWaitAttempts <= 0 {
			return appConfig{}, fmt.Errorf("tool_wait_attempts must be positive, got %d", raw.ToolWaitAttempts)
		}
		cfg.Bridge.ToolWaitAttempts = raw.ToolWaitAttempts
	}

	if meta.IsDefined("tool_wait_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ToolWaitInterval))
		if err != nil {
			return appConfig{}, fmt.Errorf("parse tool_wait_interval: %w", err)
		}
		cfg.Bridge.ToolWait.InitialDelay = d
		cfg.Bridge.ToolWait.MaxDelay = d
	}

	if meta.IsDefined("tool_wait_max_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ToolWaitMaxInterval))
		if err != nil {
			return appConfig{}, fmt.Errorf("parse tool_wait_max_interval: %w", err)
		}
		if d < cfg.Bridge.ToolWait.InitialDelay {
			return appConfig{}, fmt.Errorf("tool_wait_max_interval %s is below tool_wait_interval %s", d, cfg.Bridge.ToolWait.InitialDelay)
		}
		cfg.Bridge.ToolWait.MaxDelay = d
	}

	if meta.IsDefined("tool_wait_multiplier") {
		if raw.ToolWaitMultiplier < 1 {
			return appConfig{}, fmt.Errorf("tool_wait_multiplier must be at least 1, got %g", raw.ToolWaitMultiplier)
		}
		cfg.Bridge.ToolWait.Multiplier = raw.ToolWaitMultiplier
	}

	if meta.IsDefined("tool_wait_jitter") {
		cfg.Bridge.ToolWait.Jitter = raw.ToolWaitJitter
	}

	if meta.IsDefined("progress_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ProgressInterval))
		if err != nil {
			return appConfig{}, fmt.Errorf("parse progress_interval: %w", err)
		}
		cfg.Bridge.ProgressInterval = d
	}

	if meta.IsDefined("text_encoding") {
		enc, err := wire.ParseEncoding(raw.TextEncoding)
		if err != nil {
			return appConfig{}, fmt.Errorf("parse text_encoding: %w", err)
		}
		cfg.Bridge.TextEncoding = enc
	}

	if meta.IsDefined("max_text_bytes") {
		cfg.Bridge.Limits.MaxTextBytes = raw.MaxTextBytes
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("log_file") {
		cfg.LogFile = strings.TrimSpace(raw.LogFile)
	}

	if meta.IsDefined("admin_listen") {
		cfg.AdminListen = strings.TrimSpace(raw.AdminListen)
	}

	if meta.IsDefined("otlp_endpoint") {
		cfg.OTLPEndpoint = strings.TrimSpace(raw.OTLPEndpoint)
	}

	if meta.IsDefined("toolbox_root") {
		cfg.ToolboxRoot = strings.TrimSpace(raw.ToolboxRoot)
	}

	return cfg, nil
}
