package bridge

import (
	"time"

	"github.com/danmuck/modellerbridge/internal/protocol/wire"
)

// BackoffConfig defines retry delay growth between polls.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines session behavior. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// ToolWaitAttempts bounds how often the registry is polled for a
	// requested namespace before ToolDoesNotExist is sent.
	ToolWaitAttempts int
	ToolWait         BackoffConfig
	ProgressInterval time.Duration
	TextEncoding     wire.Encoding
	Limits           wire.Limits
	// PerformanceMode writes each run command's wall time to the logbook.
	PerformanceMode bool
}

func DefaultConfig() Config {
	return Config{
		ToolWaitAttempts: 9,
		ToolWait: BackoffConfig{
			InitialDelay: time.Second,
			Multiplier:   1.0,
			MaxDelay:     time.Second,
			Jitter:       false,
		},
		ProgressInterval: 16670 * time.Microsecond,
		TextEncoding:     wire.EncodingUTF8,
		Limits:           wire.DefaultLimits(),
	}
}

// WithDefaults fills unset fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ToolWaitAttempts <= 0 {
		c.ToolWaitAttempts = def.ToolWaitAttempts
	}
	if c.ToolWait.InitialDelay <= 0 {
		c.ToolWait = def.ToolWait
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = def.ProgressInterval
	}
	if c.TextEncoding == "" {
		c.TextEncoding = def.TextEncoding
	}
	if c.Limits.MaxTextBytes == 0 {
		c.Limits = def.Limits
	}
	return c
}
