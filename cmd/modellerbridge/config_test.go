package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/modellerbridge/internal/bridge"
	"github.com/danmuck/modellerbridge/internal/protocol/wire"
	"github.com/danmuck/modellerbridge/internal/testutil/testlog"
)

func TestLoadAppConfigDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)

	cfg, err := loadAppConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Bridge.ToolWaitAttempts != 12 {
		t.Fatalf("unexpected attempts: %d", cfg.Bridge.ToolWaitAttempts)
	}
	wait := bridge.BackoffConfig{InitialDelay: 500 * time.Millisecond, Multiplier: 2, MaxDelay: 2 * time.Second, Jitter: true}
	if cfg.Bridge.ToolWait != wait {
		t.Fatalf("unexpected tool wait policy: %+v", cfg.Bridge.ToolWait)
	}
	if cfg.Bridge.ProgressInterval != 50*time.Millisecond {
		t.Fatalf("unexpected progress interval: %v", cfg.Bridge.ProgressInterval)
	}
	if cfg.Bridge.TextEncoding != wire.EncodingUTF16LE {
		t.Fatalf("unexpected encoding: %q", cfg.Bridge.TextEncoding)
	}
	if cfg.Bridge.Limits.MaxTextBytes != 1<<20 {
		t.Fatalf("unexpected text limit: %d", cfg.Bridge.Limits.MaxTextBytes)
	}
	if cfg.LogLevel != "debug" || cfg.LogFile != "modellerbridge.log" {
		t.Fatalf("unexpected log settings: %q %q", cfg.LogLevel, cfg.LogFile)
	}
	if cfg.AdminListen != "127.0.0.1:7420" {
		t.Fatalf("unexpected admin listen: %q", cfg.AdminListen)
	}
	if cfg.OTLPEndpoint != "" || cfg.ToolboxRoot != "toolbox" {
		t.Fatalf("unexpected endpoints: %q %q", cfg.OTLPEndpoint, cfg.ToolboxRoot)
	}
}

func TestLoadAppConfigKeepsUnsetDefaults(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "partial.toml")
	if err := os.WriteFile(path, []byte("tool_wait_attempts = 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	def := bridge.DefaultConfig()
	if cfg.Bridge.ToolWaitAttempts != 3 {
		t.Fatalf("unexpected attempts: %d", cfg.Bridge.ToolWaitAttempts)
	}
	if cfg.Bridge.ToolWait != def.ToolWait || cfg.Bridge.ProgressInterval != def.ProgressInterval {
		t.Fatalf("defaults not kept: %+v", cfg.Bridge)
	}
	if cfg.AdminListen != "" {
		t.Fatalf("admin listener should be off by default")
	}
}

func TestLoadAppConfigRejectsBadValues(t *testing.T) {
	testlog.Start(t)

	dir := t.TempDir()
	for name, body := range map[string]string{
		"encoding.toml": "text_encoding = \"latin1\"\n",
		"interval.toml": "tool_wait_interval = \"soon\"\n",
		"attempts.toml": "tool_wait_attempts = 0\n",
		"max.toml":      "tool_wait_interval = \"2s\"\ntool_wait_max_interval = \"1s\"\n",
		"growth.toml":   "tool_wait_multiplier = 0.5\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := loadAppConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadAppConfigToolWaitPolicyReachesDelay(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "wait.toml")
	body := "tool_wait_interval = \"100ms\"\ntool_wait_max_interval = \"300ms\"\ntool_wait_multiplier = 2.0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
	for i, d := range want {
		if got := cfg.Bridge.ToolWait.Delay(i+1, nil); got != d {
			t.Fatalf("delay %d: got %v want %v", i+1, got, d)
		}
	}
}

func TestLoadAppConfigEmptyPathIsDefault(t *testing.T) {
	testlog.Start(t)

	cfg, err := loadAppConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bridge.ToolWaitAttempts != bridge.DefaultConfig().ToolWaitAttempts {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
