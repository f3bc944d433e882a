package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnv, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server != DefaultServer || cfg.Listen != DefaultListen || cfg.Timeout != DefaultTimeout {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.Encoding != "console" {
		t.Fatalf("unexpected log defaults %+v", cfg.Log)
	}
	if cfg.BasePath() == DefaultPath {
		t.Fatalf("base path %q was not expanded", cfg.BasePath())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigPathEnv, dir)
	t.Setenv("HOME", t.TempDir())
	yaml := "server: http://journal.internal:9000/\ntimeout: 3s\nlog:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, ".tradelog.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TRADELOG_LISTEN", ":9999")
	t.Setenv("TRADELOG_LOG_ENCODING", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server != "http://journal.internal:9000" {
		t.Fatalf("server = %q", cfg.Server)
	}
	if cfg.Timeout != 3*time.Second {
		t.Fatalf("timeout = %s", cfg.Timeout)
	}
	if cfg.Listen != ":9999" {
		t.Fatalf("listen = %q, env should win", cfg.Listen)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Encoding != "json" {
		t.Fatalf("log = %+v", cfg.Log)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv(ConfigPathEnv, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TRADELOG_TIMEOUT", "0s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}
