package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradelog.log")
	log, err := New("debug", "json", path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Debug("hello")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("log = %s", data)
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New("loud", "console", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Fatalf("debug should be disabled")
	}
}
