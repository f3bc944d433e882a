package options

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tableflip.dev/tradelog/pkg/config"
)

func TestIsYes(t *testing.T) {
	for answer, want := range map[string]bool{
		"y": true, "YES": true, " yes\n": true,
		"": false, "n": false, "nope": false,
	} {
		if got := IsYes(answer); got != want {
			t.Fatalf("IsYes(%q) = %v, want %v", answer, got, want)
		}
	}
}

func TestConfirmerYes(t *testing.T) {
	o := &ConfirmOptions{Yes: true}
	ok, err := o.Confirmer().Confirm(context.Background(), "Delete?")
	if err != nil || !ok {
		t.Fatalf("Confirm = %v, %v", ok, err)
	}
}

func TestGetEntered(t *testing.T) {
	o := &AddOptions{EnteredString: "2024-03-01 10:30"}
	got, err := o.GetEntered()
	if err != nil {
		t.Fatalf("GetEntered: %v", err)
	}
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("GetEntered = %s, want %s", got, want)
	}

	o.EnteredString = "yesterday"
	if _, err := o.GetEntered(); err == nil {
		t.Fatalf("expected error")
	}

	o.EnteredString = ""
	if got, err := o.GetEntered(); err != nil || !got.IsZero() {
		t.Fatalf("empty = %s, %v", got, err)
	}
}

func TestGetLegsAndImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	o := &AddOptions{
		Legs:   []string{"BUY CALL 1 2024-03-15 450 2.5", "SELL CALL 1 2024-03-15 460 1"},
		Images: []string{path},
	}
	legs, err := o.GetLegs()
	if err != nil || len(legs) != 2 || legs[1].Strike != "460" {
		t.Fatalf("GetLegs = %+v, %v", legs, err)
	}
	blobs, err := o.GetImages()
	if err != nil || len(blobs) != 1 || blobs[0].Name != "chart.png" || string(blobs[0].Data) != "png" {
		t.Fatalf("GetImages = %+v, %v", blobs, err)
	}

	o.Legs = []string{"BUY CALL"}
	if _, err := o.GetLegs(); err == nil {
		t.Fatalf("expected error for short leg")
	}
}

func TestClientOptionsApply(t *testing.T) {
	cfg := &config.Config{Server: config.DefaultServer, Timeout: config.DefaultTimeout}
	(&ClientOptions{}).Apply(cfg)
	if cfg.Server != config.DefaultServer || cfg.Timeout != config.DefaultTimeout {
		t.Fatalf("unset flags changed config: %+v", cfg)
	}
	(&ClientOptions{Server: "http://other:1", Timeout: time.Second}).Apply(cfg)
	if cfg.Server != "http://other:1" || cfg.Timeout != time.Second {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestTabSelection(t *testing.T) {
	sel, err := (&TabOptions{}).Selection()
	if err != nil || !sel.IsUnset() {
		t.Fatalf("empty tab = %s, %v", sel, err)
	}
	sel, err = (&TabOptions{Tab: "2024-03-15"}).Selection()
	if err != nil {
		t.Fatalf("Selection: %v", err)
	}
	if key, ok := sel.Key(); !ok || key != "2024-03-15" {
		t.Fatalf("key = %q, %v", key, ok)
	}
}

func TestExactlyOneID(t *testing.T) {
	o := &IDOptions{}
	if err := o.ExactlyOneID(nil, []string{"42"}); err != nil || o.ID != 42 {
		t.Fatalf("ExactlyOneID = %v, id %d", err, o.ID)
	}
	for _, args := range [][]string{nil, {"1", "2"}, {"x"}, {"0"}} {
		if err := o.ExactlyOneID(nil, args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}
