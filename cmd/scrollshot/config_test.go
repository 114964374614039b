package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/scrollshot/internal/config"
)

func TestConfigPrint(t *testing.T) {
	tr := newTestRoot()
	tr.config.Capture.Frames = 42
	cmd, err := parseConfigCmd([]string{"print"}, tr.root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := tr.stdout.String()
	for _, want := range []string{"[capture]", "frames = 42", "[stitch]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigSaveToXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	tr := newTestRoot()
	tr.config.Blur.Radius = 3
	cmd, err := parseConfigCmd([]string{"save"}, tr.root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	path := filepath.Join(dir, "scrollshot", "config.rc")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open saved config: %v", err)
	}
	defer f.Close()
	cfg, err := config.Parse(f)
	if err != nil {
		t.Fatalf("parse saved config: %v", err)
	}
	if cfg.Blur.Radius != 3 {
		t.Fatalf("expected radius 3, got %d", cfg.Blur.Radius)
	}
}

func TestConfigRejectsUnknownAction(t *testing.T) {
	tr := newTestRoot()
	var uerr *UsageError
	if _, err := parseConfigCmd([]string{"edit"}, tr.root); err == nil {
		t.Fatal("expected error")
	} else if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
