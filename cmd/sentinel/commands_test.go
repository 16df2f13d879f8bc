package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNotifyCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STATE_FILE", filepath.Join(dir, "checkbox_state.json"))
	t.Setenv("LOG_LEVEL", "error")
	cfg := filepath.Join(dir, "missing.yaml")

	out, err := runCmd(t, "notify", "status", "--config", cfg)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "telegram bot: false") {
		t.Errorf("unexpected status output %q", out)
	}

	if _, err := runCmd(t, "notify", "on", "--config", cfg); err != nil {
		t.Fatalf("on: %v", err)
	}
	out, _ = runCmd(t, "notify", "status", "--config", cfg)
	if !strings.Contains(out, "telegram bot: true") {
		t.Errorf("flag should persist, got %q", out)
	}

	if _, err := runCmd(t, "notify", "maybe", "--config", cfg); err == nil {
		t.Error("expected error for invalid argument")
	}
}
