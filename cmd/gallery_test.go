package main

import (
	"bytes"
	"log"
	"path/filepath"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	return &buf
}

func TestRun_MissingConfig(t *testing.T) {
	out := captureLog(t)

	code := run([]string{"-env", "", "-config", filepath.Join(t.TempDir(), "does-not-exist.yml")})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}

	if !strings.Contains(out.String(), "failed to load configuration") {
		t.Fatalf("expected config load failure, got: %s", out.String())
	}
}

func TestRun_UnreadableEnvFile(t *testing.T) {
	out := captureLog(t)

	// A directory cannot be parsed as a dotenv file.
	code := run([]string{"-env", t.TempDir()})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}

	if !strings.Contains(out.String(), "failed to load env file") {
		t.Fatalf("expected env load failure, got: %s", out.String())
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	captureLog(t)

	if code := run([]string{"-nope"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}
