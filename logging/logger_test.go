package logging

import (
	"path/filepath"
	"testing"
)

func TestNewDefaultsOnBadLevel(t *testing.T) {
	logger, err := New(Config{Level: "loud"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
	logger.Info("test message")
}

func TestNewWithFile(t *testing.T) {
	logger, err := New(Config{
		Level: "debug",
		File:  filepath.Join(t.TempDir(), "gradecast.log"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("file sink active")
	if err := logger.Sync(); err != nil {
		// Sync on stderr can fail on some platforms; only the file core matters here.
		t.Logf("sync: %v", err)
	}
}
