package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPIDLifecycle(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "tts_daemon.pid")

	if IsRunning(pidFile) {
		t.Error("IsRunning = true with no pid file")
	}

	if err := WritePID(pidFile); err != nil {
		t.Fatalf("WritePID error: %v", err)
	}
	if !IsRunning(pidFile) {
		t.Error("IsRunning = false for our own pid")
	}

	RemovePID(pidFile)
	if IsRunning(pidFile) {
		t.Error("IsRunning = true after RemovePID")
	}
	RemovePID(pidFile) // second remove is fine
}

func TestIsRunningStaleAndGarbage(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "tts_daemon.pid")

	// An exited process leaves a stale pid behind. Huge pids are safely
	// out of range on Linux.
	if err := os.WriteFile(pidFile, []byte("999999999\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if IsRunning(pidFile) {
		t.Error("IsRunning = true for a stale pid")
	}

	if err := os.WriteFile(pidFile, []byte("not-a-pid\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if IsRunning(pidFile) {
		t.Error("IsRunning = true for garbage pid file")
	}
}
