//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package runlock

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestAcquire_ExclusiveUntilRelease(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "warehouse.lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	if _, err := Acquire(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire error = %v, want ErrLocked", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if got := strings.TrimSpace(string(b)); got != strconv.Itoa(os.Getpid()) {
		t.Fatalf("lock file = %q, want pid", got)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}

	again, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	defer again.Release()
	if again.Path() != path {
		t.Fatalf("Path() = %q", again.Path())
	}
}

func TestAcquire_BadDir(t *testing.T) {
	t.Parallel()

	if _, err := Acquire(filepath.Join(t.TempDir(), "missing", "x.lock")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
