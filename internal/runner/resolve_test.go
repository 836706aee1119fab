package runner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveEnginePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "engine")
	got, err := ResolveEnginePath(abs, "/ignored")
	if err != nil || got != abs {
		t.Fatalf("abs: got %q, %v", got, err)
	}

	base := t.TempDir()
	got, err = ResolveEnginePath("../server/main_system", filepath.Join(base, "bin"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(base, "server", "main_system"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	got, err = ResolveEnginePath("engine", "")
	if err != nil {
		t.Fatal(err)
	}
	exe, _ := os.Executable()
	if filepath.Dir(got) != filepath.Dir(exe) {
		t.Fatalf("relative path should resolve against the executable dir, got %q", got)
	}

	if _, err := ResolveEnginePath("", ""); !errors.Is(err, ErrEngineNotFound) {
		t.Fatalf("empty path: %v", err)
	}
}

func TestCappedBuffer(t *testing.T) {
	b := newCappedBuffer(5)
	n, err := b.Write([]byte("abc"))
	if n != 3 || err != nil {
		t.Fatalf("n=%d err=%v", n, err)
	}
	n, err = b.Write([]byte("defg"))
	if n != 4 || err != nil {
		t.Fatalf("write past cap must report full length: n=%d err=%v", n, err)
	}
	if b.String() != "abcde" || !b.Truncated() {
		t.Fatalf("got %q truncated=%v", b.String(), b.Truncated())
	}
	_, _ = b.Write(nil)
	if b.String() != "abcde" {
		t.Fatal("empty write changed buffer")
	}
}

func TestProcessAliveInvalidPID(t *testing.T) {
	if ProcessAlive(0) || ProcessAlive(-1) {
		t.Fatal("non-positive pids are never alive")
	}
	if !ProcessAlive(os.Getpid()) {
		t.Fatal("own pid should be alive")
	}
}
