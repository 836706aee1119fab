package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation settings, in lumberjack units.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes where the bridge logs go and where per-session engine
// transcripts are kept. Rotation parameters follow lumberjack semantics and
// apply to both the log file and the transcripts.
type Config struct {
	Level         string // debug|info|warn|error (default info)
	Format        string // text|json (default text)
	Color         bool   // colorize text output
	File          string // optional log file; stderr when empty
	TranscriptDir string // optional; enables <dir>/<operation>.stdout.log and .stderr.log
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	Compress      bool
}

func (c Config) rotating(path string) *lj.Logger {
	return &lj.Logger{
		Filename:   path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

// ParseLevel maps a level name to slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a slog.Logger from c. When c.File is empty output goes to
// fallback (os.Stderr if nil). The returned closer releases the log file.
func New(c Config, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	var (
		w      io.Writer = fallback
		closer io.Closer = nopCloser{}
	)
	if w == nil {
		w = os.Stderr
	}
	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0o750); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f := c.rotating(c.File)
		w, closer = f, f
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(c.Level)}
	var h slog.Handler
	switch strings.ToLower(c.Format) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "", "text":
		if c.Color && c.File == "" {
			h = NewColorTextHandler(w, opts)
		} else {
			h = slog.NewTextHandler(w, opts)
		}
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", c.Format)
	}
	return slog.New(h), closer, nil
}

// Transcripts appends engine session transcripts to rotated files, one pair
// of files per operation. Each session is written as a single block so
// concurrent sessions never interleave inside a file.
type Transcripts struct {
	cfg     Config
	mu      sync.Mutex
	writers map[string]*lj.Logger
}

// NewTranscripts returns nil when c.TranscriptDir is empty; a nil
// *Transcripts discards everything.
func NewTranscripts(c Config) *Transcripts {
	if c.TranscriptDir == "" {
		return nil
	}
	return &Transcripts{cfg: c, writers: make(map[string]*lj.Logger)}
}

func (t *Transcripts) writer(path string) *lj.Logger {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.writers[path]
	if !ok {
		w = t.cfg.rotating(path)
		t.writers[path] = w
	}
	return w
}

// Paths returns the stdout and stderr transcript files for name.
func (t *Transcripts) Paths(name string) (string, string) {
	if t == nil {
		return "", ""
	}
	base := filepath.Join(t.cfg.TranscriptDir, sanitize(name))
	return base + ".stdout.log", base + ".stderr.log"
}

// Write records one session. header is prepended to both blocks; stdin lines
// are echoed into the stdout transcript prefixed with "> ".
func (t *Transcripts) Write(name, header string, stdin []string, stdout, stderr string) error {
	if t == nil {
		return nil
	}
	if err := os.MkdirAll(t.cfg.TranscriptDir, 0o750); err != nil {
		return err
	}
	outPath, errPath := t.Paths(name)

	var b strings.Builder
	b.WriteString("=== " + header + "\n")
	for _, l := range stdin {
		b.WriteString("> " + l + "\n")
	}
	b.WriteString(stdout)
	if stdout != "" && !strings.HasSuffix(stdout, "\n") {
		b.WriteString("\n")
	}
	if _, err := t.writer(outPath).Write([]byte(b.String())); err != nil {
		return err
	}
	if stderr == "" {
		return nil
	}
	block := "=== " + header + "\n" + stderr
	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	_, err := t.writer(errPath).Write([]byte(block))
	return err
}

// Close closes every open transcript file.
func (t *Transcripts) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var first error
	for p, w := range t.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
		delete(t.writers, p)
	}
	return first
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
	name = strings.Trim(name, ".")
	if name == "" {
		return "session"
	}
	return name
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
