package spinner

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the animation goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func boolPtr(b bool) *bool { return &b }

func TestNewWithConfigDefaults(t *testing.T) {
	s := NewWithConfig(Config{Message: "x"})
	if s.cfg.RefreshRate != 80*time.Millisecond {
		t.Errorf("RefreshRate = %v", s.cfg.RefreshRate)
	}
	if s.cfg.Writer == nil {
		t.Error("Writer should default to os.Stderr")
	}
	if s.IsActive() {
		t.Error("new spinner should be idle")
	}
}

func TestNonTTY_StaticOutput(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithConfig(Config{Message: "Loading corpus", Writer: &buf, IsTTY: boolPtr(false)})

	s.Start()
	s.Start()
	if !s.IsActive() {
		t.Fatal("spinner should be active")
	}
	s.Success("Loaded 12 words")

	out := buf.String()
	if strings.Count(out, "Loading corpus...") != 1 {
		t.Errorf("expected one static start line, got %q", out)
	}
	if !strings.Contains(out, "✓ Loaded 12 words") {
		t.Errorf("missing success line: %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("non-TTY output must not contain ANSI codes: %q", out)
	}
}

func TestTTY_AnimatesAndClears(t *testing.T) {
	var buf syncBuffer
	s := NewWithConfig(Config{
		Message:     "working",
		RefreshRate: 5 * time.Millisecond,
		Writer:      &buf,
		IsTTY:       boolPtr(true),
	})

	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	if !strings.HasPrefix(out, hideCursor) || !strings.HasSuffix(out, showCursor) {
		t.Errorf("expected cursor hide/show around output: %q", out)
	}
	if !strings.Contains(out, "working") {
		t.Errorf("expected message in frames: %q", out)
	}
	if s.IsActive() {
		t.Error("spinner should be stopped")
	}
}

func TestFail_Colored(t *testing.T) {
	var buf syncBuffer
	s := NewWithConfig(Config{Message: "m", Writer: &buf, IsTTY: boolPtr(true), RefreshRate: time.Millisecond})

	s.Start()
	s.Fail("")

	if !strings.Contains(buf.String(), colorRed+symbolFailure+colorReset+" m") {
		t.Errorf("expected red failure line, got %q", buf.String())
	}
}

func TestFinishWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithConfig(Config{Message: "idle", Writer: &buf, IsTTY: boolPtr(false), ShowElapsed: true})

	s.Success("")
	if got := buf.String(); got != "✓ idle\n" {
		t.Errorf("got %q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1200 * time.Millisecond, "(1.2s)"},
		{0, "(0.0s)"},
		{90 * time.Second, "(1m 30s)"},
		{61*time.Minute + 5*time.Second, "(61m 5s)"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{Message: "step", Writer: &buf, IsTTY: boolPtr(false)}

	if err := Run(cfg, "done", func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "✓ done") {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	want := errors.New("disk on fire")
	if err := Run(cfg, "done", func() error { return want }); err != want {
		t.Fatalf("Run returned %v", err)
	}
	if !strings.Contains(buf.String(), "✗ disk on fire") {
		t.Errorf("got %q", buf.String())
	}
}
