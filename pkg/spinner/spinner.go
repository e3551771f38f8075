// Package spinner shows an elapsed-time spinner while the shell loads files.
// Non-terminal writers get a single static line instead of animation.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"

	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"

	symbolSuccess = "✓"
	symbolFailure = "✗"
)

// Frames are the animation characters.
var Frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Config holds spinner options.
type Config struct {
	Message     string
	RefreshRate time.Duration
	ShowElapsed bool

	// Writer defaults to os.Stderr.
	Writer io.Writer

	// IsTTY overrides terminal detection on Writer.
	IsTTY *bool
}

// Spinner is an animated status line.
type Spinner struct {
	mu sync.Mutex

	cfg     Config
	isTTY   bool
	active  bool
	started time.Time
	frame   int
	width   int

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a spinner on os.Stderr.
func New(message string) *Spinner {
	return NewWithConfig(Config{Message: message, ShowElapsed: true})
}

// NewWithConfig creates a spinner, filling in defaults.
func NewWithConfig(cfg Config) *Spinner {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = 80 * time.Millisecond
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}

	isTTY := false
	if f, ok := cfg.Writer.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	if cfg.IsTTY != nil {
		isTTY = *cfg.IsTTY
	}
	return &Spinner{cfg: cfg, isTTY: isTTY}
}

// IsActive reports whether the spinner is running.
func (s *Spinner) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// IsTTY reports whether output is animated.
func (s *Spinner) IsTTY() bool {
	return s.isTTY
}

// Update changes the message shown on the next frame.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Message = message
}

// Start begins the animation. Starting a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}
	s.active = true
	s.started = time.Now()
	s.frame = 0

	if !s.isTTY {
		fmt.Fprintf(s.cfg.Writer, "%s...\n", s.cfg.Message)
		return
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	fmt.Fprint(s.cfg.Writer, hideCursor)
	go s.loop(s.stopCh, s.doneCh)
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.cfg.RefreshRate)
	defer ticker.Stop()

	s.render()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}

	line := Frames[s.frame%len(Frames)] + " " + s.cfg.Message
	if s.cfg.ShowElapsed {
		line += " " + FormatElapsed(time.Since(s.started))
	}
	s.frame++

	s.erase()
	fmt.Fprint(s.cfg.Writer, line)
	s.width = len(line)
}

// erase blanks the last rendered line. Caller holds s.mu.
func (s *Spinner) erase() {
	if s.width > 0 {
		fmt.Fprint(s.cfg.Writer, "\r"+strings.Repeat(" ", s.width)+"\r")
		s.width = 0
	}
}

// Stop ends the animation and clears the line. Stopping an idle spinner
// does nothing.
func (s *Spinner) Stop() {
	s.halt()
}

// halt stops the loop and returns the elapsed time, or false when the
// spinner was not running.
func (s *Spinner) halt() (time.Duration, bool) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return 0, false
	}
	s.active = false
	elapsed := time.Since(s.started)
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	if s.isTTY {
		close(stop)
		<-done
		s.mu.Lock()
		s.erase()
		fmt.Fprint(s.cfg.Writer, showCursor)
		s.mu.Unlock()
	}
	return elapsed, true
}

// Success stops the spinner and prints a check mark line. An empty message
// reuses the spinner's message.
func (s *Spinner) Success(message string) {
	s.finish(message, symbolSuccess, colorGreen)
}

// Fail stops the spinner and prints a cross line.
func (s *Spinner) Fail(message string) {
	s.finish(message, symbolFailure, colorRed)
}

func (s *Spinner) finish(message, symbol, color string) {
	elapsed, ran := s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	if message == "" {
		message = s.cfg.Message
	}
	if s.isTTY {
		symbol = color + symbol + colorReset
	}
	line := symbol + " " + message
	if ran && s.cfg.ShowElapsed {
		line += " " + FormatElapsed(elapsed)
	}
	fmt.Fprintln(s.cfg.Writer, line)
}

// FormatElapsed renders "(1.2s)" under a minute and "(1m 30s)" above.
func FormatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("(%.1fs)", d.Seconds())
	}
	return fmt.Sprintf("(%dm %ds)", int(d.Minutes()), int(d.Seconds())%60)
}

// Run shows a spinner while fn runs and reports its outcome with done
// (success) or the error text (failure).
func Run(cfg Config, done string, fn func() error) error {
	s := NewWithConfig(cfg)
	s.Start()
	if err := fn(); err != nil {
		s.Fail(err.Error())
		return err
	}
	s.Success(done)
	return nil
}
