package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/term"
)

const spinnerInterval = 100 * time.Millisecond

// Spinner displays an activity animation on a single line. It appears only
// after a delay, so fast requests print nothing. The hosted backend can
// take many seconds to wake up.
type Spinner struct {
	w       io.Writer
	message string
	frames  []string
	delay   time.Duration

	mu      sync.Mutex
	drawn   bool
	stopped bool
	done    chan struct{}
	exited  chan struct{}
}

// NewSpinner creates a new spinner.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// WithDelay sets how long the spinner waits before drawing.
func (s *Spinner) WithDelay(d time.Duration) *Spinner {
	s.delay = d
	return s
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.exited)
		if s.delay > 0 {
			select {
			case <-s.done:
				return
			case <-time.After(s.delay):
			}
		}

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.mu.Lock()
			if s.stopped {
				s.mu.Unlock()
				return
			}
			fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			s.drawn = true
			s.mu.Unlock()

			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// finish stops the animation and reports whether anything was drawn.
func (s *Spinner) finish() bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	s.stopped = true
	close(s.done)
	drawn := s.drawn
	s.mu.Unlock()
	return drawn
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	if s.finish() {
		fmt.Fprint(s.w, "\r\033[K")
	}
}

// Success stops the spinner with a success message.
func (s *Spinner) Success(message string) {
	s.finish()
	fmt.Fprintf(s.w, "\r\033[K✓ %s\n", message)
}

// Fail stops the spinner with a failure message.
func (s *Spinner) Fail(message string) {
	s.finish()
	fmt.Fprintf(s.w, "\r\033[K✗ %s\n", message)
}

// Wait blocks until the animation goroutine has exited. Start must have
// been called.
func (s *Spinner) Wait() {
	<-s.exited
}
