package output

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
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

func TestSpinner_StartStop(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Loading providers")
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()
	s.Wait()

	out := buf.String()
	if !strings.Contains(out, "Loading providers") {
		t.Errorf("output %q should contain the message", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("output %q should end by clearing the line", out)
	}
}

func TestSpinner_DelaySuppressesFastWork(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Loading").WithDelay(time.Second)
	s.Start()
	s.Stop()
	s.Wait()

	if out := buf.String(); out != "" {
		t.Errorf("output = %q, want nothing for work faster than the delay", out)
	}
}

func TestSpinner_SuccessAndFail(t *testing.T) {
	tests := []struct {
		name string
		end  func(*Spinner)
		want string
	}{
		{"success", func(s *Spinner) { s.Success("Booked") }, "✓ Booked\n"},
		{"fail", func(s *Spinner) { s.Fail("Rejected") }, "✗ Rejected\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf syncBuffer
			s := NewSpinner(&buf, "Working")
			s.Start()
			tt.end(s)
			s.Wait()

			if out := buf.String(); !strings.HasSuffix(out, tt.want) {
				t.Errorf("output = %q, want suffix %q", out, tt.want)
			}
		})
	}
}

func TestSpinner_StopTwice(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Working")
	s.Start()
	s.Stop()
	s.Stop()
	s.Wait()
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("a regular file is not a terminal")
	}
}
