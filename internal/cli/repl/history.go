package repl

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultHistorySize bounds the number of kept entries.
const DefaultHistorySize = 1000

// secretFlags have their values replaced before a line is recorded.
var secretFlags = []string{"--password", "--confirm-password", "-p"}

// History manages command history for the REPL.
type History struct {
	mu      sync.Mutex
	entries []string
	maxSize int
	file    string
}

// NewHistory creates a history persisted at file. An empty file keeps the
// history in memory only.
func NewHistory(file string) *History {
	return &History{
		entries: make([]string, 0),
		maxSize: DefaultHistorySize,
		file:    file,
	}
}

// Add records a command. Secret flag values are masked and consecutive
// duplicates are dropped.
func (h *History) Add(cmd string) {
	cmd = scrub(cmd)
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
}

// Get returns the history entry at index (0 = most recent).
func (h *History) Get(index int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Last returns up to n entries, oldest first.
func (h *History) Last(n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n > len(h.entries) {
		n = len(h.entries)
	}
	return append([]string(nil), h.entries[len(h.entries)-n:]...)
}

// Load loads history from file. A missing file is not an error.
func (h *History) Load() error {
	if h.file == "" {
		return nil
	}
	file, err := os.Open(h.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.Add(line)
		}
	}
	return scanner.Err()
}

// Save writes history to file with owner-only permissions.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.file), 0700); err != nil {
		return err
	}

	h.mu.Lock()
	data := strings.Join(h.entries, "\n")
	h.mu.Unlock()
	if data != "" {
		data += "\n"
	}
	return os.WriteFile(h.file, []byte(data), 0600)
}

// scrub masks the values of secret flags in a command line.
func scrub(line string) string {
	fields := strings.Fields(line)
	changed := false
	for i := 0; i < len(fields); i++ {
		for _, flag := range secretFlags {
			switch {
			case fields[i] == flag && i+1 < len(fields):
				fields[i+1] = "***"
				changed = true
			case strings.HasPrefix(fields[i], flag+"="):
				fields[i] = flag + "=***"
				changed = true
			}
		}
	}
	if !changed {
		return line
	}
	return strings.Join(fields, " ")
}
