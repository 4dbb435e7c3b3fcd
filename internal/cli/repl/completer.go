package repl

import (
	"sort"
	"strings"
)

// builtins are handled by the REPL itself.
var builtins = []string{"complete", "exit", "history", "quit"}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
	top      map[string]bool
}

// NewCompleter creates a completer over command paths such as
// "booking list". Built-ins are always included.
func NewCompleter(commands []string) *Completer {
	c := &Completer{top: make(map[string]bool)}
	seen := make(map[string]bool)
	for _, cmd := range append(append([]string{}, commands...), builtins...) {
		cmd = strings.Join(strings.Fields(cmd), " ")
		if cmd == "" || seen[cmd] {
			continue
		}
		seen[cmd] = true
		c.commands = append(c.commands, cmd)
		first, _, _ := strings.Cut(cmd, " ")
		c.top[first] = true
	}
	sort.Strings(c.commands)
	return c
}

// Complete returns the commands starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Known reports whether word is a top-level command.
func (c *Completer) Known(word string) bool {
	return c.top[word]
}

// Suggest returns top-level commands sharing the first two letters of word.
func (c *Completer) Suggest(word string) []string {
	if len(word) > 2 {
		word = word[:2]
	}
	var out []string
	for _, cmd := range c.commands {
		if !strings.Contains(cmd, " ") && strings.HasPrefix(cmd, word) {
			out = append(out, cmd)
		}
	}
	return out
}
