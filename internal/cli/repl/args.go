package repl

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote is returned for a line with an open quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// SplitArgs splits a line into words. Single and double quotes group
// words; a backslash escapes the next character outside single quotes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
