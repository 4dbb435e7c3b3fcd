package confloader

import (
	"errors"
	"strings"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider does not support ReadBytes")

// mapProvider is a koanf provider over a map. Keys may be dotted
// ("log.level") and are expanded into nested maps.
type mapProvider map[string]any

// ReadBytes is not supported; koanf falls back to Read.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the configuration map with dotted keys expanded.
func (m mapProvider) Read() (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		parts := strings.Split(k, ".")
		cur := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = v
	}
	return out, nil
}
