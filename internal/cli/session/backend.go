package session

import (
	"context"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

// Well-known persistence keys.
const (
	KeyToken = "authToken"
	KeyUser  = "user"
)

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	Token string       `json:"authToken,omitempty" yaml:"authToken,omitempty"`
	User  *domain.User `json:"user,omitempty" yaml:"user,omitempty"`
}

// IsAuthenticated reports whether the snapshot carries a token.
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != ""
}

// clone returns a deep copy safe to hand out.
func (s Snapshot) clone() Snapshot {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// normalize drops a user persisted without a token.
func (s Snapshot) normalize() Snapshot {
	if s.Token == "" {
		return Snapshot{}
	}
	return s
}

// Backend persists a session snapshot.
//
// Save and Clear must be durable when they return. Load of an empty
// backend returns the zero Snapshot and no error.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Clear(ctx context.Context) error
	Close() error
}
