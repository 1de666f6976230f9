package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore      = (*MemorySessionStore)(nil)
	_ ports.AuthStrategy      = (*StubStrategy)(nil)
	_ ports.SecurityEventSink = (*MemoryEventSink)(nil)
)

// MemorySessionStore is an in-memory session store for unit tests.
// The fail hooks force the corresponding operation to error.
type MemorySessionStore struct {
	sessions map[string]domainauth.Session

	FailSave   error
	FailGet    error
	FailDelete error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if m.FailSave != nil {
		return m.FailSave
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if m.FailGet != nil {
		return domainauth.Session{}, m.FailGet
	}
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if m.FailDelete != nil {
		return m.FailDelete
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int { return len(m.sessions) }

// Has reports whether a session exists under the given ID.
func (m *MemorySessionStore) Has(id string) bool {
	_, ok := m.sessions[id]
	return ok
}

// StubStrategy is a canned credential tier. It returns Principal for the
// configured identifier/secret pair, Err when set, and (nil, nil) otherwise.
type StubStrategy struct {
	TierName   string
	Identifier string
	Secret     string
	Principal  *domainauth.Principal
	Err        error

	Calls int
}

func (s *StubStrategy) Name() string { return s.TierName }

func (s *StubStrategy) Authenticate(_ context.Context, creds ports.Credentials) (*domainauth.Principal, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	if creds.Identifier == s.Identifier && creds.Secret == s.Secret {
		return s.Principal, nil
	}
	return nil, nil
}

// MemoryEventSink records appended security events in order.
type MemoryEventSink struct {
	Events     []domainauth.SecurityEvent
	FailAppend error
}

func (m *MemoryEventSink) Append(_ context.Context, event domainauth.SecurityEvent) error {
	if m.FailAppend != nil {
		return m.FailAppend
	}
	m.Events = append(m.Events, event)
	return nil
}

// Descriptions returns the descriptions of all recorded events in order.
func (m *MemoryEventSink) Descriptions() []string {
	out := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.Description)
	}
	return out
}
