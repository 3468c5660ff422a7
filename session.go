package goSession

import "time"

// Session is a mutable attribute map scoped to a single HTTP request. The id and
// expiry live in dedicated fields, not in the attribute map, so user keys can
// never collide with internal state.
//
// A Session is not safe for concurrent use. It belongs to the request that loaded
// it and exists only until the response is written, unless persisted by
// [Manager.Save].
type Session struct {
	id        string
	createdAt time.Time
	expiresAt time.Time
	values    map[string]any
	changed   bool
}

func newSession() *Session {
	return &Session{values: make(map[string]any)}
}

// ID returns the session identifier, or "" for a session that has not been
// persisted yet. Ids are minted on first Save, not on Load.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was first persisted, or the zero time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// ExpiresAt returns the absolute expiry of the session, or the zero time when
// no duration is configured.
func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

// Get returns the attribute stored under name.
func (s *Session) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// GetString returns the attribute under name when it is a string, else "".
func (s *Session) GetString(name string) string {
	v, _ := s.values[name].(string)
	return v
}

// Set stores an attribute and marks the session changed.
func (s *Session) Set(name string, value any) {
	s.values[name] = value
	s.changed = true
}

// Delete removes an attribute. Deleting an absent key still marks the session
// changed so that Save persists the (possibly emptied) state.
func (s *Session) Delete(name string) {
	delete(s.values, name)
	s.changed = true
}

// Clear removes all attributes and marks the session changed.
func (s *Session) Clear() {
	s.values = make(map[string]any)
	s.changed = true
}

// Keys returns the attribute names in unspecified order.
func (s *Session) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of attributes.
func (s *Session) Len() int {
	return len(s.values)
}

// Changed reports whether the session was mutated since it was loaded. Save is
// a no-op on unchanged sessions: read-only requests pay no store write and
// rotate no cookie.
func (s *Session) Changed() bool {
	return s.changed
}

// Touch marks an unmodified session changed so that the next Save refreshes its
// sliding window even when no attribute was written.
func (s *Session) Touch() {
	s.changed = true
}
