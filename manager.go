package goSession

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MrEthical07/goSession/crypto"
	"github.com/MrEthical07/goSession/internal"
	"github.com/MrEthical07/goSession/payload"
	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

// Reserved attribute names carried inside the stored payload. They are stripped
// into Session fields on Load and re-injected on Save; user attributes never
// see them.
const (
	reservedIDKey      = "__gs.id"
	reservedCreatedKey = "__gs.created"
	reservedExpiresKey = "__gs.expires"
)

const minStoreTTL = time.Second

// Manager composes the token codec, the payload format, and the Redis store
// into the per-request Load/Save pair. Construct it through [Builder.Build];
// after that every method is safe for concurrent use.
//
// Two concurrent requests racing a Load and a Save (or two Saves) on the same
// session id are not serialized: last write wins at the store. That is an
// accepted weak-consistency trade-off for session data.
type Manager struct {
	config  Config
	codec   *token.Codec
	format  *payload.Format
	store   *store.Store
	enc     crypto.Encryption
	audit   *auditDispatcher
	metrics *Metrics

	now func() time.Time
}

// Load resolves the request's cookie to a [Session].
//
// An absent cookie, a malformed token, a failed authentication check, and a
// missing store entry all fail open to an empty session with no error: a forged
// or stale cookie must never crash a request, only lose the session. Store
// unavailability and corrupted payloads are hard failures.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	if m == nil {
		return nil, ErrManagerNotReady
	}

	start := time.Now()
	defer func() {
		m.metrics.Observe(MetricLoadLatency, time.Since(start))
	}()

	cookie, err := r.Cookie(m.config.Cookie.Name)
	if err != nil || cookie.Value == "" {
		m.metrics.Inc(MetricSessionEmpty)
		return newSession(), nil
	}

	sid, authentic := m.codec.Decode(cookie.Value)
	if !authentic {
		m.metrics.Inc(MetricTokenRejected)
		m.metrics.Inc(MetricSessionEmpty)
		m.emit(r.Context(), AuditEvent{
			EventType: AuditTokenRejected,
			SessionID: sid,
		})
		return newSession(), nil
	}

	ciphertext, found, err := m.store.Get(r.Context(), sid)
	if err != nil {
		m.metrics.Inc(MetricStoreError)
		m.emit(r.Context(), AuditEvent{
			EventType: AuditStoreError,
			SessionID: sid,
			Error:     err.Error(),
		})
		return nil, err
	}
	if !found {
		// Entry expired or was deleted. The recovered id is discarded; the
		// next Save mints a fresh one rather than resurrecting the old key.
		m.metrics.Inc(MetricStoreMiss)
		m.metrics.Inc(MetricSessionEmpty)
		m.emit(r.Context(), AuditEvent{
			EventType: AuditStoreMiss,
			SessionID: sid,
			Success:   true,
		})
		return newSession(), nil
	}

	sess, err := m.decodeSession(sid, ciphertext)
	if err != nil {
		m.metrics.Inc(MetricPayloadCorrupt)
		m.emit(r.Context(), AuditEvent{
			EventType: AuditPayloadCorrupt,
			SessionID: sid,
			Error:     err.Error(),
		})
		return nil, err
	}

	m.metrics.Inc(MetricSessionLoaded)
	m.emit(r.Context(), AuditEvent{
		EventType: AuditSessionLoaded,
		SessionID: sid,
		Success:   true,
	})

	return sess, nil
}

func (m *Manager) decodeSession(sid, ciphertext string) (*Session, error) {
	plaintext, err := m.enc.Decrypt(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadCorrupt, err)
	}

	attrs, err := m.format.Decode(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadCorrupt, err)
	}

	sess := newSession()
	sess.id = sid

	if v, ok := attrs[reservedIDKey]; ok {
		stored, _ := v.(string)
		if stored != sid {
			return nil, fmt.Errorf("%w: %v", ErrPayloadCorrupt, ErrSessionIDCollision)
		}
		delete(attrs, reservedIDKey)
	}
	if v, ok := attrs[reservedCreatedKey]; ok {
		if t, ok := timeFromAttr(v); ok {
			sess.createdAt = t
		}
		delete(attrs, reservedCreatedKey)
	}
	if v, ok := attrs[reservedExpiresKey]; ok {
		if t, ok := timeFromAttr(v); ok {
			sess.expiresAt = t
		}
		delete(attrs, reservedExpiresKey)
	}

	sess.values = attrs
	sess.changed = false
	return sess, nil
}

// Save persists a changed session and attaches the token cookie to w.
//
// Unchanged (or nil) sessions are a deliberate no-op: no store write, no
// cookie, no token rotation. A session with no id gets one minted here; with a
// configured duration the absolute expiry is computed once at creation, or
// refreshed forward from now on every save under sliding expiration.
func (m *Manager) Save(ctx context.Context, sess *Session, w http.ResponseWriter) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if sess == nil || !sess.changed {
		m.metrics.Inc(MetricNoopSave)
		return nil
	}

	start := time.Now()
	defer func() {
		m.metrics.Observe(MetricSaveLatency, time.Since(start))
	}()

	now := m.now()
	created := false
	if sess.id == "" {
		sid, err := internal.NewSessionID()
		if err != nil {
			return fmt.Errorf("mint session id: %w", err)
		}
		sess.id = sid.String()
		sess.createdAt = now
		created = true
	}

	duration := m.config.Session.Duration
	if duration > 0 && (m.config.Session.SlidingExpiration || sess.expiresAt.IsZero()) {
		sess.expiresAt = now.Add(duration)
	}

	ciphertext, err := m.encodeSession(sess)
	if err != nil {
		return err
	}

	if err := m.store.Set(ctx, sess.id, ciphertext); err != nil {
		m.metrics.Inc(MetricStoreError)
		m.emit(ctx, AuditEvent{
			EventType: AuditStoreError,
			SessionID: sess.id,
			Error:     err.Error(),
		})
		return err
	}

	if duration > 0 {
		ttl := duration
		if !m.config.Session.SlidingExpiration {
			// Fixed expiration: the TTL tracks the absolute window so repeated
			// saves cannot silently extend the entry's life.
			ttl = sess.expiresAt.Sub(now)
			if ttl < minStoreTTL {
				ttl = minStoreTTL
			}
		}
		if err := m.store.Expire(ctx, sess.id, ttl); err != nil {
			m.metrics.Inc(MetricStoreError)
			return err
		}
	}

	tok, err := m.codec.Encode(sess.id)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	cookie := m.cookie(tok)
	if !sess.expiresAt.IsZero() {
		cookie.Expires = sess.expiresAt
	}
	http.SetCookie(w, cookie)

	sess.changed = false

	m.metrics.Inc(MetricSessionSaved)
	if created {
		m.metrics.Inc(MetricSessionCreated)
		m.emit(ctx, AuditEvent{
			EventType: AuditSessionCreated,
			SessionID: sess.id,
			Success:   true,
		})
	}
	m.emit(ctx, AuditEvent{
		EventType: AuditSessionSaved,
		SessionID: sess.id,
		Success:   true,
	})

	return nil
}

func (m *Manager) encodeSession(sess *Session) (string, error) {
	attrs := make(map[string]any, len(sess.values)+3)
	for k, v := range sess.values {
		attrs[k] = v
	}

	attrs[reservedIDKey] = sess.id
	if !sess.createdAt.IsZero() {
		attrs[reservedCreatedKey] = sess.createdAt.Unix()
	}
	if !sess.expiresAt.IsZero() {
		attrs[reservedExpiresKey] = sess.expiresAt.Unix()
	}

	encoded, err := m.format.Encode(attrs)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	// Whole-payload encryption, independent of the per-attribute serialization.
	ciphertext, err := m.enc.Encrypt(encoded)
	if err != nil {
		return "", fmt.Errorf("encrypt payload: %w", err)
	}

	return ciphertext, nil
}

// Destroy deletes the session's store entry and overwrites the client cookie
// with an already-expired one. The session object is reset to a fresh, empty,
// unpersisted state.
func (m *Manager) Destroy(ctx context.Context, sess *Session, w http.ResponseWriter) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if sess == nil {
		return nil
	}

	if sess.id != "" {
		if err := m.store.Delete(ctx, sess.id); err != nil {
			m.metrics.Inc(MetricStoreError)
			return err
		}
		m.metrics.Inc(MetricSessionDestroyed)
		m.emit(ctx, AuditEvent{
			EventType: AuditSessionDestroyed,
			SessionID: sess.id,
			Success:   true,
		})
	}

	cookie := m.cookie("")
	cookie.Expires = time.Unix(1, 0)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)

	sess.id = ""
	sess.createdAt = time.Time{}
	sess.expiresAt = time.Time{}
	sess.values = make(map[string]any)
	sess.changed = false

	return nil
}

func (m *Manager) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     m.config.Cookie.Name,
		Value:    value,
		Domain:   m.config.Cookie.Domain,
		Path:     m.config.Cookie.Path,
		HttpOnly: true,
		Secure:   m.config.Cookie.Secure,
		SameSite: m.config.Cookie.SameSite,
	}
}

func (m *Manager) emit(ctx context.Context, event AuditEvent) {
	if m.audit == nil {
		return
	}
	event.Timestamp = m.now()
	m.audit.Emit(ctx, event)
}

// Ping reports store availability and round-trip latency.
func (m *Manager) Ping(ctx context.Context) (time.Duration, error) {
	if m == nil {
		return 0, ErrManagerNotReady
	}
	return m.store.Ping(ctx)
}

// Close drains the audit dispatcher and releases a lazily dialed store client.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	if m.audit != nil {
		m.audit.Close()
	}
	return m.store.Close()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

func timeFromAttr(v any) (time.Time, bool) {
	switch n := v.(type) {
	case int64:
		return time.Unix(n, 0), true
	case float64:
		// encoding/json round-trips integers as float64
		return time.Unix(int64(n), 0), true
	}
	return time.Time{}, false
}
