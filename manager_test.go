package goSession

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrEthical07/goSession/store"
)

var testMasterKey = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T, mutate func(*Config)) (*Manager, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := DefaultConfig()
	cfg.Store.Addr = mr.Addr()
	cfg.Crypto.MasterKey = testMasterKey
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	m, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	return m, mr
}

func saveSession(t *testing.T, m *Manager, sess *Session) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	if err := m.Save(context.Background(), sess, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == m.config.Cookie.Name {
			return c
		}
	}
	t.Fatal("save did not set a session cookie")
	return nil
}

func requestWithCookie(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestLoadWithoutCookie(t *testing.T) {
	m, _ := newTestManager(t, nil)

	sess, err := m.Load(requestWithCookie(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.ID() != "" || sess.Len() != 0 || sess.Changed() {
		t.Fatalf("expected a fresh empty session, got id=%q len=%d changed=%v",
			sess.ID(), sess.Len(), sess.Changed())
	}
}

func TestLoadMalformedCookie(t *testing.T) {
	m, _ := newTestManager(t, nil)

	// Garbage far too short to carry a tag must fail open, not error.
	sess, err := m.Load(requestWithCookie(&http.Cookie{Name: "gsid", Value: "AAAA"}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.ID() != "" || sess.Len() != 0 {
		t.Fatal("malformed cookie must yield an empty session")
	}
	if m.metrics.Value(MetricTokenRejected) != 1 {
		t.Fatalf("token_rejected = %d, want 1", m.metrics.Value(MetricTokenRejected))
	}
}

func TestSaveUnchangedIsNoop(t *testing.T) {
	m, mr := newTestManager(t, nil)

	sess, err := m.Load(requestWithCookie(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	rec := httptest.NewRecorder()
	if err := m.Save(context.Background(), sess, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no-op save must not set a cookie")
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("no-op save wrote to the store: %v", mr.Keys())
	}
	if m.metrics.Value(MetricNoopSave) != 1 {
		t.Fatalf("noop_save = %d, want 1", m.metrics.Value(MetricNoopSave))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, mr := newTestManager(t, nil)

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	sess.Set("theme", "dark")

	cookie := saveSession(t, m, sess)

	if sess.ID() == "" {
		t.Fatal("save did not mint an id")
	}
	if sess.Changed() {
		t.Fatal("save did not clear the changed flag")
	}
	if !mr.Exists("gs:" + sess.ID()) {
		t.Fatalf("store entry missing for id %q", sess.ID())
	}
	if cookie.Value == sess.ID() {
		t.Fatal("cookie carries the raw session id")
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}

	loaded, err := m.Load(requestWithCookie(cookie))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID() != sess.ID() {
		t.Fatalf("loaded id %q != saved id %q", loaded.ID(), sess.ID())
	}
	if loaded.GetString("user") != "alice" || loaded.GetString("theme") != "dark" {
		t.Fatalf("attributes lost in round trip: %v", loaded.Keys())
	}
	if loaded.Changed() {
		t.Fatal("freshly loaded session reports changed")
	}
}

func TestSaveKeepsIDAcrossSaves(t *testing.T) {
	m, _ := newTestManager(t, nil)

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	saveSession(t, m, sess)
	first := sess.ID()

	sess.Set("theme", "dark")
	saveSession(t, m, sess)

	if sess.ID() != first {
		t.Fatalf("id rotated on second save: %q -> %q", first, sess.ID())
	}
}

func TestLoadTamperedCookie(t *testing.T) {
	m, _ := newTestManager(t, nil)

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	cookie := saveSession(t, m, sess)

	raw := []byte(cookie.Value)
	raw[len(raw)/2] ^= 0x01
	tampered := &http.Cookie{Name: cookie.Name, Value: string(raw)}

	loaded, err := m.Load(requestWithCookie(tampered))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID() != "" || loaded.Len() != 0 {
		t.Fatal("tampered cookie must yield an empty session")
	}
}

func TestStoreEntryExpires(t *testing.T) {
	m, mr := newTestManager(t, func(c *Config) {
		c.Session.Duration = time.Minute
	})

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	cookie := saveSession(t, m, sess)

	mr.FastForward(2 * time.Minute)

	loaded, err := m.Load(requestWithCookie(cookie))
	if err != nil {
		t.Fatalf("load after expiry: %v", err)
	}
	if loaded.ID() != "" || loaded.Len() != 0 {
		t.Fatal("expired entry must yield an empty session")
	}
	if m.metrics.Value(MetricStoreMiss) != 1 {
		t.Fatalf("store_miss = %d, want 1", m.metrics.Value(MetricStoreMiss))
	}
}

func TestSlidingExpirationExtendsWindow(t *testing.T) {
	m, mr := newTestManager(t, func(c *Config) {
		c.Session.Duration = time.Hour
		c.Session.SlidingExpiration = true
	})

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return t0 }

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	cookie := saveSession(t, m, sess)

	if !sess.ExpiresAt().Equal(t0.Add(time.Hour)) {
		t.Fatalf("expiry after first save = %v, want %v", sess.ExpiresAt(), t0.Add(time.Hour))
	}

	// Half the window later: a touched save slides the expiry forward and
	// refreshes the store TTL to the full duration.
	m.now = func() time.Time { return t0.Add(30 * time.Minute) }

	loaded, err := m.Load(requestWithCookie(cookie))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Touch()
	saveSession(t, m, loaded)

	want := t0.Add(30 * time.Minute).Add(time.Hour)
	if !loaded.ExpiresAt().Equal(want) {
		t.Fatalf("expiry after sliding save = %v, want %v", loaded.ExpiresAt(), want)
	}
	if ttl := mr.TTL("gs:" + loaded.ID()); ttl != time.Hour {
		t.Fatalf("store ttl = %v, want %v", ttl, time.Hour)
	}
}

func TestFixedExpirationIsNotExtended(t *testing.T) {
	m, mr := newTestManager(t, func(c *Config) {
		c.Session.Duration = time.Hour
		c.Session.SlidingExpiration = false
	})

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return t0 }

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	cookie := saveSession(t, m, sess)

	m.now = func() time.Time { return t0.Add(30 * time.Minute) }

	loaded, err := m.Load(requestWithCookie(cookie))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Set("theme", "dark")
	saveSession(t, m, loaded)

	// The absolute window was set at creation; the save must not move it, and
	// the TTL must track the remaining time only.
	if !loaded.ExpiresAt().Equal(t0.Add(time.Hour)) {
		t.Fatalf("fixed expiry moved to %v", loaded.ExpiresAt())
	}
	if ttl := mr.TTL("gs:" + loaded.ID()); ttl != 30*time.Minute {
		t.Fatalf("store ttl = %v, want %v", ttl, 30*time.Minute)
	}
}

func TestCorruptPayloadIsHardError(t *testing.T) {
	m, mr := newTestManager(t, nil)

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	cookie := saveSession(t, m, sess)

	mr.Set("gs:"+sess.ID(), "not-a-ciphertext")

	if _, err := m.Load(requestWithCookie(cookie)); !errors.Is(err, ErrPayloadCorrupt) {
		t.Fatalf("load: err = %v, want ErrPayloadCorrupt", err)
	}
	if m.metrics.Value(MetricPayloadCorrupt) != 1 {
		t.Fatalf("payload_corrupt = %d, want 1", m.metrics.Value(MetricPayloadCorrupt))
	}
}

func TestStoredIDMismatchIsCorruption(t *testing.T) {
	m, mr := newTestManager(t, nil)

	// A payload claiming a different id than the key it sits under means two
	// sessions collided on one store entry.
	encoded, err := m.format.Encode(map[string]any{reservedIDKey: "someone-else"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	ciphertext, err := m.enc.Encrypt(encoded)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	const sid = "victim-session"
	mr.Set("gs:"+sid, ciphertext)

	tok, err := m.codec.Encode(sid)
	if err != nil {
		t.Fatalf("encode token: %v", err)
	}

	_, err = m.Load(requestWithCookie(&http.Cookie{Name: "gsid", Value: tok}))
	if !errors.Is(err, ErrPayloadCorrupt) {
		t.Fatalf("err = %v, want ErrPayloadCorrupt", err)
	}
	if !errors.Is(err, ErrSessionIDCollision) {
		t.Fatalf("err = %v, want ErrSessionIDCollision", err)
	}
}

func TestLoadStoreUnavailable(t *testing.T) {
	m, mr := newTestManager(t, nil)

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	cookie := saveSession(t, m, sess)

	mr.Close()

	if _, err := m.Load(requestWithCookie(cookie)); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("load: err = %v, want store.ErrUnavailable", err)
	}
	if m.metrics.Value(MetricStoreError) != 1 {
		t.Fatalf("store_error = %d, want 1", m.metrics.Value(MetricStoreError))
	}
}

func TestSaveStoreUnavailable(t *testing.T) {
	m, mr := newTestManager(t, nil)
	mr.Close()

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")

	rec := httptest.NewRecorder()
	err := m.Save(context.Background(), sess, rec)
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("save: err = %v, want store.ErrUnavailable", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("failed save must not set a cookie")
	}
}

func TestDestroy(t *testing.T) {
	m, mr := newTestManager(t, nil)

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	saveSession(t, m, sess)
	sid := sess.ID()

	rec := httptest.NewRecorder()
	if err := m.Destroy(context.Background(), sess, rec); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	if mr.Exists("gs:" + sid) {
		t.Fatal("store entry survived destroy")
	}
	if sess.ID() != "" || sess.Len() != 0 || sess.Changed() {
		t.Fatal("destroy did not reset the session")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("destroy set %d cookies", len(cookies))
	}
	if cookies[0].Value != "" || cookies[0].MaxAge != -1 {
		t.Fatalf("destroy cookie = %q maxage=%d, want empty expired", cookies[0].Value, cookies[0].MaxAge)
	}
}

func TestDestroyUnpersistedSession(t *testing.T) {
	m, _ := newTestManager(t, nil)

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")

	rec := httptest.NewRecorder()
	if err := m.Destroy(context.Background(), sess, rec); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if sess.Len() != 0 || sess.Changed() {
		t.Fatal("destroy did not reset the unpersisted session")
	}
}

func TestZeroDurationOmitsExpiry(t *testing.T) {
	m, mr := newTestManager(t, func(c *Config) {
		c.Session.Duration = 0
	})

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	cookie := saveSession(t, m, sess)

	if !sess.ExpiresAt().IsZero() {
		t.Fatalf("zero duration set an expiry: %v", sess.ExpiresAt())
	}
	if !cookie.Expires.IsZero() {
		t.Fatalf("zero duration set a cookie Expires: %v", cookie.Expires)
	}
	if ttl := mr.TTL("gs:" + sess.ID()); ttl != 0 {
		t.Fatalf("zero duration set a store ttl: %v", ttl)
	}
}

func TestMetricsAcrossLifecycle(t *testing.T) {
	m, _ := newTestManager(t, func(c *Config) {
		c.Metrics.EnableLatencyHistograms = true
	})

	sess, _ := m.Load(requestWithCookie(nil)) // empty
	sess.Set("user", "alice")
	cookie := saveSession(t, m, sess) // created + saved
	if _, err := m.Load(requestWithCookie(cookie)); err != nil {
		t.Fatalf("load: %v", err)
	}

	snap := m.MetricsSnapshot()
	for id, want := range map[MetricID]uint64{
		MetricSessionEmpty:   1,
		MetricSessionCreated: 1,
		MetricSessionSaved:   1,
		MetricSessionLoaded:  1,
	} {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("counter %d = %d, want %d", id, got, want)
		}
	}

	var loads uint64
	for _, n := range snap.Histograms[MetricLoadLatency] {
		loads += n
	}
	if loads != 2 {
		t.Fatalf("load latency observations = %d, want 2", loads)
	}
}

func TestAuditEvents(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := DefaultConfig()
	cfg.Store.Addr = mr.Addr()
	cfg.Crypto.MasterKey = testMasterKey
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 32

	sink := NewChannelSink(32)
	m, err := New().WithConfig(cfg).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	cookie := saveSession(t, m, sess)
	if _, err := m.Load(requestWithCookie(cookie)); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Close drains the dispatcher so every emitted event reaches the sink.
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := make(map[string]int)
	for {
		select {
		case ev := <-sink.Events():
			got[ev.EventType]++
			if ev.Timestamp.IsZero() {
				t.Fatalf("event %q has no timestamp", ev.EventType)
			}
		default:
			for _, want := range []string{AuditSessionCreated, AuditSessionSaved, AuditSessionLoaded} {
				if got[want] != 1 {
					t.Fatalf("event %q seen %d times, want 1 (all: %v)", want, got[want], got)
				}
			}
			return
		}
	}
}

func TestBuilderDoubleBuild(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := DefaultConfig()
	cfg.Store.Addr = mr.Addr()

	b := New().WithConfig(cfg)
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("second build must fail")
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cookie.Name = ""

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected a validation error at build time")
	}
}

func TestEphemeralKeyRoundTrip(t *testing.T) {
	// No master key configured: an ephemeral one is generated at Build time, and
	// round trips still work within the process lifetime.
	m, _ := newTestManager(t, func(c *Config) {
		c.Crypto.MasterKey = nil
	})

	sess, _ := m.Load(requestWithCookie(nil))
	sess.Set("user", "alice")
	cookie := saveSession(t, m, sess)

	loaded, err := m.Load(requestWithCookie(cookie))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.GetString("user") != "alice" {
		t.Fatal("ephemeral-key round trip lost the session")
	}
}

func TestNilManagerFailsClosed(t *testing.T) {
	var m *Manager

	if _, err := m.Load(requestWithCookie(nil)); !errors.Is(err, ErrManagerNotReady) {
		t.Fatalf("load: err = %v, want ErrManagerNotReady", err)
	}
	if err := m.Save(context.Background(), newSession(), httptest.NewRecorder()); !errors.Is(err, ErrManagerNotReady) {
		t.Fatalf("save: err = %v, want ErrManagerNotReady", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPing(t *testing.T) {
	m, _ := newTestManager(t, nil)

	if _, err := m.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
