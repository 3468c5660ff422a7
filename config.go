package goSession

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cookie  CookieConfig
	Store   StoreConfig
	Session SessionConfig
	Crypto  CryptoConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig controls the session cookie attached to outbound responses.
// HttpOnly is always set on the cookie and is deliberately not configurable.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by goSession APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goSession APIs.
//
// Duration is the session lifetime; zero disables expiration entirely (no store
// TTL, session cookie with no Expires). SlidingExpiration extends the lifetime
// forward from the current time on every persisted save.
type SessionConfig struct {
	Duration          time.Duration
	SlidingExpiration bool
}

/*
====================================
CRYPTO CONFIG
====================================
*/

// CryptoConfig defines a public type used by goSession APIs.
//
// MasterKey feeds HKDF to derive independent encryption and authentication keys.
// When empty and no explicit providers are supplied to the Builder, an ephemeral
// random key is generated at Build time; sessions then do not survive a process
// restart.
type CryptoConfig struct {
	MasterKey []byte
}

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration: a "gsid" session cookie on
// path "/", a local Redis on the standard port, a 30-day sliding session window,
// and audit/metrics disabled.
func DefaultConfig() Config {
	return Config{
		Cookie: CookieConfig{
			Name:     "gsid",
			Path:     "/",
			Secure:   false,
			SameSite: http.SameSiteLaxMode,
		},
		Store: StoreConfig{
			Addr:      "localhost:6379",
			DB:        0,
			KeyPrefix: "gs:",
		},
		Session: SessionConfig{
			Duration:          30 * 24 * time.Hour,
			SlidingExpiration: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Crypto.MasterKey = cloneBytes(cfg.Crypto.MasterKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when a field would produce an unusable Manager.
// An invalid configuration never reaches the orchestrator: Build calls Validate
// exactly once and refuses to construct on failure.
func (c *Config) Validate() error {
	name := strings.TrimSpace(c.Cookie.Name)
	if name == "" {
		return errors.New("cookie name must not be empty")
	}
	if strings.ContainsAny(name, " ;,=") {
		return errors.New("cookie name contains forbidden characters")
	}

	if c.Cookie.Path != "" && !strings.HasPrefix(c.Cookie.Path, "/") {
		return errors.New("cookie path must begin with /")
	}

	if strings.TrimSpace(c.Store.Addr) == "" {
		return errors.New("store address must not be empty")
	}
	if c.Store.DB < 0 {
		return errors.New("store db must not be negative")
	}
	if c.Store.KeyPrefix == "" {
		return errors.New("store key prefix must not be empty")
	}

	if c.Session.Duration < 0 {
		return errors.New("session duration must not be negative")
	}

	if n := len(c.Crypto.MasterKey); n != 0 && n < 16 {
		return errors.New("crypto master key must be at least 16 bytes")
	}

	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}

	return nil
}
