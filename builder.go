package goSession

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/crypto"
	"github.com/MrEthical07/goSession/payload"
	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Manager]. Construction is allocation-only: no network
// I/O happens until the first Manager method runs against the store.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	serializer payload.Serializer
	encryption crypto.Encryption
	hmac       crypto.Hmac
	auditSink  AuditSink

	built bool
}

// New returns a [Builder] seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis injects an existing shared Redis client instead of having the
// store dial Config.Store.Addr lazily.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSerializer substitutes the attribute serializer. Must happen before
// Build; sessions written with one serializer are not readable with another.
func (b *Builder) WithSerializer(ser payload.Serializer) *Builder {
	b.serializer = ser
	return b
}

// WithEncryption substitutes the encryption provider for both the token codec
// and the whole-payload encryption.
func (b *Builder) WithEncryption(enc crypto.Encryption) *Builder {
	b.encryption = enc
	return b
}

// WithHmac substitutes the token authentication provider.
func (b *Builder) WithHmac(mac crypto.Hmac) *Builder {
	b.hmac = mac
	return b
}

// WithAuditSink sets the sink receiving session lifecycle events. Only consulted
// when Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration exactly once and constructs the [Manager].
// Configuration errors are fatal here, never deferred to the first request.
//
// When no providers are supplied, the default pair (AES-256-GCM + HMAC-SHA256)
// is derived from Config.Crypto.MasterKey; with no master key either, an
// ephemeral random key is generated and sessions do not survive a restart.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	enc := b.encryption
	mac := b.hmac
	if enc == nil || mac == nil {
		masterKey := cfg.Crypto.MasterKey
		if len(masterKey) == 0 {
			masterKey = make([]byte, 32)
			if _, err := rand.Read(masterKey); err != nil {
				return nil, fmt.Errorf("generate ephemeral master key: %w", err)
			}
		}

		encKey, macKey, err := crypto.DeriveKeys(masterKey)
		if err != nil {
			return nil, err
		}

		if enc == nil {
			enc, err = crypto.NewAESGCM(encKey)
			if err != nil {
				return nil, err
			}
		}
		if mac == nil {
			mac = crypto.NewHMACSHA256(macKey)
		}
	}

	ser := b.serializer
	if ser == nil {
		ser = payload.JSONSerializer{}
	}

	var st *store.Store
	if b.redis != nil {
		st = store.NewWithClient(b.redis, cfg.Store.KeyPrefix)
	} else {
		st = store.New(store.Config{
			Addr:     cfg.Store.Addr,
			Password: cfg.Store.Password,
			DB:       cfg.Store.DB,
		}, cfg.Store.KeyPrefix)
	}

	b.built = true

	return &Manager{
		config:  cfg,
		codec:   token.NewCodec(enc, mac),
		format:  payload.NewFormat(ser),
		store:   st,
		enc:     enc,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		now:     time.Now,
	}, nil
}
