package cache

import (
	"context"
	"fmt"
	"time"
)

// Namespaces group keys so one write can drop every cached read that
// depends on it.
const (
	NamespaceReservations = "reservations"
	NamespaceClients      = "clients"
	NamespaceSettings     = "settings"
)

// Cache stores JSON-serialisable values by namespace and key.
//
// Get decodes a hit into dst and reports whether the key was present and
// fresh. Invalidate drops every key of a namespace.
type Cache interface {
	Get(ctx context.Context, namespace, key string, dst any) (bool, error)
	Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, namespace string) error
}

// TTLs holds the freshness window per namespace.
type TTLs struct {
	Reservations time.Duration
	Clients      time.Duration
	Settings     time.Duration
}

func DefaultTTLs() TTLs {
	return TTLs{
		Reservations: 30 * time.Second,
		Clients:      60 * time.Second,
		Settings:     5 * time.Minute,
	}
}

// Nop never hits. It is used when caching is switched off.
type Nop struct{}

func (Nop) Get(context.Context, string, string, any) (bool, error)        { return false, nil }
func (Nop) Set(context.Context, string, string, any, time.Duration) error { return nil }
func (Nop) Invalidate(context.Context, string) error                      { return nil }

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"

	// KeyPrefix namespaces redis keys; every process sharing a redis
	// instance must use the same one for invalidations to reach it.
	KeyPrefix = "barber-calendar"
)

// Options selects a backend for Open.
type Options struct {
	Driver   string
	Addr     string
	Password string
	DB       int
}

// Open builds the cache named by o.Driver. An empty driver means memory.
func Open(ctx context.Context, o Options) (Cache, error) {
	switch o.Driver {
	case DriverRedis:
		client, err := NewRedisClient(ctx, o.Addr, o.Password, o.DB)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, KeyPrefix), nil
	case DriverNone:
		return Nop{}, nil
	case DriverMemory, "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", o.Driver)
	}
}
