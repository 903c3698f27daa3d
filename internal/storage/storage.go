// Package storage provides the durable key/value stores that keep a
// session alive between runs of the client.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage is a small string key/value store.
// Deleting a key that does not exist is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Namespace separates sessions of different API hosts.
	Namespace string
	// Path is the directory for the file backend or the database file
	// for the bolt backend. Empty means the default under the user config dir.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the configured backend and a cleanup func that releases it.
func Open(opts Options) (Storage, func() error, error) {
	noop := func() error { return nil }

	namespace := sanitizeNamespace(opts.Namespace)

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		store, err := NewFile(opts.Path, namespace)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case BackendBolt:
		store, err := OpenBolt(opts.Path, namespace)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case BackendRedis:
		store, err := NewRedis(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, namespace)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case BackendMemory:
		return NewMemory(), noop, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
}

// sanitizeNamespace keeps namespaces safe to use as file names and keys.
func sanitizeNamespace(namespace string) string {
	namespace = strings.TrimSpace(strings.ToLower(namespace))
	if len(namespace) == 0 {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, namespace)
}
