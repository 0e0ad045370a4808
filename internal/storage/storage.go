package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage provides the local ledger of already-dispatched seeds.

// Store tracks seeds that have been dispatched downstream.
type Store interface {
	Close() error
	SeenSeed(seed string) (bool, error)
	MarkSeed(seed string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SeedTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSeedTTL         = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SeedTTL <= 0 {
		opts.SeedTTL = defaultSeedTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                  { return nil }
func (noopStore) SeenSeed(string) (bool, error) { return false, nil }
func (noopStore) MarkSeed(string) error         { return nil }
