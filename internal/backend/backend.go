// Package backend opens the persistence gateway selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"reikningar/internal/config"
	"reikningar/internal/gateway"
)

// Kind names a gateway implementation.
type Kind string

const (
	SQLite Kind = "sqlite"
	Memory Kind = "memory"
)

// Kinds lists every supported gateway kind.
func Kinds() []Kind {
	return []Kind{SQLite, Memory}
}

func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Config selects and parameterises a gateway.
type Config struct {
	Kind Kind

	// SQLitePath is the database file for SQLite.
	SQLitePath string
	// SeedDir holds seed_bills.txt for Memory. Empty means "data".
	SeedDir string
}

// FromAppConfig picks the gateway settings out of the process config.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, errors.New("backend: nil config")
	}
	c := Config{
		Kind:       Kind(cfg.DataBackend),
		SQLitePath: cfg.SQLiteDBPath,
		SeedDir:    cfg.DataDirectory,
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("backend: unknown kind %q, want one of %v", c.Kind, Kinds())
	}
	if c.Kind == SQLite && c.SQLitePath == "" {
		return errors.New("backend: sqlite needs a database path")
	}
	return nil
}

// Opened is a ready gateway and the function that releases it.
type Opened struct {
	Gateway gateway.Gateway
	Close   func() error
}

// Opener opens gateways; tests substitute their own.
type Opener interface {
	Open(ctx context.Context, cfg Config) (*Opened, error)
}
