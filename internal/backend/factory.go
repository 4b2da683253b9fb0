package backend

import (
	"context"
	"fmt"

	"reikningar/internal/gateway/memory"
	"reikningar/internal/log"
	"reikningar/internal/storage"
)

const defaultSeedDir = "data"

// Factory is the default Opener.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

var _ Opener = (*Factory)(nil)

// Open validates cfg and opens the gateway it names.
func (f *Factory) Open(ctx context.Context, cfg Config) (*Opened, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite gateway: %w", err)
		}
		f.logger.InfoContext(ctx, "Opened SQLite gateway",
			"db_path", cfg.SQLitePath,
			"schema_version", repo.SchemaVersion(),
		)
		return &Opened{Gateway: repo, Close: repo.Close}, nil

	default:
		dir := cfg.SeedDir
		if dir == "" {
			dir = defaultSeedDir
		}
		store := memory.NewFromFiles(dir)
		bills, _ := store.ListBills(ctx)
		f.logger.InfoContext(ctx, "Opened memory gateway", "seed_dir", dir, "seeded_bills", len(bills))
		return &Opened{Gateway: store, Close: store.Close}, nil
	}
}
