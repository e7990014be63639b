package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "supplier.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		var poolCfg *store.PoolConfig
		if cfg.Store.Pool != nil {
			poolCfg = &store.PoolConfig{
				MaxConns: cfg.Store.Pool.MaxConns,
				MinConns: cfg.Store.Pool.MinConns,
			}
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, poolCfg)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore opens the configured store and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// loadWorkspaceDataset resolves a workspace by name and loads its dataset.
func loadWorkspaceDataset(ctx context.Context, st store.Store, name string) (*store.Workspace, *model.Dataset, error) {
	ws, err := st.GetWorkspaceByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if ws == nil {
		return nil, nil, eris.Errorf("workspace not found: %s", name)
	}
	ds, err := st.GetDataset(ctx, ws.ID)
	if err != nil {
		return nil, nil, err
	}
	if ds == nil {
		return nil, nil, eris.Errorf("workspace %s has no dataset; run ingest first", name)
	}
	return ws, ds, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
