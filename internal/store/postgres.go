package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/supplier-cli/internal/ingest"
	"github.com/sells-group/supplier-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS workspaces (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL UNIQUE,
	case_type  TEXT NOT NULL DEFAULT 'unknown',
	row_count  INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS datasets (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	records      JSONB NOT NULL,
	audit        JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_workspaces_name ON workspaces(name);
CREATE INDEX IF NOT EXISTS idx_datasets_workspace_id ON datasets(workspace_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateWorkspace(ctx context.Context, name string) (*Workspace, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO workspaces (id, name, case_type, row_count, created_at, updated_at) VALUES ($1, $2, $3, 0, $4, $5)`,
		id, name, string(model.CaseUnknown), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert workspace %q", name)
	}

	return &Workspace{
		ID:        id,
		Name:      name,
		Case:      model.CaseUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	ws, err := s.scanWorkspaceRow(s.pool.QueryRow(ctx,
		`SELECT id, name, case_type, row_count, created_at, updated_at FROM workspaces WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("workspace not found: %s", id)
		}
		return nil, err
	}
	return ws, nil
}

func (s *PostgresStore) GetWorkspaceByName(ctx context.Context, name string) (*Workspace, error) {
	ws, err := s.scanWorkspaceRow(s.pool.QueryRow(ctx,
		`SELECT id, name, case_type, row_count, created_at, updated_at FROM workspaces WHERE name = $1`,
		name,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ws, nil
}

func (s *PostgresStore) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, case_type, row_count, created_at, updated_at FROM workspaces ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list workspaces")
	}
	defer rows.Close()

	var workspaces []Workspace
	for rows.Next() {
		var ws Workspace
		var caseType string
		if err := rows.Scan(&ws.ID, &ws.Name, &caseType, &ws.RowCount, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan workspace")
		}
		ws.Case = model.CaseType(caseType)
		workspaces = append(workspaces, ws)
	}
	return workspaces, eris.Wrap(rows.Err(), "postgres: list workspaces iterate")
}

func (s *PostgresStore) DeleteWorkspace(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete workspace %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("workspace not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SaveDataset(ctx context.Context, workspaceID string, ds *model.Dataset, audit *ingest.Result) error {
	recordsJSON, err := json.Marshal(ds)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal dataset")
	}
	var auditJSON []byte
	if audit != nil {
		if auditJSON, err = json.Marshal(audit); err != nil {
			return eris.Wrap(err, "postgres: marshal audit")
		}
	}

	// Replace semantics: a workspace holds exactly one dataset.
	if _, err := s.pool.Exec(ctx, `DELETE FROM datasets WHERE workspace_id = $1`, workspaceID); err != nil {
		return eris.Wrapf(err, "postgres: clear datasets for workspace %s", workspaceID)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO datasets (id, workspace_id, records, audit, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), workspaceID, recordsJSON, auditJSON, time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert dataset for workspace %s", workspaceID)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE workspaces SET case_type = $1, row_count = $2, updated_at = $3 WHERE id = $4`,
		string(ds.Case), len(ds.Records), time.Now().UTC(), workspaceID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update workspace %s", workspaceID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("workspace not found: %s", workspaceID)
	}
	return nil
}

func (s *PostgresStore) GetDataset(ctx context.Context, workspaceID string) (*model.Dataset, error) {
	var recordsJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT records FROM datasets WHERE workspace_id = $1 ORDER BY created_at DESC LIMIT 1`,
		workspaceID,
	).Scan(&recordsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get dataset for workspace %s", workspaceID)
	}

	var ds model.Dataset
	if err := json.Unmarshal(recordsJSON, &ds); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal dataset")
	}
	return &ds, nil
}

func (s *PostgresStore) GetIngestion(ctx context.Context, workspaceID string) (*ingest.Result, error) {
	var auditJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT audit FROM datasets WHERE workspace_id = $1 ORDER BY created_at DESC LIMIT 1`,
		workspaceID,
	).Scan(&auditJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get ingestion for workspace %s", workspaceID)
	}
	if auditJSON == nil {
		return nil, nil
	}

	var result ingest.Result
	if err := json.Unmarshal(auditJSON, &result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal ingestion audit")
	}
	return &result, nil
}

func (s *PostgresStore) scanWorkspaceRow(row pgx.Row) (*Workspace, error) {
	var ws Workspace
	var caseType string
	err := row.Scan(&ws.ID, &ws.Name, &caseType, &ws.RowCount, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan workspace")
	}
	ws.Case = model.CaseType(caseType)
	return &ws, nil
}
