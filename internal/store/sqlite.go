package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/supplier-cli/internal/ingest"
	"github.com/sells-group/supplier-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS workspaces (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	case_type  TEXT NOT NULL DEFAULT 'unknown',
	row_count  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS datasets (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	records      TEXT NOT NULL,
	audit        TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_workspaces_name ON workspaces(name);
CREATE INDEX IF NOT EXISTS idx_datasets_workspace_id ON datasets(workspace_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateWorkspace(ctx context.Context, name string) (*Workspace, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, case_type, row_count, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		id, name, string(model.CaseUnknown), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert workspace %q", name)
	}

	return &Workspace{
		ID:        id,
		Name:      name,
		Case:      model.CaseUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, case_type, row_count, created_at, updated_at FROM workspaces WHERE id = ?`,
		id,
	)
	ws, err := scanWorkspace(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("workspace not found: %s", id)
	}
	return ws, err
}

func (s *SQLiteStore) GetWorkspaceByName(ctx context.Context, name string) (*Workspace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, case_type, row_count, created_at, updated_at FROM workspaces WHERE name = ?`,
		name,
	)
	ws, err := scanWorkspace(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ws, err
}

func (s *SQLiteStore) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, case_type, row_count, created_at, updated_at FROM workspaces ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list workspaces")
	}
	defer rows.Close()

	var workspaces []Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, *ws)
	}
	return workspaces, eris.Wrap(rows.Err(), "sqlite: list workspaces iterate")
}

func (s *SQLiteStore) DeleteWorkspace(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete workspace %s", id)
	}
	return checkRowsAffected(res, "workspace", id)
}

func (s *SQLiteStore) SaveDataset(ctx context.Context, workspaceID string, ds *model.Dataset, audit *ingest.Result) error {
	recordsJSON, err := json.Marshal(ds)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal dataset")
	}
	var auditJSON []byte
	if audit != nil {
		if auditJSON, err = json.Marshal(audit); err != nil {
			return eris.Wrap(err, "sqlite: marshal audit")
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save dataset")
	}
	defer tx.Rollback()

	// Replace semantics: a workspace holds exactly one dataset.
	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE workspace_id = ?`, workspaceID); err != nil {
		return eris.Wrapf(err, "sqlite: clear datasets for workspace %s", workspaceID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (id, workspace_id, records, audit, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), workspaceID, string(recordsJSON), nullableString(auditJSON), time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert dataset for workspace %s", workspaceID)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE workspaces SET case_type = ?, row_count = ?, updated_at = ? WHERE id = ?`,
		string(ds.Case), len(ds.Records), time.Now().UTC(), workspaceID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update workspace %s", workspaceID)
	}
	if err := checkRowsAffected(res, "workspace", workspaceID); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save dataset")
}

func (s *SQLiteStore) GetDataset(ctx context.Context, workspaceID string) (*model.Dataset, error) {
	var recordsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT records FROM datasets WHERE workspace_id = ? ORDER BY created_at DESC LIMIT 1`,
		workspaceID,
	).Scan(&recordsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get dataset for workspace %s", workspaceID)
	}

	var ds model.Dataset
	if err := json.Unmarshal([]byte(recordsJSON), &ds); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal dataset")
	}
	return &ds, nil
}

func (s *SQLiteStore) GetIngestion(ctx context.Context, workspaceID string) (*ingest.Result, error) {
	var auditJSON sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT audit FROM datasets WHERE workspace_id = ? ORDER BY created_at DESC LIMIT 1`,
		workspaceID,
	).Scan(&auditJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get ingestion for workspace %s", workspaceID)
	}
	if !auditJSON.Valid {
		return nil, nil
	}

	var result ingest.Result
	if err := json.Unmarshal([]byte(auditJSON.String), &result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal ingestion audit")
	}
	return &result, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func nullableString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanWorkspace(row scannable) (*Workspace, error) {
	var ws Workspace
	var caseType string
	err := row.Scan(&ws.ID, &ws.Name, &caseType, &ws.RowCount, &ws.CreatedAt, &ws.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan workspace")
	}
	ws.Case = model.CaseType(caseType)
	return &ws, nil
}
