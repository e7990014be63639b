// Package store persists workspaces and their normalized datasets. A
// workspace is the unit of isolation: one imported table, its audit trail,
// and the case classification that downstream analytics read.
package store

import (
	"context"
	"time"

	"github.com/sells-group/supplier-cli/internal/ingest"
	"github.com/sells-group/supplier-cli/internal/model"
)

// Workspace is one named dataset container.
type Workspace struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Case      model.CaseType `json:"case_type"`
	RowCount  int            `json:"row_count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store defines the persistence interface for workspaces and datasets.
// Lookups that can legitimately miss (GetWorkspaceByName, GetDataset,
// GetIngestion) return (nil, nil) on absence; GetWorkspace by ID errors.
type Store interface {
	// Workspaces
	CreateWorkspace(ctx context.Context, name string) (*Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*Workspace, error)
	GetWorkspaceByName(ctx context.Context, name string) (*Workspace, error)
	ListWorkspaces(ctx context.Context) ([]Workspace, error)
	DeleteWorkspace(ctx context.Context, id string) error

	// Datasets. SaveDataset replaces the workspace's dataset wholesale and
	// records the ingestion audit alongside it.
	SaveDataset(ctx context.Context, workspaceID string, ds *model.Dataset, audit *ingest.Result) error
	GetDataset(ctx context.Context, workspaceID string) (*model.Dataset, error)
	GetIngestion(ctx context.Context, workspaceID string) (*ingest.Result, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
