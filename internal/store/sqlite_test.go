package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/supplier-cli/internal/ingest"
	"github.com/sells-group/supplier-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testDataset() *model.Dataset {
	return &model.Dataset{
		Case: model.CaseMixed,
		Records: []model.Record{
			{
				Supplier:      "Acme",
				DatePromised:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				DateDelivered: time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
				Delay:         2,
				Defects:       0.05,
			},
			{Supplier: "Bolt", Delay: 0, Defects: 0.01},
		},
	}
}

func TestSQLiteWorkspaceLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	ws, err := s.CreateWorkspace(ctx, "q2-review")
	require.NoError(t, err)
	assert.NotEmpty(t, ws.ID)
	assert.Equal(t, model.CaseUnknown, ws.Case)

	got, err := s.GetWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "q2-review", got.Name)

	byName, err := s.GetWorkspaceByName(ctx, "q2-review")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, ws.ID, byName.ID)

	missing, err := s.GetWorkspaceByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing, "absence is not an error")

	list, err := s.ListWorkspaces(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteWorkspace(ctx, ws.ID))
	list, err = s.ListWorkspaces(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLiteGetWorkspaceMissingErrors(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, err := s.GetWorkspace(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteDeleteMissingWorkspace(t *testing.T) {
	s := newTestSQLiteStore(t)
	err := s.DeleteWorkspace(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteSaveDatasetRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	ws, err := s.CreateWorkspace(ctx, "default")
	require.NoError(t, err)

	audit := &ingest.Result{
		Success:      true,
		DetectedCase: model.CaseMixed,
		Warnings: []model.ValidationWarning{
			{Severity: model.SeverityWarning, Message: "2 row(s) with empty supplier name dropped"},
		},
	}
	require.NoError(t, s.SaveDataset(ctx, ws.ID, testDataset(), audit))

	ds, err := s.GetDataset(ctx, ws.ID)
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, model.CaseMixed, ds.Case)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "Acme", ds.Records[0].Supplier)
	assert.Equal(t, 2, ds.Records[0].Delay)
	assert.True(t, ds.Records[1].DatePromised.IsZero())

	got, err := s.GetIngestion(ctx, ws.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Success)
	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0].Message, "empty supplier")

	// Saving updates the workspace metadata.
	updated, err := s.GetWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CaseMixed, updated.Case)
	assert.Equal(t, 2, updated.RowCount)
}

func TestSQLiteSaveDatasetReplacesPrevious(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	ws, err := s.CreateWorkspace(ctx, "default")
	require.NoError(t, err)

	require.NoError(t, s.SaveDataset(ctx, ws.ID, testDataset(), nil))

	smaller := &model.Dataset{
		Case:    model.CaseDelayOnly,
		Records: []model.Record{{Supplier: "Cogs", Delay: 7}},
	}
	require.NoError(t, s.SaveDataset(ctx, ws.ID, smaller, nil))

	ds, err := s.GetDataset(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "Cogs", ds.Records[0].Supplier)

	updated, err := s.GetWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RowCount)
}

func TestSQLiteSaveDatasetUnknownWorkspace(t *testing.T) {
	s := newTestSQLiteStore(t)
	err := s.SaveDataset(context.Background(), "no-such-id", testDataset(), nil)
	assert.Error(t, err)
}

func TestSQLiteGetDatasetEmptyWorkspace(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	ws, err := s.CreateWorkspace(ctx, "empty")
	require.NoError(t, err)

	ds, err := s.GetDataset(ctx, ws.ID)
	require.NoError(t, err)
	assert.Nil(t, ds)

	audit, err := s.GetIngestion(ctx, ws.ID)
	require.NoError(t, err)
	assert.Nil(t, audit)
}

func TestSQLiteNilAuditStaysNil(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	ws, err := s.CreateWorkspace(ctx, "default")
	require.NoError(t, err)
	require.NoError(t, s.SaveDataset(ctx, ws.ID, testDataset(), nil))

	audit, err := s.GetIngestion(ctx, ws.ID)
	require.NoError(t, err)
	assert.Nil(t, audit)
}

func TestSQLiteDuplicateWorkspaceName(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.CreateWorkspace(ctx, "default")
	require.NoError(t, err)
	_, err = s.CreateWorkspace(ctx, "default")
	assert.Error(t, err)
}
