package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testRun(id string, created time.Time, qi float64) *domain.ComparisonRun {
	return &domain.ComparisonRun{
		ID:        id,
		SourceURI: "manual_en.md",
		TargetURI: "manual_de.md",
		CreatedAt: created,
		Settings:  domain.DefaultCompareSettings(),
		Correspondences: []domain.Correspondence{
			{
				SourceRef:  domain.StringPtr("s1"),
				TargetRef:  domain.StringPtr("t1"),
				Status:     domain.StatusAligned,
				Similarity: 0.91,
				Scores:     map[string]float64{"bleu": 0.8},
				Severity:   domain.SeverityInfo,
			},
			{
				SourceRef: domain.StringPtr("s2"),
				Status:    domain.StatusMissing,
				Scores:    map[string]float64{"bleu": 0},
				Severity:  domain.SeverityCritical,
				Issues:    []string{"risk keyword: warning"},
			},
		},
		Summary: domain.DocumentSummary{
			SourceBlocks: 2,
			TargetBlocks: 1,
			Counts:       map[domain.AlignmentStatus]int{domain.StatusAligned: 1, domain.StatusMissing: 1},
			Overall:      map[string]float64{"bleu": 0.4},
			Coverage:     0.5,
			QualityIndex: qi,
		},
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "runs.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "nested", "path", "to", "db")

	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	var tableExists int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='runs'",
	).Scan(&tableExists))
	assert.Equal(t, 1, tableExists)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.RunStore().Save(context.Background(), testRun("r1", time.Now().UTC(), 0.5)))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var applied int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 1, applied)

	_, err = second.RunStore().Get(context.Background(), "r1")
	assert.NoError(t, err)
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Contains(t, store.Path(), filepath.Join(".parity", "data", "runs.db"))
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

// ==================== RunStore Tests ====================

func TestRunStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testRun("r1", created, 0.42)))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, 0.42, got.Summary.QualityIndex)
	require.Len(t, got.Correspondences, 2)
	assert.Equal(t, domain.StatusMissing, got.Correspondences[1].Status)
	assert.Nil(t, got.Correspondences[1].TargetRef)
	assert.Equal(t, []string{"risk keyword: warning"}, got.Correspondences[1].Issues)
	assert.Equal(t, 1, got.Summary.Counts[domain.StatusMissing])
	assert.Equal(t, 8, got.Settings.Window)
}

func TestRunStore_SaveReplaces(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testRun("r1", created, 0.1)))
	require.NoError(t, store.Save(ctx, testRun("r1", created, 0.9)))

	infos, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, 0.9, infos[0].QualityIndex)
}

func TestRunStore_SaveInvalid(t *testing.T) {
	store := setupTestStore(t).RunStore()

	err := store.Save(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	err = store.Save(context.Background(), &domain.ComparisonRun{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRunStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t).RunStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_List(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testRun("old", base, 0.1)))
	require.NoError(t, store.Save(ctx, testRun("new", base.Add(2*time.Hour), 0.3)))
	require.NoError(t, store.Save(ctx, testRun("mid-b", base.Add(time.Hour), 0.2)))
	require.NoError(t, store.Save(ctx, testRun("mid-a", base.Add(time.Hour), 0.2)))

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all", 0, []string{"new", "mid-a", "mid-b", "old"}},
		{"negative is all", -5, []string{"new", "mid-a", "mid-b", "old"}},
		{"limited", 2, []string{"new", "mid-a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infos, err := store.List(ctx, tt.limit)
			require.NoError(t, err)

			ids := make([]string, len(infos))
			for i, info := range infos {
				ids[i] = info.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	infos, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.True(t, base.Add(2*time.Hour).Equal(infos[0].CreatedAt))
	assert.Equal(t, "manual_en.md", infos[0].SourceURI)
	assert.Equal(t, 0.5, infos[0].Coverage)
}

func TestRunStore_ListEmpty(t *testing.T) {
	store := setupTestStore(t).RunStore()

	infos, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestRunStore_Delete(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testRun("r1", time.Now().UTC(), 0.5)))

	require.NoError(t, store.Delete(ctx, "r1"))

	_, err := store.Get(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "r1"), domain.ErrNotFound)
}

func TestRunStore_CancelledContext(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Save(ctx, testRun("r1", time.Now().UTC(), 0.5))
	assert.Error(t, err)
}
