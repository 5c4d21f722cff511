package history_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/history"
	"github.com/abdidvp/automigrate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	rec := domain.RunRecord{
		RunID:     "run-1",
		Catalog:   domain.CatalogFull,
		Timestamp: "2026-02-25T10:00:00Z",
		Status:    domain.StatusPartialManualActionRequired,
		Commit:    "abc1234",
		Outcomes: []domain.RecordedResult{
			{FixID: "sbScripts", Kind: domain.OutcomeSucceeded},
			{FixID: "storyshotsMigration", Kind: domain.OutcomeSucceededManually},
		},
	}

	require.NoError(t, h.Save(dir, rec))

	records, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.Equal(t, domain.StatusPartialManualActionRequired, records[0].Status)
	assert.Len(t, records[0].Outcomes, 2)
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, domain.RunRecord{RunID: "a", Status: domain.StatusFailed}))
	require.NoError(t, h.Save(dir, domain.RunRecord{RunID: "b", Status: domain.StatusClean}))
	require.NoError(t, h.Save(dir, domain.RunRecord{RunID: "c", Status: domain.StatusClean}))

	records, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].RunID)
	assert.Equal(t, "c", records[2].RunID)
}

func TestHistory_LoadEmpty(t *testing.T) {
	h := history.New()

	records, err := h.Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistory_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, ".automigrate", "history", "runs.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(fp), 0755))
	require.NoError(t, os.WriteFile(fp, []byte("{not json"), 0644))

	_, err := history.New().Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "runs.json")
}
