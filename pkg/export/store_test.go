package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/inventory"
)

func testSnapshot(exportDate string) *inventory.Snapshot {
	return &inventory.Snapshot{
		Metadata: inventory.Metadata{
			ExportDate:          exportDate,
			SubscriptionID:      "sub-1",
			SubscriptionName:    "dev",
			TotalResources:      1,
			TotalResourceGroups: 1,
		},
		ResourceGroups: []azure.ResourceGroup{{Name: "rg-app", Location: "eastus"}},
		Resources: []azure.Resource{{
			ID:            "/subscriptions/sub-1/resourceGroups/rg-app/providers/Microsoft.Compute/virtualMachines/vm-web",
			Name:          "vm-web",
			Type:          "Microsoft.Compute/virtualMachines",
			Location:      "eastus",
			ResourceGroup: "rg-app",
		}},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	entry, err := store.Save(testSnapshot("2026-01-02T03:04:05Z"))
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "sub-1", entry.SubscriptionID)
	assert.Equal(t, 1, entry.ResourceCount)
	assert.FileExists(t, entry.Path)

	loaded, err := store.Load(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "vm-web", loaded.Resources[0].Name)
	assert.Equal(t, "2026-01-02T03:04:05Z", loaded.Metadata.ExportDate)
}

func TestLoadUnknownIDFails(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("no-such-id")
	assert.Error(t, err)
}

func TestListReturnsNewestFirst(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	older, err := store.Save(testSnapshot("2026-01-01T00:00:00Z"))
	require.NoError(t, err)
	newer, err := store.Save(testSnapshot("2026-02-01T00:00:00Z"))
	require.NoError(t, err)

	entries, err := store.List()
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, older.ID, entries[1].ID)
}

func TestListSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.Save(testSnapshot("2026-01-01T00:00:00Z"))
	require.NoError(t, err)

	broken := filepath.Join(dir, "snapshot-broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))

	entries, err := store.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestImportCopiesExternalSnapshot(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	source, err := NewStore(t.TempDir())
	require.NoError(t, err)
	original, err := source.Save(testSnapshot("2026-01-01T00:00:00Z"))
	require.NoError(t, err)

	entry, err := store.Import(original.Path)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, entry.ID)

	loaded, err := store.Load(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", loaded.Metadata.SubscriptionID)
}

func TestImportRejectsFileWithoutResources(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"metadata":{"export_date":"x"}}`), 0o644))

	_, err = store.Import(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resources")
}

func TestDefaultDirHonorsConfigOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AZURESCOPE_CONFIG", dir)

	assert.Equal(t, filepath.Join(dir, "snapshots"), DefaultDir())
}
