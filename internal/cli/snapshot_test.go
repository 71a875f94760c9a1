package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/export"
	"github.com/azurescope/explorer/pkg/inventory"
)

func storedSnapshot(exportDate, subName string) *inventory.Snapshot {
	return &inventory.Snapshot{
		Metadata: inventory.Metadata{
			ExportDate:       exportDate,
			SubscriptionID:   "sub-1",
			SubscriptionName: subName,
			TotalResources:   1,
		},
		Resources: []azure.Resource{{
			ID:   "/subscriptions/sub-1/resourceGroups/rg-app/providers/Microsoft.Compute/virtualMachines/vm-a",
			Name: "vm-a",
			Type: "Microsoft.Compute/virtualMachines",
		}},
	}
}

func TestLoadSnapshotDefaultsToNewestExport(t *testing.T) {
	dir := t.TempDir()

	store, err := export.NewStore(dir)
	require.NoError(t, err)

	_, err = store.Save(storedSnapshot("2026-08-01T10:00:00Z", "older"))
	require.NoError(t, err)
	_, err = store.Save(storedSnapshot("2026-08-20T10:00:00Z", "newer"))
	require.NoError(t, err)

	snap, err := loadSnapshot("", dir)
	require.NoError(t, err)
	assert.Equal(t, "newer", snap.Metadata.SubscriptionName)
}

func TestLoadSnapshotByExportID(t *testing.T) {
	dir := t.TempDir()

	store, err := export.NewStore(dir)
	require.NoError(t, err)

	entry, err := store.Save(storedSnapshot("2026-08-01T10:00:00Z", "dev"))
	require.NoError(t, err)

	snap, err := loadSnapshot(entry.ID, dir)
	require.NoError(t, err)
	assert.Equal(t, "dev", snap.Metadata.SubscriptionName)
}

func TestLoadSnapshotFromFilePath(t *testing.T) {
	data, err := json.Marshal(storedSnapshot("2026-08-01T10:00:00Z", "from-file"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "exported.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	// The store directory plays no part when ref is a file path.
	snap, err := loadSnapshot(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "from-file", snap.Metadata.SubscriptionName)
}

func TestLoadSnapshotEmptyStore(t *testing.T) {
	_, err := loadSnapshot("", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stored snapshots")
}
