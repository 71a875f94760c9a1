package cli

import (
	"fmt"
	"os"

	"github.com/azurescope/explorer/pkg/export"
	"github.com/azurescope/explorer/pkg/inventory"
)

// loadSnapshot resolves the snapshot a command works on: an explicit
// file path, a stored export id, or the newest stored export when ref
// is empty.
func loadSnapshot(ref, dir string) (*inventory.Snapshot, error) {
	if dir == "" {
		dir = export.DefaultDir()
	}

	if ref != "" {
		// A path to an existing file wins over store lookups.
		if _, err := os.Stat(ref); err == nil {
			return export.Read(ref)
		}

		store, err := export.NewStore(dir)
		if err != nil {
			return nil, err
		}

		return store.Load(ref)
	}

	store, err := export.NewStore(dir)
	if err != nil {
		return nil, err
	}

	entries, err := store.List()
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no stored snapshots in %s; run 'azurescope discover --export' first", dir)
	}

	return store.Load(entries[0].ID)
}
