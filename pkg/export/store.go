// Package export persists inventory snapshots as JSON files so scans can
// be shared, re-imported and diffed offline.
package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/azurescope/explorer/pkg/inventory"
	"github.com/azurescope/explorer/pkg/logger"
)

const (
	defaultNewFileMode   os.FileMode = os.FileMode(0o644)
	defaultNewFolderMode os.FileMode = os.FileMode(0o770)
	timeoutForLock                   = 30 * time.Second

	snapshotPrefix = "snapshot-"
	snapshotSuffix = ".json"
)

// Entry describes one stored snapshot file.
type Entry struct {
	ID               string `json:"id"`
	Path             string `json:"path"`
	SubscriptionID   string `json:"subscription_id"`
	SubscriptionName string `json:"subscription_name,omitempty"`
	ExportDate       string `json:"export_date"`
	ResourceCount    int    `json:"resource_count"`
}

// Store reads and writes snapshots in a single directory. Writes are
// serialized with a file lock so concurrent exports of the same snapshot
// id cannot interleave.
type Store struct {
	dir string
}

// DefaultDir returns the snapshot directory, honoring the same
// AZURESCOPE_CONFIG override the config file uses.
func DefaultDir() string {
	if configDir := os.Getenv("AZURESCOPE_CONFIG"); configDir != "" {
		return filepath.Join(configDir, "snapshots")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "resolving home directory, falling back to cwd")
		return "snapshots"
	}

	return filepath.Join(home, ".azurescope", "snapshots")
}

// NewStore opens a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, defaultNewFolderMode); err != nil {
		return nil, errors.Wrap(err, "creating snapshot directory")
	}

	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// lockSnapshotFile takes a sibling .lock file guarding the snapshot path
func lockSnapshotFile(lockCtx context.Context, path string) (bool, *flock.Flock, error) {
	var lockPath string

	fileExt := filepath.Ext(path)

	if len(fileExt) > 0 && len(fileExt) < len(path) {
		lockPath = strings.Replace(path, fileExt, ".lock", 1)
	} else {
		lockPath = path + ".lock"
	}

	fileLock := flock.New(lockPath)

	locked, err := fileLock.TryLockContext(lockCtx, time.Second)

	return locked, fileLock, err
}

func withLock(path string, fn func() error) error {
	lockCtx, cancel := context.WithTimeout(context.Background(), timeoutForLock)
	defer cancel()

	locked, fileLock, err := lockSnapshotFile(lockCtx, path)
	if err == nil && locked {
		defer func() {
			if err := fileLock.Unlock(); err != nil {
				logger.Log(logger.LevelError, nil, err, "unlocking snapshot file")
			}
		}()
	}

	if err != nil {
		return errors.Wrap(err, "locking snapshot file")
	}

	return fn()
}

// Save writes a snapshot to a new file named after a fresh export id.
func (s *Store) Save(snap *inventory.Snapshot) (Entry, error) {
	id := uuid.New().String()
	path := s.pathFor(id)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Entry{}, errors.Wrap(err, "encoding snapshot")
	}

	err = withLock(path, func() error {
		return os.WriteFile(path, data, defaultNewFileMode)
	})
	if err != nil {
		return Entry{}, errors.Wrap(err, "writing snapshot file")
	}

	return entryFor(id, path, snap.Metadata), nil
}

// Load reads one stored snapshot by export id.
func (s *Store) Load(id string) (*inventory.Snapshot, error) {
	path := s.pathFor(id)

	var data []byte
	err := withLock(path, func() error {
		var readErr error
		data, readErr = os.ReadFile(path)
		return readErr
	})
	if err != nil {
		return nil, errors.Wrap(err, "reading snapshot file")
	}

	return decodeSnapshot(data)
}

// Read decodes a snapshot file in place, without copying it into any
// store.
func Read(path string) (*inventory.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading snapshot file")
	}

	return decodeSnapshot(data)
}

// Import copies an external snapshot file into the store under a fresh
// export id. The file must decode to a snapshot that carries resources.
func (s *Store) Import(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, errors.Wrap(err, "reading import file")
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return Entry{}, err
	}

	return s.Save(snap)
}

// List returns the stored snapshots, newest export first.
func (s *Store) List() ([]Entry, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, snapshotPrefix+"*"+snapshotSuffix))
	if err != nil {
		return nil, errors.Wrap(err, "listing snapshot directory")
	}

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		id := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Log(logger.LevelWarn, map[string]string{"path": path}, err, "skipping unreadable snapshot")
			continue
		}

		var head struct {
			Metadata inventory.Metadata `json:"metadata"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			logger.Log(logger.LevelWarn, map[string]string{"path": path}, err, "skipping malformed snapshot")
			continue
		}

		entries = append(entries, entryFor(id, path, head.Metadata))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ExportDate > entries[j].ExportDate
	})

	return entries, nil
}

func (s *Store) pathFor(id string) string {
	return filepath.Join(s.dir, snapshotPrefix+id+snapshotSuffix)
}

func entryFor(id, path string, meta inventory.Metadata) Entry {
	return Entry{
		ID:               id,
		Path:             path,
		SubscriptionID:   meta.SubscriptionID,
		SubscriptionName: meta.SubscriptionName,
		ExportDate:       meta.ExportDate,
		ResourceCount:    meta.TotalResources,
	}
}

func decodeSnapshot(data []byte) (*inventory.Snapshot, error) {
	var snap inventory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}

	if snap.Resources == nil {
		return nil, errors.New("snapshot has no resources section")
	}

	return &snap, nil
}
