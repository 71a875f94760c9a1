package azure

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/azurescope/explorer/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

const watchInterval = 10 * time.Second

// WatchProfile watches the CLI profile file and re-syncs the store when
// az rewrites it (login, logout, account set). az replaces the file on
// write, which drops the watch, so a ticker re-adds it when missing.
func WatchProfile(store SubscriptionStore, path string) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "creating profile watcher")
		return
	}

	defer watcher.Close()

	addProfileToWatcher(watcher, path)

	for {
		select {
		case <-ticker.C:
			if len(watcher.WatchList()) == 0 {
				logger.Log(logger.LevelInfo, nil, nil, "watcher: re-adding profile file")
				addProfileToWatcher(watcher, path)

				if err := syncSubscriptions(store, path); err != nil {
					logger.Log(logger.LevelError, nil, err, "watcher: error syncing subscriptions")
				}
			}

		case event := <-watcher.Events:
			triggers := []fsnotify.Op{fsnotify.Create, fsnotify.Write, fsnotify.Remove, fsnotify.Rename}
			for _, trigger := range triggers {
				if event.Op.Has(trigger) {
					logger.Log(logger.LevelInfo, map[string]string{"event": event.Name},
						nil, "watcher: azure profile changed, reloading subscriptions")

					if err := syncSubscriptions(store, path); err != nil {
						logger.Log(logger.LevelError, nil, err, "watcher: error syncing subscriptions")
					}

					break
				}
			}

		case err := <-watcher.Errors:
			logger.Log(logger.LevelError, nil, err, "watcher: error watching azure profile")
		}
	}
}

func addProfileToWatcher(watcher *fsnotify.Watcher, path string) {
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			logger.Log(logger.LevelError, map[string]string{"path": path}, err, "getting absolute path")
			return
		}

		path = absPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Log(logger.LevelError, map[string]string{"path": path}, err, "profile path does not exist")
		return
	}

	if slices.Contains(watcher.WatchList(), path) {
		return
	}

	if err := watcher.Add(path); err != nil {
		logger.Log(logger.LevelError, map[string]string{"path": path}, err, "adding profile to watcher")
	}
}
