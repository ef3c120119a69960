package server

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// newWatcher watches the git directory and every directory below refs/.
// fsnotify is not recursive, so ref directories created later are added
// by watchLoop.
func (s *Server) newWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range watchDirs(s.info.GitDir) {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

func watchDirs(gitDir string) []string {
	dirs := []string{gitDir}
	_ = filepath.WalkDir(filepath.Join(gitDir, "refs"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}

func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	s.logger.Info("watching repository for changes", zap.String("git_dir", s.info.GitDir))

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && isRefDir(s.info.GitDir, event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					s.logger.Warn("watching new ref directory failed", zap.String("path", event.Name), zap.Error(err))
				}
			}
			if shouldIgnoreEvent(event) {
				continue
			}

			s.logger.Debug("change detected", zap.String("path", filepath.Base(event.Name)))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(s.debounce, s.requestRefresh)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func isRefDir(gitDir, path string) bool {
	refs := filepath.Join(gitDir, "refs") + string(filepath.Separator)
	if !strings.HasPrefix(path, refs) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// shouldIgnoreEvent drops chmod-only events and anything touching lock
// files, reflogs or config.
func shouldIgnoreEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	path := filepath.ToSlash(event.Name)

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return true
	}
	if strings.HasSuffix(base, ".lock") {
		return true
	}
	if strings.Contains(path, "/logs/") {
		return true
	}
	if base == "config" {
		return true
	}

	return false
}
