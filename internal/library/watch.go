package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ziadkadry99/agentrag/internal/loader"
	"github.com/ziadkadry99/agentrag/internal/walker"
)

// WatchEvent reports a document change handled by WatchDirectory.
type WatchEvent struct {
	RelPath string
	Removed bool
	Result  *AddResult
	Err     error
}

// WatchDirectory re-indexes documents under opts.Root as they change and
// removes them when they are deleted, until ctx is cancelled.
func (l *Library) WatchDirectory(ctx context.Context, agentID string, opts IngestOptions, onEvent func(WatchEvent)) error {
	if _, err := l.GetAgent(ctx, agentID); err != nil {
		return err
	}
	filter, err := walker.NewFilter(opts.walkOptions())
	if err != nil {
		return err
	}
	root := filter.Root

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			log.Printf("watch: %v", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}

			if event.Has(fsnotify.Create) {
				if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
					if err := addWatchDirs(watcher, event.Name); err != nil {
						log.Printf("watch: %v", err)
					}
					continue
				}
			}

			rel, err := filepath.Rel(root, event.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if !filter.Match(rel) {
				continue
			}

			ev := l.handleWatchEvent(ctx, agentID, opts, filter, event, rel)
			if ev != nil && onEvent != nil {
				onEvent(*ev)
			}
		}
	}
}

func (l *Library) handleWatchEvent(ctx context.Context, agentID string, opts IngestOptions, filter *walker.Filter, event fsnotify.Event, rel string) *WatchEvent {
	dir, name := walker.SplitRelPath(rel)
	docPath := opts.documentPath(dir)

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		err := l.DeleteDocument(ctx, agentID, docPath, name)
		if errors.Is(err, ErrDocumentNotFound) {
			return nil
		}
		return &WatchEvent{RelPath: rel, Removed: true, Err: err}

	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		if _, ok := filter.Accept(rel, event.Name); !ok {
			return nil
		}
		text, err := loader.LoadFile(event.Name)
		if err != nil {
			return &WatchEvent{RelPath: rel, Err: err}
		}
		res, err := l.AddDocument(ctx, agentID, docPath, name, text)
		if err == nil && res.Skipped {
			return nil
		}
		return &WatchEvent{RelPath: rel, Result: res, Err: err}
	}
	return nil
}

// addWatchDirs watches dir and every non-excluded directory below it.
func addWatchDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != dir && isExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func isExcludedDir(name string) bool {
	for _, excl := range walker.DefaultExcludes {
		if name == excl {
			return true
		}
	}
	return false
}
