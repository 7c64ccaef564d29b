package config

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config at path whenever it is written or created
// (which covers a rename into place), and reports each result to onChange. The returned
// stop function closes the watcher and waits for the loop to exit.
func Watch(ctx context.Context, path string, onChange func(Config, error)) (func() error, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	if onChange == nil {
		return nil, errors.New("onChange is nil")
	}
	target := filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors replace files by rename, so watch the directory.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				time.Sleep(50 * time.Millisecond)
				onChange(Load(target))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if err != nil {
					onChange(Config{}, err)
				}
			}
		}
	}()

	stop := func() error {
		err := watcher.Close()
		<-done
		return err
	}
	return stop, nil
}
