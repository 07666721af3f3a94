package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	apperrors "watchless/internal/platform/errors"
	"watchless/internal/platform/logging"
)

const (
	storeDirMode  = 0o700
	storeFileMode = 0o600
	tempPattern   = ".kv-*.tmp"
)

// FileStore keeps one file per key under root. Writes go through a temp
// file and rename so readers in other processes never see partial values.
type FileStore struct {
	root string
	mu   sync.RWMutex
}

var (
	_ Store   = (*FileStore)(nil)
	_ Watcher = (*FileStore)(nil)
)

func NewFileStore(root string) *FileStore {
	return &FileStore{root: filepath.Clean(root)}
}

func (s *FileStore) Root() string { return s.root }

func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkKey(key); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, err := os.ReadFile(filepath.Join(s.root, key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.ErrKeyNotFound
		}
		return "", fmt.Errorf("read key %q: %w", key, err)
	}
	return string(payload), nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.root, storeDirMode); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.root, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write key %q: %w", key, err)
	}
	if err := tmp.Chmod(storeFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close key %q: %w", key, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(s.root, key)); err != nil {
		return fmt.Errorf("commit key %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(filepath.Join(s.root, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

// Watch reports keys created, rewritten or removed under root until ctx is
// cancelled. Temp files are ignored.
func (s *FileStore) Watch(ctx context.Context, onChange func(key string)) error {
	if err := os.MkdirAll(s.root, storeDirMode); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.root); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch store dir: %w", err)
	}

	logger := logging.For("kv", "file")
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				key := filepath.Base(event.Name)
				if strings.HasPrefix(key, ".") {
					continue
				}
				onChange(key)
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("store watcher error", "operation", "kv_watch", "error", werr.Error())
			}
		}
	}()
	return nil
}
