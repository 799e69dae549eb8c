// Package file implements store.KV on top of a directory with one JSON file
// per key.
package file

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/invoicepro/internal/store"
)

var _ store.KV = (*KV)(nil)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// rename is replaced in tests to fail a commit midway.
var rename = os.Rename

// KV stores each key as <dir>/<key>.json. Writes go through a temporary
// file and a rename so readers never see partial documents.
type KV struct {
	dir string
	mu  sync.Mutex
}

// New returns a KV rooted at dir, creating the directory if needed.
func New(dir string) (*KV, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "create data dir %q", dir)
	}
	return &KV{dir: dir}, nil
}

func (k *KV) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", errors.Errorf("invalid key %q", key)
	}
	return filepath.Join(k.dir, key+".json"), nil
}

func (k *KV) Get(_ context.Context, key string) ([]byte, error) {
	p, err := k.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, store.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", key)
	}
	return data, nil
}

func (k *KV) Put(ctx context.Context, key string, value []byte) error {
	return k.PutMany(ctx, map[string][]byte{key: value})
}

// PutMany stages every entry in a temporary file before renaming any of
// them into place. A failure while staging leaves existing files untouched;
// a failed rename restores the files already committed by this call.
func (k *KV) PutMany(_ context.Context, entries map[string][]byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	type staged struct {
		key, tmp, dst string
		prev          []byte
		existed       bool
	}
	var files []staged
	cleanup := func() {
		for _, f := range files {
			_ = os.Remove(f.tmp)
		}
	}

	for key, value := range entries {
		dst, err := k.path(key)
		if err != nil {
			cleanup()
			return err
		}
		prev, err := os.ReadFile(dst)
		existed := err == nil
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			cleanup()
			return errors.Wrapf(err, "read %s", key)
		}
		tmp, err := writeTemp(k.dir, key, value)
		if err != nil {
			cleanup()
			return errors.Wrapf(err, "stage %s", key)
		}
		files = append(files, staged{key: key, tmp: tmp, dst: dst, prev: prev, existed: existed})
	}

	for i, f := range files {
		if err := rename(f.tmp, f.dst); err != nil {
			cleanup()
			for _, done := range files[:i] {
				k.restore(done.key, done.dst, done.prev, done.existed)
			}
			return errors.Wrapf(err, "commit %s (%d of %d)", filepath.Base(f.dst), i+1, len(files))
		}
	}
	return nil
}

// restore puts back the content dst had before a failed PutMany.
func (k *KV) restore(key, dst string, prev []byte, existed bool) {
	if !existed {
		_ = os.Remove(dst)
		return
	}
	tmp, err := writeTemp(k.dir, key, prev)
	if err != nil {
		return
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
	}
}

func writeTemp(dir, key string, value []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+key+".*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(value); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (k *KV) Delete(_ context.Context, key string) error {
	p, err := k.path(key)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}

// Ping checks that the data directory is still accessible.
func (k *KV) Ping(context.Context) error {
	info, err := os.Stat(k.dir)
	if err != nil {
		return errors.Wrap(err, "stat data dir")
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", k.dir)
	}
	return nil
}
