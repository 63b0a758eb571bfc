package acceptcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// StorageKey names the single record holding the whole acceptance sequence.
const StorageKey = "acceptedJobs"

// Storage persists one opaque document. Read returns nil, nil when nothing was saved yet.
type Storage interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
}

// FileStorage keeps the document in a JSON file on the device.
type FileStorage struct {
	path string
}

// NewFileStorage stores the document at path, creating parent directories on write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return raw, nil
}

func (f *FileStorage) Write(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".accepted-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

// RedisStorage keeps the document under one Redis string key.
type RedisStorage struct {
	client *redis.Client
	key    string
}

// NewRedisStorage stores the document under prefix + StorageKey.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, key: prefix + StorageKey}
}

func (r *RedisStorage) Read(ctx context.Context) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return raw, err
}

func (r *RedisStorage) Write(ctx context.Context, payload []byte) error {
	return r.client.Set(ctx, r.key, payload, 0).Err()
}
