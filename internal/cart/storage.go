package cart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StorageKey is the fixed key the client cart is persisted under
const StorageKey = "woocommerce-cart"

// Storage persists one serialized cart. Load returns nil data and a nil error
// when nothing has been persisted yet.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

type fileStorage struct {
	path string
}

// NewFileStorage stores the cart as <dir>/<key>.json
func NewFileStorage(dir, key string) Storage {
	return &fileStorage{
		path: filepath.Join(dir, key+".json"),
	}
}

func (f *fileStorage) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cart file %s: %w", f.path, err)
	}
	return data, nil
}

func (f *fileStorage) Save(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cart directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace cart file: %w", err)
	}
	return nil
}

// MemoryBackend keeps carts in process memory, keyed by session
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string][]byte),
	}
}

// For returns the storage for one key
func (b *MemoryBackend) For(key string) Storage {
	return &memoryStorage{backend: b, key: key}
}

// NewMemoryStorage returns a standalone in-memory storage
func NewMemoryStorage() Storage {
	return NewMemoryBackend().For(StorageKey)
}

type memoryStorage struct {
	backend *MemoryBackend
	key     string
}

func (m *memoryStorage) Load(_ context.Context) ([]byte, error) {
	m.backend.mu.RLock()
	defer m.backend.mu.RUnlock()

	data, ok := m.backend.data[m.key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *memoryStorage) Save(_ context.Context, data []byte) error {
	m.backend.mu.Lock()
	defer m.backend.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.backend.data[m.key] = stored
	return nil
}
