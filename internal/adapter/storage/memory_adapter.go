package storage

import (
	"context"
	"sync"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

// MemoryAdapter stores the serialized cart in process memory.
type MemoryAdapter struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{}
}

func (m *MemoryAdapter) Load(ctx context.Context) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, nil
	}
	return domain.DecodeLineItems(m.data)
}

func (m *MemoryAdapter) Save(ctx context.Context, items []domain.LineItem) error {
	data, err := domain.EncodeLineItems(items)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Raw returns the stored bytes, nil when nothing was saved.
func (m *MemoryAdapter) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// SetRaw overwrites the stored bytes as-is.
func (m *MemoryAdapter) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
}
