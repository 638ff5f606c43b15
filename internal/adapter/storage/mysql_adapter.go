package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv_store (
		k VARCHAR(191) NOT NULL PRIMARY KEY,
		v LONGTEXT NOT NULL,
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
	)`,
	`CREATE TABLE IF NOT EXISTS cart_events (
		id CHAR(36) NOT NULL PRIMARY KEY,
		event_type VARCHAR(32) NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		message VARCHAR(512) NOT NULL,
		occurred_at DATETIME(6) NOT NULL,
		INDEX idx_cart_events_occurred_at (occurred_at)
	)`,
}

// MySQLAdapter stores the serialized cart as a key-value row and appends
// cart events to a history table.
type MySQLAdapter struct {
	db  *sql.DB
	key string
}

func NewMySQLAdapter(db *sql.DB, key string) *MySQLAdapter {
	if key == "" {
		key = DefaultCartKey
	}
	return &MySQLAdapter{db: db, key: key}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) Load(ctx context.Context) ([]domain.LineItem, error) {
	var data []byte
	err := m.db.QueryRowContext(ctx, `SELECT v FROM kv_store WHERE k = ?`, m.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	return domain.DecodeLineItems(data)
}

func (m *MySQLAdapter) Save(ctx context.Context, items []domain.LineItem) error {
	data, err := domain.EncodeLineItems(items)
	if err != nil {
		return err
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO kv_store (k, v) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE v = VALUES(v)`,
		m.key, string(data),
	)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) SaveEvent(ctx context.Context, event domain.CartEvent) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO cart_events (id, event_type, product_id, quantity, message, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Type), event.ProductID, event.Quantity, event.Message, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}
