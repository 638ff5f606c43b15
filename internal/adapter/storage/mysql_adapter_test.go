package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

const testCartKey = "test-cart"

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func setupMySQLAdapter(t *testing.T) (*MySQLAdapter, *sql.DB) {
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db, testCartKey)
	if err := adapter.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema setup failed: %v", err)
	}

	db.Exec(`DELETE FROM kv_store WHERE k = ?`, testCartKey)
	return adapter, db
}

func TestMySQLAdapter_LoadAbsentKey(t *testing.T) {
	adapter, db := setupMySQLAdapter(t)
	defer db.Close()

	items, err := adapter.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items != nil {
		t.Errorf("expected nil items, got %+v", items)
	}
}

func TestMySQLAdapter_SaveOverwrites(t *testing.T) {
	adapter, db := setupMySQLAdapter(t)
	defer db.Close()
	ctx := context.Background()

	if err := adapter.Save(ctx, sampleItems()); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := adapter.Save(ctx, sampleItems()[:1]); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	items, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != 1 || items[0].Quantity != 2 {
		t.Errorf("unexpected items: %+v", items)
	}

	var rows int
	db.QueryRow(`SELECT COUNT(*) FROM kv_store WHERE k = ?`, testCartKey).Scan(&rows)
	if rows != 1 {
		t.Errorf("expected a single row, got %d", rows)
	}
}

func TestMySQLAdapter_LoadMalformed(t *testing.T) {
	adapter, db := setupMySQLAdapter(t)
	defer db.Close()

	db.Exec(`INSERT INTO kv_store (k, v) VALUES (?, ?)`, testCartKey, "{oops")

	if _, err := adapter.Load(context.Background()); err == nil {
		t.Error("expected error for malformed value")
	}
}

func TestMySQLAdapter_SaveEvent(t *testing.T) {
	adapter, db := setupMySQLAdapter(t)
	defer db.Close()
	ctx := context.Background()

	event := domain.CartEvent{
		ID:         uuid.NewString(),
		Type:       domain.EventItemAdded,
		ProductID:  1,
		Quantity:   2,
		Message:    "Added Mascara to cart",
		OccurredAt: time.Now().UTC(),
	}
	defer db.Exec(`DELETE FROM cart_events WHERE id = ?`, event.ID)

	if err := adapter.SaveEvent(ctx, event); err != nil {
		t.Fatalf("save event failed: %v", err)
	}

	var eventType, message string
	var quantity int
	err := db.QueryRowContext(ctx,
		`SELECT event_type, quantity, message FROM cart_events WHERE id = ?`, event.ID,
	).Scan(&eventType, &quantity, &message)
	if err != nil {
		t.Fatalf("query event failed: %v", err)
	}
	if eventType != "item_added" || quantity != 2 || message != event.Message {
		t.Errorf("unexpected row: %s %d %s", eventType, quantity, message)
	}

	if err := adapter.SaveEvent(ctx, event); err == nil {
		t.Error("expected duplicate event id to fail")
	}
}
