// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Store tests are integration tests: they need a running PostgreSQL and
// skip themselves when none is reachable.

package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"

	"shopadmin/internal/database"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "shopadmin")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "shopadmin")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

// testDB connects and migrates, skipping the test when no database is
// available.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// adminUserID ensures the seeded admin user exists and returns its ID.
func adminUserID(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	if err := database.Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	var id uuid.UUID
	if err := db.QueryRow(`SELECT id FROM cms_users ORDER BY created_at LIMIT 1`).Scan(&id); err != nil {
		t.Fatalf("fetch admin user: %v", err)
	}
	return id
}

// statusID looks up a workflow status by key.
func statusID(t *testing.T, db *sql.DB, key string) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRow(`SELECT id FROM workflow_statuses WHERE status_key = $1`, key).Scan(&id); err != nil {
		t.Fatalf("fetch status %q: %v", key, err)
	}
	return id
}

// createOrder inserts a bare order and returns its ID. Cleaned up with the
// test; order items cascade.
func createOrder(t *testing.T, db *sql.DB, subtotal, tax float64) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(`
		INSERT INTO orders (subtotal, tax_amount, total, status)
		VALUES ($1, $2, $1 + $2, 1)
		RETURNING id
	`, subtotal, tax).Scan(&id)
	if err != nil {
		t.Fatalf("insert order: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM orders WHERE id = $1`, id)
	})
	return id
}

// createProduct inserts a product row for item foreign keys.
func createProduct(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(`
		INSERT INTO products (name, price) VALUES ('test widget', 9.99) RETURNING id
	`).Scan(&id)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM products WHERE id = $1`, id)
	})
	return id
}

// createItem inserts an order line item at the given workflow status.
func createItem(t *testing.T, db *sql.DB, orderID, productID int64, statusKey string, shipping float64) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(`
		INSERT INTO order_products (order_id, product_id, product_name, quantity, shipping, workflow_status_id)
		VALUES ($1, $2, 'test widget', 1, $3, (SELECT id FROM workflow_statuses WHERE status_key = $4))
		RETURNING id
	`, orderID, productID, shipping, statusKey).Scan(&id)
	if err != nil {
		t.Fatalf("insert order item: %v", err)
	}
	return id
}
