// Package dbtest opens throwaway in-memory databases carrying the
// production schema for repository and service tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"marketplace/internal/db"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()

	// A named shared-cache database keeps every pooled connection on the
	// same in-memory schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// InsertUser writes a bare user row and returns its id.
func InsertUser(t *testing.T, conn *sql.DB, role, name string, skills ...string) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := conn.Exec(`INSERT INTO users (id, role, name, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, role, name, id+"@example.com", "x", now, now)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}

	for _, s := range skills {
		if _, err := conn.Exec(`INSERT INTO worker_skills (user_id, skill) VALUES ($1, $2)`, id, s); err != nil {
			t.Fatalf("insert skill: %v", err)
		}
	}
	return id
}

// InsertTask writes a task owned by customerID. workerID may be empty.
func InsertTask(t *testing.T, conn *sql.DB, customerID, category, status, workerID string) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	var worker sql.NullString
	if workerID != "" {
		worker = sql.NullString{String: workerID, Valid: true}
	}
	_, err := conn.Exec(`INSERT INTO tasks (id, title, description, category, location, budget, scheduled_at,
			status, customer_id, customer_name, worker_id, worker_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		id, category+" job", "needs doing", category, "Lahore", 2000.0, now.Add(24*time.Hour),
		status, customerID, "Customer", worker, worker, now, now)
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}
	return id
}

// InsertBid writes a bid and returns its id.
func InsertBid(t *testing.T, conn *sql.DB, taskID, workerID string, price float64, accepted bool) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`INSERT INTO bids (id, task_id, worker_id, worker_name, skill, bid_price, distance, accepted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, taskID, workerID, "Worker", "Plumber", price, "2 km", accepted, time.Now().UTC())
	if err != nil {
		t.Fatalf("insert bid: %v", err)
	}
	return id
}
