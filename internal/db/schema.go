package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		phone TEXT,
		password TEXT NOT NULL,
		profile_picture TEXT,
		push_token TEXT,
		address TEXT,
		city TEXT,
		cnic TEXT,
		cnic_front TEXT,
		cnic_back TEXT,
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_jobs INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS worker_skills (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		skill TEXT NOT NULL,
		PRIMARY KEY (user_id, skill)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		location TEXT NOT NULL,
		budget DOUBLE PRECISION NOT NULL,
		scheduled_at TIMESTAMP NOT NULL,
		image_url TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		customer_id TEXT NOT NULL REFERENCES users(id),
		customer_name TEXT NOT NULL,
		worker_id TEXT REFERENCES users(id),
		worker_name TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_customer_id ON tasks(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_worker_id ON tasks(worker_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
	`CREATE TABLE IF NOT EXISTS bids (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL REFERENCES tasks(id),
		worker_id TEXT NOT NULL REFERENCES users(id),
		worker_name TEXT NOT NULL,
		worker_photo TEXT,
		skill TEXT NOT NULL,
		bid_price DOUBLE PRECISION NOT NULL,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		distance TEXT,
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		completion_time TEXT,
		message TEXT,
		accepted BOOLEAN NOT NULL DEFAULT FALSE,
		accepted_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (task_id, worker_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bids_task_id ON bids(task_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL REFERENCES tasks(id),
		sender_id TEXT NOT NULL REFERENCES users(id),
		text TEXT NOT NULL,
		is_customer BOOLEAN NOT NULL,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		read_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_task_id ON messages(task_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL REFERENCES tasks(id),
		reviewer_id TEXT NOT NULL REFERENCES users(id),
		reviewee_id TEXT NOT NULL REFERENCES users(id),
		rating INTEGER NOT NULL,
		comment TEXT,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (task_id, reviewer_id)
	)`,
}

// Migrate creates the schema. The statements are portable between Postgres
// and SQLite so repository tests run against the same DDL.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	logrus.Infof("Applied %d schema statements", len(schema))
	return nil
}
