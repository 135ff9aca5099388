package utils

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"marketplace/internal/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countUsers(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	return n
}

const insertUser = `INSERT INTO users (id, role, name, password, created_at, updated_at)
	VALUES ('u1', 'customer', 'Ali', 'x', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

func TestWithTransaction_Commit(t *testing.T) {
	conn := dbtest.NewSQLite(t)

	err := WithTransaction(context.Background(), conn, func(tx *sql.Tx) error {
		_, err := tx.Exec(insertUser)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 1, countUsers(t, conn))
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	conn := dbtest.NewSQLite(t)
	boom := errors.New("boom")

	err := WithTransaction(context.Background(), conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(insertUser); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countUsers(t, conn))
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	conn := dbtest.NewSQLite(t)

	assert.Panics(t, func() {
		_ = WithTransaction(context.Background(), conn, func(tx *sql.Tx) error {
			_, _ = tx.Exec(insertUser)
			panic("boom")
		})
	})
	assert.Equal(t, 0, countUsers(t, conn))
}
