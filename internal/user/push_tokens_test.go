package user

import (
	"context"
	"testing"

	"marketplace/internal/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushTokens(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	repo := NewUserRepository()
	tokens := NewPushTokens(repo, conn)

	id := dbtest.InsertUser(t, conn, "customer", "Ayesha")

	token, err := tokens.PushToken(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, repo.UpdatePushToken(ctx, conn, id, "ExponentPushToken[abc]"))
	token, err = tokens.PushToken(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ExponentPushToken[abc]", token)

	token, err = tokens.PushToken(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, token)
}
