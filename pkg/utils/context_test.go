package utils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()

	_, ok := GetUserIDFromContext(ctx)
	assert.False(t, ok)

	userID := uuid.New()
	ctx = SetUserContext(ctx, userID, "staff")
	ctx = SetTokenContext(ctx, "tok")

	got, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, userID, got)

	role, ok := GetRoleFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "staff", role)

	token, ok := GetTokenFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)

	_, ok = GetUserIDFromContext(SetUserContext(context.Background(), uuid.Nil, "staff"))
	assert.False(t, ok, "nil user id is anonymous")
}
