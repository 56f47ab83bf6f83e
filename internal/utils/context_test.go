package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetUserIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDCtxKey, int64(42))

	userID, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}

func TestGetUserIDFromContextMissing(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestGetUserIDFromContextWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDCtxKey, "not an int")

	_, ok := GetUserIDFromContext(ctx)
	assert.False(t, ok)
}

func TestGetSessionKeyFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), SessionKeyCtxKey, "ABCD")

	key, ok := GetSessionKeyFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ABCD", key)

	_, ok = GetSessionKeyFromContext(context.Background())
	assert.False(t, ok)
}
