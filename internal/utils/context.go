// Package utils provides general-purpose helper utilities used across
// different parts of the application: type-safe context keys, the bounded
// retry wrapper used at startup, and the JSON-to-XML renderer for the Roku
// channel feed.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key under which the session gate stores the
// authenticated user's identifier in the request context.
var UserIDCtxKey = contextKey("userID")

// SessionKeyCtxKey is the key under which the session gate stores the
// validated session token in the request context. Logout and refresh
// handlers read it back to act on the key that authenticated the request.
var SessionKeyCtxKey = contextKey("sessionKey")

// GetUserIDFromContext retrieves the authenticated user's identifier from
// the context.
//
// Returns the user ID of type int64 and an ok flag:
//   - ok == true: value is found and has the correct int64 type
//   - ok == false: value is missing or has an unexpected type
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}

// GetSessionKeyFromContext retrieves the validated session token from the
// context, with the same ok semantics as GetUserIDFromContext.
func GetSessionKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(SessionKeyCtxKey).(string)
	return key, ok
}
