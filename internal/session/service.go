// Package session implements the lifecycle of opaque session keys on top of
// the store actor: issuance, validation, refresh, and logout, parameterized
// by session class.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/internal/store"
	"github.com/mkarpenko/streamhub/models"
)

var (
	// ErrClassNotRefreshable is returned by Refresh for session classes
	// whose keys must expire and force a new login.
	ErrClassNotRefreshable = errors.New("session class does not support refresh")

	// ErrInvalidSession is returned when a presented key is unknown or
	// expired.
	ErrInvalidSession = errors.New("session key is not valid")
)

// Submitter is the slice of the store actor the session service needs.
type Submitter interface {
	Submit(ctx context.Context, action store.Action) (store.Response, error)
}

// Service issues and verifies session keys. Safe for concurrent use.
type Service struct {
	store  Submitter
	logger *logger.Logger
}

func NewService(st Submitter, log *logger.Logger) *Service {
	return &Service{store: st, logger: log}
}

// Issue mints a fresh key for the user in the given class and records it.
// The key is returned exactly once; it is never derivable again.
func (s *Service) Issue(ctx context.Context, user store.UserRef, class models.SessionClass) (string, error) {
	key, err := NewToken()
	if err != nil {
		return "", err
	}

	resp, err := s.store.Submit(ctx, store.AddSessionKey{User: user, Class: class, Key: key})
	if err != nil {
		return "", fmt.Errorf("error recording session key: %w", err)
	}
	if _, ok := resp.(store.Empty); !ok {
		return "", store.ErrUnexpectedResponse
	}

	return key, nil
}

// Validate checks a presented key and returns the owning user id. An
// unknown or expired key yields ErrInvalidSession; storage trouble yields
// the underlying error.
func (s *Service) Validate(ctx context.Context, class models.SessionClass, key string) (int64, error) {
	resp, err := s.store.Submit(ctx, store.ValidateSessionKey{Class: class, Key: key})
	if err != nil {
		return 0, fmt.Errorf("error validating session key: %w", err)
	}

	validated, ok := resp.(store.ValidatedKey)
	if !ok {
		return 0, store.ErrUnexpectedResponse
	}
	if !validated.Valid {
		return 0, ErrInvalidSession
	}

	return validated.UserID, nil
}

// Refresh exchanges a live key for a fresh one in the same class, resetting
// the lifetime clock. Only refreshable classes may do this; the old key is
// deleted best-effort once the new one is recorded.
func (s *Service) Refresh(ctx context.Context, class models.SessionClass, oldKey string) (string, error) {
	if !class.Info().Refreshable {
		return "", ErrClassNotRefreshable
	}

	userID, err := s.Validate(ctx, class, oldKey)
	if err != nil {
		return "", err
	}

	newKey, err := s.Issue(ctx, store.UserRef{ID: userID}, class)
	if err != nil {
		return "", err
	}

	// The new key is already live; a failed delete only leaves the old key
	// to age out on its own.
	if err := s.Logout(ctx, class, oldKey); err != nil {
		s.logger.Err(err).Str("class", class.String()).
			Msg("error deleting refreshed session key")
	}

	return newKey, nil
}

// Logout deletes a key from its class partition. Unknown keys are fine.
func (s *Service) Logout(ctx context.Context, class models.SessionClass, key string) error {
	resp, err := s.store.Submit(ctx, store.LogoutSessionKey{Class: class, Key: key})
	if err != nil {
		return fmt.Errorf("error deleting session key: %w", err)
	}
	if _, ok := resp.(store.Empty); !ok {
		return store.ErrUnexpectedResponse
	}

	return nil
}
