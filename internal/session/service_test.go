package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/internal/store"
	"github.com/mkarpenko/streamhub/models"
)

// fakeSubmitter scripts store responses per action type and records every
// submitted action in order.
type fakeSubmitter struct {
	submitted []store.Action

	addKeyResp store.Response
	addKeyErr  error
	validResp  store.Response
	validErr   error
	logoutResp store.Response
	logoutErr  error
}

func (f *fakeSubmitter) Submit(_ context.Context, action store.Action) (store.Response, error) {
	f.submitted = append(f.submitted, action)

	switch action.(type) {
	case store.AddSessionKey:
		return f.addKeyResp, f.addKeyErr
	case store.ValidateSessionKey:
		return f.validResp, f.validErr
	case store.LogoutSessionKey:
		return f.logoutResp, f.logoutErr
	default:
		return nil, errors.New("unexpected action")
	}
}

func newTestService(f *fakeSubmitter) *Service {
	return NewService(f, logger.Nop())
}

func TestIssue(t *testing.T) {
	f := &fakeSubmitter{addKeyResp: store.Empty{}}
	svc := newTestService(f)

	key, err := svc.Issue(context.Background(), store.UserRef{ID: 42}, models.SessFrontend)

	require.NoError(t, err)
	assert.Len(t, key, 64)

	require.Len(t, f.submitted, 1)
	added := f.submitted[0].(store.AddSessionKey)
	assert.Equal(t, store.UserRef{ID: 42}, added.User)
	assert.Equal(t, models.SessFrontend, added.Class)
	assert.Equal(t, key, added.Key)
}

func TestIssue_StoreError(t *testing.T) {
	f := &fakeSubmitter{addKeyErr: store.ErrQueueFull}
	svc := newTestService(f)

	_, err := svc.Issue(context.Background(), store.UserRef{ID: 42}, models.SessFrontend)

	assert.ErrorIs(t, err, store.ErrQueueFull)
}

func TestValidate(t *testing.T) {
	f := &fakeSubmitter{validResp: store.ValidatedKey{Valid: true, UserID: 7}}
	svc := newTestService(f)

	userID, err := svc.Validate(context.Background(), models.SessRoku, "some-key")

	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestValidate_InvalidKey(t *testing.T) {
	f := &fakeSubmitter{validResp: store.ValidatedKey{Valid: false}}
	svc := newTestService(f)

	_, err := svc.Validate(context.Background(), models.SessRoku, "stale-key")

	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidate_UnexpectedResponse(t *testing.T) {
	f := &fakeSubmitter{validResp: store.Empty{}}
	svc := newTestService(f)

	_, err := svc.Validate(context.Background(), models.SessRoku, "some-key")

	assert.ErrorIs(t, err, store.ErrUnexpectedResponse)
}

func TestRefresh(t *testing.T) {
	f := &fakeSubmitter{
		validResp:  store.ValidatedKey{Valid: true, UserID: 7},
		addKeyResp: store.Empty{},
		logoutResp: store.Empty{},
	}
	svc := newTestService(f)

	newKey, err := svc.Refresh(context.Background(), models.SessRoku, "old-key")

	require.NoError(t, err)
	assert.Len(t, newKey, 64)

	require.Len(t, f.submitted, 3)
	assert.IsType(t, store.ValidateSessionKey{}, f.submitted[0])

	added := f.submitted[1].(store.AddSessionKey)
	assert.Equal(t, store.UserRef{ID: 7}, added.User)
	assert.Equal(t, newKey, added.Key)

	removed := f.submitted[2].(store.LogoutSessionKey)
	assert.Equal(t, "old-key", removed.Key)
}

func TestRefresh_FrontendClassRejected(t *testing.T) {
	f := &fakeSubmitter{}
	svc := newTestService(f)

	_, err := svc.Refresh(context.Background(), models.SessFrontend, "old-key")

	assert.ErrorIs(t, err, ErrClassNotRefreshable)
	assert.Empty(t, f.submitted)
}

func TestRefresh_InvalidOldKey(t *testing.T) {
	f := &fakeSubmitter{validResp: store.ValidatedKey{Valid: false}}
	svc := newTestService(f)

	_, err := svc.Refresh(context.Background(), models.SessDisplay, "stale-key")

	assert.ErrorIs(t, err, ErrInvalidSession)
	// No new key was recorded for an invalid session.
	require.Len(t, f.submitted, 1)
}

func TestRefresh_LogoutFailureIsSwallowed(t *testing.T) {
	f := &fakeSubmitter{
		validResp:  store.ValidatedKey{Valid: true, UserID: 7},
		addKeyResp: store.Empty{},
		logoutErr:  store.ErrStorage,
	}
	svc := newTestService(f)

	newKey, err := svc.Refresh(context.Background(), models.SessDisplay, "old-key")

	require.NoError(t, err)
	assert.NotEmpty(t, newKey)
}

func TestLogout(t *testing.T) {
	f := &fakeSubmitter{logoutResp: store.Empty{}}
	svc := newTestService(f)

	err := svc.Logout(context.Background(), models.SessFrontend, "some-key")

	require.NoError(t, err)
	require.Len(t, f.submitted, 1)
}
