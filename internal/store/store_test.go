package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/migrations"
	"github.com/mkarpenko/streamhub/models"
)

// fakeClock is advanced by the test goroutine between Submit calls; the
// queue handoff orders those writes before the worker's reads.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T, clock *fakeClock) *Store {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)

	require.NoError(t, migrations.Migrate(conn))

	s := start(conn, 16, clock.Now, logger.Nop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})

	return s
}

func addTestUser(t *testing.T, s *Store, username string) int64 {
	t.Helper()

	resp, err := s.Submit(context.Background(), AddUser{
		Username:       username,
		PassHash:       "$argon2id$stub",
		HashVersion:    1,
		ValidationCode: "code-" + username,
	})
	require.NoError(t, err)

	id, ok := resp.(UserID)
	require.True(t, ok)
	return id.ID
}

func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestStore(t, clock)

	userID := addTestUser(t, s, "alice")
	assert.Positive(t, userID)

	// Same username again is a conflict, not a second row.
	_, err := s.Submit(ctx, AddUser{
		Username:       "alice",
		PassHash:       "$argon2id$other",
		HashVersion:    1,
		ValidationCode: "other-code",
	})
	assert.ErrorIs(t, err, ErrEntryExists)

	resp, err := s.Submit(ctx, GetUserPassHash{Username: "alice"})
	require.NoError(t, err)
	cred := resp.(UserPassHash)
	assert.Equal(t, "$argon2id$stub", cred.Hash)
	assert.Equal(t, 1, cred.Version)
	assert.False(t, cred.Validated)

	// An unknown validation code matches no account.
	_, err = s.Submit(ctx, ValidateAccount{Code: "bogus"})
	var rowErr *InvalidRowCountError
	require.ErrorAs(t, err, &rowErr)
	assert.True(t, rowErr.NotFound())

	resp, err = s.Submit(ctx, ValidateAccount{Code: "code-alice"})
	require.NoError(t, err)
	assert.Equal(t, Bool{OK: true}, resp)

	resp, err = s.Submit(ctx, GetUserPassHash{Username: "alice"})
	require.NoError(t, err)
	assert.True(t, resp.(UserPassHash).Validated)

	// The code is single-use: it was cleared on validation.
	_, err = s.Submit(ctx, ValidateAccount{Code: "code-alice"})
	require.ErrorAs(t, err, &rowErr)
	assert.True(t, rowErr.NotFound())
}

func TestGetUserPassHash_UnknownUser(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, clock)

	_, err := s.Submit(context.Background(), GetUserPassHash{Username: "nobody"})

	var rowErr *InvalidRowCountError
	require.ErrorAs(t, err, &rowErr)
	assert.True(t, rowErr.NotFound())
}

func TestSessionKeyLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestStore(t, clock)

	userID := addTestUser(t, s, "bob")

	resp, err := s.Submit(ctx, AddSessionKey{
		User:  UserRef{Name: "bob"},
		Class: models.SessFrontend,
		Key:   "fe-key",
	})
	require.NoError(t, err)
	assert.Equal(t, Empty{}, resp)

	resp, err = s.Submit(ctx, ValidateSessionKey{Class: models.SessFrontend, Key: "fe-key"})
	require.NoError(t, err)
	assert.Equal(t, ValidatedKey{Valid: true, UserID: userID}, resp)

	// Partitions are independent: the same token means nothing to another
	// class.
	resp, err = s.Submit(ctx, ValidateSessionKey{Class: models.SessRoku, Key: "fe-key"})
	require.NoError(t, err)
	assert.Equal(t, ValidatedKey{Valid: false, UserID: 0}, resp)

	// A token at exactly its maximum age is still live.
	clock.Advance(models.SessFrontend.Info().MaxAge)
	resp, err = s.Submit(ctx, ValidateSessionKey{Class: models.SessFrontend, Key: "fe-key"})
	require.NoError(t, err)
	assert.Equal(t, ValidatedKey{Valid: true, UserID: userID}, resp)

	// One tick past the maximum age the token is dead, and stays dead.
	clock.Advance(time.Second)
	resp, err = s.Submit(ctx, ValidateSessionKey{Class: models.SessFrontend, Key: "fe-key"})
	require.NoError(t, err)
	assert.Equal(t, ValidatedKey{Valid: false, UserID: 0}, resp)

	resp, err = s.Submit(ctx, ValidateSessionKey{Class: models.SessFrontend, Key: "fe-key"})
	require.NoError(t, err)
	assert.Equal(t, ValidatedKey{Valid: false, UserID: 0}, resp)
}

func TestSessionKeyExpiryUsesCreationTime(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestStore(t, clock)

	userID := addTestUser(t, s, "carol")

	_, err := s.Submit(ctx, AddSessionKey{
		User:  UserRef{ID: userID},
		Class: models.SessFrontend,
		Key:   "fe-key",
	})
	require.NoError(t, err)

	maxAge := models.SessFrontend.Info().MaxAge

	// Regular use keeps updating the last-used time, but the lifetime is
	// anchored to creation.
	clock.Advance(maxAge / 2)
	resp, err := s.Submit(ctx, ValidateSessionKey{Class: models.SessFrontend, Key: "fe-key"})
	require.NoError(t, err)
	assert.True(t, resp.(ValidatedKey).Valid)

	clock.Advance(maxAge/2 + time.Second)
	resp, err = s.Submit(ctx, ValidateSessionKey{Class: models.SessFrontend, Key: "fe-key"})
	require.NoError(t, err)
	assert.False(t, resp.(ValidatedKey).Valid)
}

func TestAddSessionKey_Conflicts(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, clock)

	userID := addTestUser(t, s, "dave")

	_, err := s.Submit(ctx, AddSessionKey{User: UserRef{ID: userID}, Class: models.SessRoku, Key: "ro-key"})
	require.NoError(t, err)

	// Same key in the same partition collides.
	_, err = s.Submit(ctx, AddSessionKey{User: UserRef{ID: userID}, Class: models.SessRoku, Key: "ro-key"})
	assert.ErrorIs(t, err, ErrEntryExists)

	// Same key in another partition does not.
	_, err = s.Submit(ctx, AddSessionKey{User: UserRef{ID: userID}, Class: models.SessDisplay, Key: "ro-key"})
	assert.NoError(t, err)

	// An unknown user reference is a lookup failure, not an insert.
	var rowErr *InvalidRowCountError
	_, err = s.Submit(ctx, AddSessionKey{User: UserRef{Name: "nobody"}, Class: models.SessRoku, Key: "other"})
	require.ErrorAs(t, err, &rowErr)
	assert.True(t, rowErr.NotFound())
}

func TestConcurrentSessionsSameClass(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, clock)

	userID := addTestUser(t, s, "frank")

	// A user may hold several live sessions in one partition, one per
	// device.
	for _, key := range []string{"ro-key-1", "ro-key-2"} {
		_, err := s.Submit(ctx, AddSessionKey{User: UserRef{ID: userID}, Class: models.SessRoku, Key: key})
		require.NoError(t, err)
	}

	for _, key := range []string{"ro-key-1", "ro-key-2"} {
		resp, err := s.Submit(ctx, ValidateSessionKey{Class: models.SessRoku, Key: key})
		require.NoError(t, err)
		assert.Equal(t, ValidatedKey{Valid: true, UserID: userID}, resp)
	}

	// Logging one out leaves the other untouched.
	_, err := s.Submit(ctx, LogoutSessionKey{Class: models.SessRoku, Key: "ro-key-1"})
	require.NoError(t, err)

	resp, err := s.Submit(ctx, ValidateSessionKey{Class: models.SessRoku, Key: "ro-key-1"})
	require.NoError(t, err)
	assert.Equal(t, ValidatedKey{Valid: false, UserID: 0}, resp)

	resp, err = s.Submit(ctx, ValidateSessionKey{Class: models.SessRoku, Key: "ro-key-2"})
	require.NoError(t, err)
	assert.Equal(t, ValidatedKey{Valid: true, UserID: userID}, resp)
}

func TestLogoutSessionKey(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, clock)

	userID := addTestUser(t, s, "erin")

	_, err := s.Submit(ctx, AddSessionKey{User: UserRef{ID: userID}, Class: models.SessDisplay, Key: "di-key"})
	require.NoError(t, err)

	resp, err := s.Submit(ctx, LogoutSessionKey{Class: models.SessDisplay, Key: "di-key"})
	require.NoError(t, err)
	assert.Equal(t, Empty{}, resp)

	resp, err = s.Submit(ctx, ValidateSessionKey{Class: models.SessDisplay, Key: "di-key"})
	require.NoError(t, err)
	assert.False(t, resp.(ValidatedKey).Valid)

	// Logging out an absent key succeeds.
	_, err = s.Submit(ctx, LogoutSessionKey{Class: models.SessDisplay, Key: "di-key"})
	assert.NoError(t, err)
}

func TestChannelLists(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, clock)

	userID := addTestUser(t, s, "frank")

	resp, err := s.Submit(ctx, GetChannelLists{UserID: userID})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, resp.(StringResp).Value)

	_, err = s.Submit(ctx, CreateChannelList{UserID: userID, Name: "Sports"})
	require.NoError(t, err)
	_, err = s.Submit(ctx, CreateChannelList{UserID: userID, Name: "News"})
	require.NoError(t, err)

	_, err = s.Submit(ctx, CreateChannelList{UserID: userID, Name: "Sports"})
	assert.ErrorIs(t, err, ErrEntryExists)

	resp, err = s.Submit(ctx, GetChannelLists{UserID: userID})
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(resp.(StringResp).Value), &names))
	assert.Equal(t, []string{"News", "Sports"}, names)

	resp, err = s.Submit(ctx, GetChannelList{UserID: userID, Name: "Sports"})
	require.NoError(t, err)
	assert.JSONEq(t, models.NewChannelListData, resp.(StringResp).Value)

	updated := `{"entries": [{"name": "ch1"}]}`
	_, err = s.Submit(ctx, SetChannelList{UserID: userID, Name: "Sports", Data: updated})
	require.NoError(t, err)

	resp, err = s.Submit(ctx, GetChannelList{UserID: userID, Name: "Sports"})
	require.NoError(t, err)
	assert.Equal(t, updated, resp.(StringResp).Value)

	// Updating a list that was never created is a row-count failure.
	var rowErr *InvalidRowCountError
	_, err = s.Submit(ctx, SetChannelList{UserID: userID, Name: "Absent", Data: updated})
	require.ErrorAs(t, err, &rowErr)
	assert.True(t, rowErr.NotFound())

	// Lists are per user.
	otherID := addTestUser(t, s, "grace")
	resp, err = s.Submit(ctx, GetChannelLists{UserID: otherID})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, resp.(StringResp).Value)

	_, err = s.Submit(ctx, CreateChannelList{UserID: otherID, Name: "Sports"})
	assert.NoError(t, err)
}

func TestActiveChannel(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, clock)

	userID := addTestUser(t, s, "heidi")

	// No active channel selected yet.
	var rowErr *InvalidRowCountError
	_, err := s.Submit(ctx, GetActiveChannel{UserID: userID})
	require.ErrorAs(t, err, &rowErr)
	assert.True(t, rowErr.NotFound())

	_, err = s.Submit(ctx, CreateChannelList{UserID: userID, Name: "Movies"})
	require.NoError(t, err)

	_, err = s.Submit(ctx, SetActiveChannel{UserID: userID, Name: "Movies"})
	require.NoError(t, err)

	resp, err := s.Submit(ctx, GetActiveChannel{UserID: userID})
	require.NoError(t, err)
	assert.JSONEq(t, models.NewChannelListData, resp.(StringResp).Value)

	resp, err = s.Submit(ctx, GetActiveChannelName{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, "Movies", resp.(StringResp).Value)

	// Selecting a list the user does not own fails before any update.
	_, err = s.Submit(ctx, SetActiveChannel{UserID: userID, Name: "Absent"})
	require.ErrorAs(t, err, &rowErr)
	assert.True(t, rowErr.NotFound())

	resp, err = s.Submit(ctx, GetActiveChannelName{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, "Movies", resp.(StringResp).Value)
}

func TestStatusReport(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, clock)

	addTestUser(t, s, "ivan")
	_, _ = s.Submit(ctx, GetUserPassHash{Username: "nobody"})

	resp, err := s.Submit(ctx, GetStatusReport{})
	require.NoError(t, err)

	report := resp.(StatusReport).Report
	assert.Equal(t, uint64(1), report.Counters["AddUser"])
	assert.Equal(t, uint64(1), report.Counters["GetUserPassHash"])
	assert.Equal(t, uint64(1), report.Counters["errors"])

	// The snapshot is detached from the live counters.
	report.Counters["AddUser"] = 99
	resp, err = s.Submit(ctx, GetStatusReport{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), resp.(StatusReport).Report.Counters["AddUser"])
}

func TestConcurrentSubmitsAreSerialized(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, clock)

	userID := addTestUser(t, s, "judy")

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Submit(ctx, CreateChannelList{
				UserID: userID,
				Name:   fmt.Sprintf("list-%02d", i),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "submission %d", i)
	}

	resp, err := s.Submit(ctx, GetChannelLists{UserID: userID})
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(resp.(StringResp).Value), &names))
	assert.Len(t, names, n)
}

func TestShutdown(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	require.NoError(t, migrations.Migrate(conn))

	s := start(conn, 16, clock.Now, logger.Nop())

	require.NoError(t, s.Close(ctx))

	_, err = s.Submit(ctx, GetStatusReport{})
	assert.ErrorIs(t, err, ErrStoreClosed)

	// Closing twice reports the store as already stopped.
	assert.ErrorIs(t, s.Close(ctx), ErrStoreClosed)
}

func TestSubmit_QueueFull(t *testing.T) {
	// No worker goroutine: the queue never drains.
	s := &Store{
		queue:  make(chan envelope, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		logger: logger.Nop(),
	}
	s.queue <- envelope{action: GetStatusReport{}, reply: make(chan result, 1)}

	_, err := s.Submit(context.Background(), GetStatusReport{})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestSubmit_ContextCancelled(t *testing.T) {
	// No worker goroutine: the command is queued but never answered.
	s := &Store{
		queue:  make(chan envelope, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		logger: logger.Nop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Submit(ctx, GetStatusReport{})
	assert.ErrorIs(t, err, context.Canceled)
}
