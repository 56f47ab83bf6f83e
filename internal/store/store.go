// Package store implements the serialized data-access actor that owns the
// application's SQLite connection.
//
// The SQLite driver connection is not safe for concurrent use, so instead of
// wrapping every call in a mutex, exactly one worker goroutine owns the
// connection for the lifetime of the process. All other code talks to it by
// submitting typed commands over a bounded queue; the worker executes them
// strictly one at a time in arrival order and replies on a per-command
// one-shot channel. This makes the serialization order explicit: two
// commands submitted concurrently are observably executed one after the
// other, never interleaved.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mkarpenko/streamhub/internal/config"
	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/internal/utils"
	"github.com/mkarpenko/streamhub/migrations"
	"github.com/mkarpenko/streamhub/models"
)

// Store is the caller-side handle to the data-access actor. It is safe for
// concurrent use from any number of goroutines; the zero value is not usable,
// construct one with New.
type Store struct {
	queue chan envelope

	// done is closed when the worker accepts a Shutdown command; submissions
	// observing it fail with ErrStoreClosed instead of queueing.
	done chan struct{}

	// exited is closed when the worker goroutine has fully returned,
	// including the post-shutdown queue drain.
	exited chan struct{}

	logger *logger.Logger
}

// envelope pairs one command with its single-use reply channel.
type envelope struct {
	action Action
	reply  chan result
}

type result struct {
	resp Response
	err  error
}

// worker holds the state only the worker goroutine may touch: the owned
// connection, the clock, and the status counters.
type worker struct {
	conn     *sql.DB
	now      func() time.Time
	counters map[string]uint64
	logger   *logger.Logger
}

// New connects to the SQLite database named by cfg and starts the worker.
//
// The connection is established with bounded retry and a fixed sleep between
// attempts; if every attempt fails the returned error is fatal for the
// process; there is no degraded mode without storage. After connecting,
// pending schema migrations are applied; a migration failure is logged and
// accepted rather than aborting startup.
func New(ctx context.Context, cfg config.DB, log *logger.Logger) (*Store, error) {
	conn, err := utils.Retry(ctx, cfg.ConnectRetries, cfg.RetryInterval, func() (*sql.DB, error) {
		return openSQLite(ctx, cfg.DSN)
	})
	if err != nil {
		log.Err(err).Str("dsn", cfg.DSN).Msg("unable to connect to database")
		return nil, err
	}

	if err := migrations.Migrate(conn); err != nil {
		// Documented risk: the service starts against the old schema and
		// surfaces storage errors instead of refusing to boot.
		log.Err(err).Msg("error during migrations")
	}

	return start(conn, cfg.QueueSize, time.Now, log), nil
}

// start wires a connection into a running actor. Split from New so tests can
// drive the worker against an in-memory database with a fake clock.
func start(conn *sql.DB, queueSize int, clock func() time.Time, log *logger.Logger) *Store {
	s := &Store{
		queue:  make(chan envelope, queueSize),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		logger: log,
	}

	w := &worker{
		conn:     conn,
		now:      clock,
		counters: make(map[string]uint64),
		logger:   log,
	}

	go s.run(w)

	return s
}

// Submit queues one command and waits for its result. It is safe to call
// from any number of goroutines.
//
// A full queue fails immediately with ErrQueueFull; callers must treat that
// as a fatal infrastructure condition for the request, not silently retry. A
// stopped store fails with ErrStoreClosed. A caller whose ctx expires may
// abandon the wait; the worker still executes the command in full and the
// buffered reply is discarded, so a command is never partially executed.
func (s *Store) Submit(ctx context.Context, action Action) (Response, error) {
	reply := make(chan result, 1)

	select {
	case <-s.done:
		return nil, ErrStoreClosed
	default:
	}

	select {
	case s.queue <- envelope{action: action, reply: reply}:
	case <-s.done:
		return nil, ErrStoreClosed
	default:
		return nil, ErrQueueFull
	}

	select {
	case res := <-reply:
		return res.resp, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.exited:
		// The worker is gone. The command either was executed (its reply is
		// already buffered) or was drained with ErrStoreClosed.
		select {
		case res := <-reply:
			return res.resp, res.err
		default:
			return nil, ErrStoreClosed
		}
	}
}

// Close submits a Shutdown command and waits for the worker to stop.
func (s *Store) Close(ctx context.Context) error {
	if _, err := s.Submit(ctx, Shutdown{}); err != nil {
		return err
	}

	select {
	case <-s.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the worker loop. It executes exactly one command at a time and
// never exits except through a Shutdown command.
func (s *Store) run(w *worker) {
	defer close(s.exited)
	defer func() {
		if err := w.conn.Close(); err != nil {
			w.logger.Err(err).Msg("closing database connection")
		}
	}()

	for env := range s.queue {
		resp, err := w.dispatch(env.action)

		w.counters[env.action.name()]++
		if err != nil {
			w.counters["errors"]++
		}

		select {
		case env.reply <- result{resp: resp, err: err}:
		default:
			// The reply buffer can only be occupied if the caller's channel
			// was misused; the command itself has already run to completion.
			w.logger.Error().Err(ErrReplyChannelLost).
				Str("action", env.action.name()).
				Msg("failed to deliver store response to requestor")
		}

		if _, stopping := env.action.(Shutdown); stopping {
			close(s.done)
			s.drain()
			return
		}
	}
}

// drain fails every command still queued behind a Shutdown. They were
// accepted before done was closed, and must not leave their callers hanging.
func (s *Store) drain() {
	for {
		select {
		case env := <-s.queue:
			env.reply <- result{err: ErrStoreClosed}
		default:
			return
		}
	}
}

// dispatch routes one command to its handler. The switch is exhaustive over
// the sealed Action set.
func (w *worker) dispatch(action Action) (Response, error) {
	switch a := action.(type) {
	case AddUser:
		return w.addUser(a)
	case ValidateAccount:
		return w.validateAccount(a)
	case AddSessionKey:
		return w.addSessionKey(a)
	case ValidateSessionKey:
		return w.validateSessionKey(a)
	case LogoutSessionKey:
		return w.logoutSessionKey(a)
	case GetUserPassHash:
		return w.getUserPassHash(a)
	case GetChannelLists:
		return w.getChannelLists(a)
	case GetChannelList:
		return w.getChannelList(a)
	case SetChannelList:
		return w.setChannelList(a)
	case CreateChannelList:
		return w.createChannelList(a)
	case GetActiveChannel:
		return w.getActiveChannel(a)
	case GetActiveChannelName:
		return w.getActiveChannelName(a)
	case SetActiveChannel:
		return w.setActiveChannel(a)
	case GetStatusReport:
		return w.statusReport()
	case Shutdown:
		return Empty{}, nil
	default:
		// Unreachable while the Action set stays sealed.
		return nil, storageErr(errUnknownAction(action))
	}
}

func (w *worker) statusReport() (Response, error) {
	snapshot := models.StatusReport{Counters: w.counters}
	return StatusReport{Report: snapshot.Clone()}, nil
}

func openSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// One pooled connection at most: the worker is the only user, and the
	// driver connection must never be shared anyway.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
