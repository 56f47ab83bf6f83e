package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/mkarpenko/streamhub/models"
)

// Every handler in this file runs on the worker goroutine and therefore has
// exclusive use of the connection. Any operation that logically expects
// exactly one affected or returned row routes through exactlyOne /
// exactlyOneOf: zero or multiple rows is always an InvalidRowCountError,
// never "pick the first".

func (w *worker) addUser(a AddUser) (Response, error) {
	query, args, err := insertUserQuery(a.Username, a.PassHash, a.HashVersion, a.ValidationCode)
	if err != nil {
		return nil, storageErr(err)
	}

	res, err := w.conn.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEntryExists
		}
		w.logger.Err(err).Str("username", a.Username).Msg("error adding user")
		return nil, storageErr(err)
	}
	if err := exactlyOne(res); err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr(err)
	}

	return UserID{ID: id}, nil
}

func (w *worker) validateAccount(a ValidateAccount) (Response, error) {
	query, args, err := selectUserByValidationCodeQuery(a.Code)
	if err != nil {
		return nil, storageErr(err)
	}

	user, err := w.queryOneUser(query, args)
	if err != nil {
		return nil, err
	}

	query, args, err = markUserValidatedQuery(user.UserID)
	if err != nil {
		return nil, storageErr(err)
	}

	res, err := w.conn.Exec(query, args...)
	if err != nil {
		w.logger.Err(err).Int64("user_id", user.UserID).Msg("error updating validation status")
		return nil, storageErr(err)
	}
	if err := exactlyOne(res); err != nil {
		return nil, err
	}

	return Bool{OK: true}, nil
}

func (w *worker) addSessionKey(a AddSessionKey) (Response, error) {
	query, args, err := selectUserByRefQuery(a.User)
	if err != nil {
		return nil, storageErr(err)
	}

	user, err := w.queryOneUser(query, args)
	if err != nil {
		return nil, err
	}

	now := w.now()
	query, args, err = insertSessionKeyQuery(a.Class.Info().Table, user.UserID, a.Key, now)
	if err != nil {
		return nil, storageErr(err)
	}

	res, err := w.conn.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEntryExists
		}
		w.logger.Err(err).Str("class", a.Class.String()).Msg("error adding session key")
		return nil, storageErr(err)
	}
	if err := exactlyOne(res); err != nil {
		return nil, err
	}

	return Empty{}, nil
}

func (w *worker) validateSessionKey(a ValidateSessionKey) (Response, error) {
	table := a.Class.Info().Table

	query, args, err := selectSessionKeyQuery(table, a.Key)
	if err != nil {
		return nil, storageErr(err)
	}

	keys, err := w.querySessionKeys(query, args)
	if err != nil {
		return nil, err
	}

	switch len(keys) {
	case 0:
		// Unknown token; same answer as one that expired and was
		// already deleted.
		return ValidatedKey{Valid: false, UserID: 0}, nil
	case 1:
	default:
		w.logger.Warn().Int("rows", len(keys)).Str("class", a.Class.String()).
			Msg("duplicate session key rows")
		return nil, &InvalidRowCountError{N: int64(len(keys))}
	}

	key := keys[0]
	now := w.now()

	// Expiry is checked before any mutation; an expired key transitions to
	// deleted inside this same command execution and can never be revived.
	if now.Sub(key.CreationTime) > a.Class.Info().MaxAge {
		query, args, err := deleteSessionKeyByIDQuery(table, key.ID)
		if err != nil {
			return nil, storageErr(err)
		}

		res, err := w.conn.Exec(query, args...)
		if err != nil {
			w.logger.Err(err).Str("class", a.Class.String()).Msg("error deleting expired session key")
			return nil, storageErr(err)
		}
		if err := exactlyOne(res); err != nil {
			return nil, err
		}

		return ValidatedKey{Valid: false, UserID: 0}, nil
	}

	query, args, err = touchSessionKeyQuery(table, key.ID, now)
	if err != nil {
		return nil, storageErr(err)
	}

	res, err := w.conn.Exec(query, args...)
	if err != nil {
		w.logger.Err(err).Str("class", a.Class.String()).Msg("error updating last used time")
		return nil, storageErr(err)
	}
	if err := exactlyOne(res); err != nil {
		return nil, err
	}

	return ValidatedKey{Valid: true, UserID: key.UserID}, nil
}

func (w *worker) logoutSessionKey(a LogoutSessionKey) (Response, error) {
	query, args, err := deleteSessionKeyQuery(a.Class.Info().Table, a.Key)
	if err != nil {
		return nil, storageErr(err)
	}

	// Logout is idempotent: deleting an absent key is success.
	if _, err := w.conn.Exec(query, args...); err != nil {
		w.logger.Err(err).Str("class", a.Class.String()).Msg("error deleting session key")
		return nil, storageErr(err)
	}

	return Empty{}, nil
}

func (w *worker) getUserPassHash(a GetUserPassHash) (Response, error) {
	query, args, err := selectUserByNameQuery(a.Username)
	if err != nil {
		return nil, storageErr(err)
	}

	user, err := w.queryOneUser(query, args)
	if err != nil {
		return nil, err
	}

	return UserPassHash{
		Hash:      user.PassHash,
		Version:   user.HashVersion,
		Validated: user.Validated,
	}, nil
}

func (w *worker) getChannelLists(a GetChannelLists) (Response, error) {
	query, args, err := selectChannelNamesQuery(a.UserID)
	if err != nil {
		return nil, storageErr(err)
	}

	rows, err := w.conn.Query(query, args...)
	if err != nil {
		w.logger.Err(err).Int64("user_id", a.UserID).Msg("error getting channel lists")
		return nil, storageErr(err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storageErr(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}

	payload, err := json.Marshal(names)
	if err != nil {
		w.logger.Err(err).Msg("error converting channel names to JSON")
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	return StringResp{Value: string(payload)}, nil
}

func (w *worker) getChannelList(a GetChannelList) (Response, error) {
	list, err := w.queryOneChannelList(a.UserID, a.Name)
	if err != nil {
		return nil, err
	}

	return StringResp{Value: list.Data}, nil
}

func (w *worker) setChannelList(a SetChannelList) (Response, error) {
	query, args, err := updateChannelListQuery(a.UserID, a.Name, a.Data)
	if err != nil {
		return nil, storageErr(err)
	}

	res, err := w.conn.Exec(query, args...)
	if err != nil {
		w.logger.Err(err).Int64("user_id", a.UserID).Str("list", a.Name).
			Msg("error updating channel list")
		return nil, storageErr(err)
	}
	if err := exactlyOne(res); err != nil {
		return nil, err
	}

	return Empty{}, nil
}

func (w *worker) createChannelList(a CreateChannelList) (Response, error) {
	query, args, err := insertChannelListQuery(a.UserID, a.Name, models.NewChannelListData)
	if err != nil {
		return nil, storageErr(err)
	}

	res, err := w.conn.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			w.logger.Info().Int64("user_id", a.UserID).Str("list", a.Name).
				Msg("channel list already exists")
			return nil, ErrEntryExists
		}
		w.logger.Err(err).Int64("user_id", a.UserID).Str("list", a.Name).
			Msg("error creating channel list")
		return nil, storageErr(err)
	}
	if err := exactlyOne(res); err != nil {
		return nil, err
	}

	return Empty{}, nil
}

func (w *worker) getActiveChannel(a GetActiveChannel) (Response, error) {
	return w.activeChannelColumn(a.UserID, "data")
}

func (w *worker) getActiveChannelName(a GetActiveChannelName) (Response, error) {
	return w.activeChannelColumn(a.UserID, "name")
}

func (w *worker) activeChannelColumn(userID int64, column string) (Response, error) {
	query, args, err := selectActiveChannelQuery(userID, column)
	if err != nil {
		return nil, storageErr(err)
	}

	rows, err := w.conn.Query(query, args...)
	if err != nil {
		w.logger.Err(err).Int64("user_id", userID).Msg("error getting active channel")
		return nil, storageErr(err)
	}
	defer rows.Close()

	values := make([]string, 0, 1)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, storageErr(err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}

	if len(values) != 1 {
		return nil, &InvalidRowCountError{N: int64(len(values))}
	}

	return StringResp{Value: values[0]}, nil
}

func (w *worker) setActiveChannel(a SetActiveChannel) (Response, error) {
	list, err := w.queryOneChannelList(a.UserID, a.Name)
	if err != nil {
		return nil, err
	}

	query, args, err := setActiveChannelQuery(a.UserID, list.ID)
	if err != nil {
		return nil, storageErr(err)
	}

	res, err := w.conn.Exec(query, args...)
	if err != nil {
		w.logger.Err(err).Int64("user_id", a.UserID).Str("list", a.Name).
			Msg("error setting active channel")
		return nil, storageErr(err)
	}
	if err := exactlyOne(res); err != nil {
		return nil, err
	}

	return Empty{}, nil
}

// queryOneUser runs a user_data select and enforces the exactly-one-row
// expectation shared by every user lookup.
func (w *worker) queryOneUser(query string, args []any) (models.User, error) {
	rows, err := w.conn.Query(query, args...)
	if err != nil {
		w.logger.Err(err).Msg("error querying user")
		return models.User{}, storageErr(err)
	}
	defer rows.Close()

	users := make([]models.User, 0, 1)
	for rows.Next() {
		var u models.User
		var code sql.NullString
		var active sql.NullInt64
		if err := rows.Scan(&u.UserID, &u.Username, &u.PassHash, &u.HashVersion, &u.Validated, &code, &active); err != nil {
			return models.User{}, storageErr(err)
		}
		if code.Valid {
			u.ValidationCode = &code.String
		}
		if active.Valid {
			u.ActiveChannel = &active.Int64
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return models.User{}, storageErr(err)
	}

	if len(users) != 1 {
		return models.User{}, &InvalidRowCountError{N: int64(len(users))}
	}

	return users[0], nil
}

func (w *worker) querySessionKeys(query string, args []any) ([]models.SessionKey, error) {
	rows, err := w.conn.Query(query, args...)
	if err != nil {
		w.logger.Err(err).Msg("error querying session keys")
		return nil, storageErr(err)
	}
	defer rows.Close()

	keys := make([]models.SessionKey, 0, 1)
	for rows.Next() {
		var k models.SessionKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Key, &k.CreationTime, &k.LastUsedTime); err != nil {
			return nil, storageErr(err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}

	return keys, nil
}

func (w *worker) queryOneChannelList(userID int64, name string) (models.ChannelList, error) {
	query, args, err := selectChannelListQuery(userID, name)
	if err != nil {
		return models.ChannelList{}, storageErr(err)
	}

	rows, err := w.conn.Query(query, args...)
	if err != nil {
		w.logger.Err(err).Int64("user_id", userID).Str("list", name).
			Msg("error querying channel list")
		return models.ChannelList{}, storageErr(err)
	}
	defer rows.Close()

	lists := make([]models.ChannelList, 0, 1)
	for rows.Next() {
		var l models.ChannelList
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Data); err != nil {
			return models.ChannelList{}, storageErr(err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return models.ChannelList{}, storageErr(err)
	}

	if len(lists) != 1 {
		return models.ChannelList{}, &InvalidRowCountError{N: int64(len(lists))}
	}

	return lists[0], nil
}

// exactlyOne enforces the exact-row-count discipline on a DML result.
func exactlyOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n != 1 {
		return &InvalidRowCountError{N: n}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
