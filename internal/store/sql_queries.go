package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// All queries are built with squirrel using SQLite's ? placeholders. The
// session-key queries take the partition table name as data: the three
// class partitions share one shape, so the class descriptor selects the
// table instead of duplicating a code path per class.

func insertUserQuery(username, passHash string, hashVersion int, validationCode string) (string, []any, error) {
	return sq.Insert("user_data").
		Columns("username", "pass_hash", "pass_hash_type", "validation_status", "validation_code").
		Values(username, passHash, hashVersion, false, validationCode).
		ToSql()
}

func selectUserByValidationCodeQuery(code string) (string, []any, error) {
	return selectUsers().
		Where(sq.Eq{"validation_code": code}).
		ToSql()
}

func selectUserByRefQuery(ref UserRef) (string, []any, error) {
	q := selectUsers()
	if ref.ID != 0 {
		q = q.Where(sq.Eq{"id": ref.ID})
	} else {
		q = q.Where(sq.Eq{"username": ref.Name})
	}
	return q.ToSql()
}

func selectUserByNameQuery(username string) (string, []any, error) {
	return selectUsers().
		Where(sq.Eq{"username": username}).
		ToSql()
}

// selectUsers caps the row count at two: one row is the only valid outcome
// and two is already proof of ambiguity, so nothing larger is ever fetched.
func selectUsers() sq.SelectBuilder {
	return sq.Select("id", "username", "pass_hash", "pass_hash_type", "validation_status", "validation_code", "active_channel").
		From("user_data").
		Limit(2)
}

func markUserValidatedQuery(userID int64) (string, []any, error) {
	return sq.Update("user_data").
		Set("validation_status", true).
		Set("validation_code", nil).
		Where(sq.Eq{"id": userID}).
		ToSql()
}

func insertSessionKeyQuery(table string, userID int64, key string, now time.Time) (string, []any, error) {
	return sq.Insert(table).
		Columns("userid", "sesskey", "creationtime", "lastusedtime").
		Values(userID, key, now, now).
		ToSql()
}

func selectSessionKeyQuery(table, key string) (string, []any, error) {
	return sq.Select("id", "userid", "sesskey", "creationtime", "lastusedtime").
		From(table).
		Where(sq.Eq{"sesskey": key}).
		Limit(2).
		ToSql()
}

func touchSessionKeyQuery(table string, id int64, now time.Time) (string, []any, error) {
	return sq.Update(table).
		Set("lastusedtime", now).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func deleteSessionKeyByIDQuery(table string, id int64) (string, []any, error) {
	return sq.Delete(table).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func deleteSessionKeyQuery(table, key string) (string, []any, error) {
	return sq.Delete(table).
		Where(sq.Eq{"sesskey": key}).
		ToSql()
}

func selectChannelNamesQuery(userID int64) (string, []any, error) {
	return sq.Select("name").
		From("channel_list").
		Where(sq.Eq{"userid": userID}).
		OrderBy("name").
		ToSql()
}

func selectChannelListQuery(userID int64, name string) (string, []any, error) {
	return sq.Select("id", "userid", "name", "data").
		From("channel_list").
		Where(sq.Eq{"userid": userID, "name": name}).
		Limit(2).
		ToSql()
}

func insertChannelListQuery(userID int64, name, data string) (string, []any, error) {
	return sq.Insert("channel_list").
		Columns("userid", "name", "data").
		Values(userID, name, data).
		ToSql()
}

func updateChannelListQuery(userID int64, name, data string) (string, []any, error) {
	return sq.Update("channel_list").
		Set("data", data).
		Where(sq.Eq{"userid": userID, "name": name}).
		ToSql()
}

func selectActiveChannelQuery(userID int64, column string) (string, []any, error) {
	return sq.Select("cl."+column).
		From("channel_list cl").
		Join("user_data ud ON ud.active_channel = cl.id").
		Where(sq.Eq{"ud.id": userID}).
		Limit(2).
		ToSql()
}

func setActiveChannelQuery(userID, channelID int64) (string, []any, error) {
	return sq.Update("user_data").
		Set("active_channel", channelID).
		Where(sq.Eq{"id": userID}).
		ToSql()
}
