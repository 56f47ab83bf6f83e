package store

import (
	"github.com/mkarpenko/streamhub/models"
)

// Action is the closed set of commands the store worker executes. Each
// variant carries every input its operation needs; a command is paired with
// a one-shot reply channel and queued to the single worker goroutine, which
// executes commands strictly in arrival order.
//
// The marker method keeps the set sealed: only this package can add
// variants, so the worker's dispatch switch stays exhaustive.
type Action interface {
	isAction()

	// name labels the action in logs and in the per-action counters of the
	// status report.
	name() string
}

// Response is the closed set of successful command outcomes. Every action
// produces exactly one meaningful response variant; callers must treat any
// other variant as an internal error, never as a silent default.
type Response interface {
	isResponse()
}

// UserRef identifies a user row either by id (preferred when non-zero) or
// by username.
type UserRef struct {
	ID   int64
	Name string
}

// AddUser inserts a new, not-yet-validated account. Responds with UserID.
// Fails with ErrEntryExists when the username is already taken.
type AddUser struct {
	Username       string
	PassHash       string
	HashVersion    int
	ValidationCode string
}

// ValidateAccount marks the account holding this validation code as
// validated and clears the code. Responds with Bool{OK: true}. Zero or
// multiple matching rows fail with InvalidRowCountError.
type ValidateAccount struct {
	Code string
}

// AddSessionKey records a freshly issued session key in the class's
// partition table. The user reference must resolve to exactly one row.
// Responds with Empty.
type AddSessionKey struct {
	User  UserRef
	Class models.SessionClass
	Key   string
}

// ValidateSessionKey checks a presented token against the class's
// partition. Responds with ValidatedKey: (true, user id) for a live key,
// updating its last-used time, or (false, 0) when the token is unknown or
// has exceeded the class's maximum age, in which case the row is deleted in
// the same command execution.
type ValidateSessionKey struct {
	Class models.SessionClass
	Key   string
}

// LogoutSessionKey deletes a session key from the class's partition.
// Responds with Empty; a missing key is not an error.
type LogoutSessionKey struct {
	Class models.SessionClass
	Key   string
}

// GetUserPassHash looks up the stored credential for a username. Responds
// with UserPassHash. Exactly one row must match.
type GetUserPassHash struct {
	Username string
}

// GetChannelLists returns the names of all channel lists owned by the user,
// as a JSON array. Responds with StringResp.
type GetChannelLists struct {
	UserID int64
}

// GetChannelList returns one channel list's payload. Responds with
// StringResp. Exactly one row must match.
type GetChannelList struct {
	UserID int64
	Name   string
}

// SetChannelList replaces one channel list's payload in place. Responds
// with Empty. Exactly one row must be updated.
type SetChannelList struct {
	UserID int64
	Name   string
	Data   string
}

// CreateChannelList creates an empty channel list. Responds with Empty.
// Fails with ErrEntryExists when the user already has a list of that name.
type CreateChannelList struct {
	UserID int64
	Name   string
}

// GetActiveChannel returns the payload of the user's active channel list.
// Responds with StringResp.
type GetActiveChannel struct {
	UserID int64
}

// GetActiveChannelName returns the name of the user's active channel list.
// Responds with StringResp.
type GetActiveChannelName struct {
	UserID int64
}

// SetActiveChannel points the user's active-list reference at the named
// channel list. Responds with Empty.
type SetActiveChannel struct {
	UserID int64
	Name   string
}

// GetStatusReport returns a snapshot of the worker's per-action counters.
// Responds with StatusReport.
type GetStatusReport struct{}

// Shutdown stops the worker loop after the reply is delivered. Commands
// already queued ahead of it are still executed; submissions after it fail
// with ErrStoreClosed.
type Shutdown struct{}

func (AddUser) isAction()              {}
func (ValidateAccount) isAction()      {}
func (AddSessionKey) isAction()        {}
func (ValidateSessionKey) isAction()   {}
func (LogoutSessionKey) isAction()     {}
func (GetUserPassHash) isAction()      {}
func (GetChannelLists) isAction()      {}
func (GetChannelList) isAction()       {}
func (SetChannelList) isAction()       {}
func (CreateChannelList) isAction()    {}
func (GetActiveChannel) isAction()     {}
func (GetActiveChannelName) isAction() {}
func (SetActiveChannel) isAction()     {}
func (GetStatusReport) isAction()      {}
func (Shutdown) isAction()             {}

func (AddUser) name() string              { return "AddUser" }
func (ValidateAccount) name() string      { return "ValidateAccount" }
func (AddSessionKey) name() string        { return "AddSessionKey" }
func (ValidateSessionKey) name() string   { return "ValidateSessionKey" }
func (LogoutSessionKey) name() string     { return "LogoutSessionKey" }
func (GetUserPassHash) name() string      { return "GetUserPassHash" }
func (GetChannelLists) name() string      { return "GetChannelLists" }
func (GetChannelList) name() string       { return "GetChannelList" }
func (SetChannelList) name() string       { return "SetChannelList" }
func (CreateChannelList) name() string    { return "CreateChannelList" }
func (GetActiveChannel) name() string     { return "GetActiveChannel" }
func (GetActiveChannelName) name() string { return "GetActiveChannelName" }
func (SetActiveChannel) name() string     { return "SetActiveChannel" }
func (GetStatusReport) name() string      { return "GetStatusReport" }
func (Shutdown) name() string             { return "Shutdown" }

// Empty is the response of commands with no payload to return.
type Empty struct{}

// Bool carries a single boolean outcome.
type Bool struct {
	OK bool
}

// StringResp carries a single string payload (a list's JSON document, a
// JSON array of names, or a list name).
type StringResp struct {
	Value string
}

// UserID carries the id of a newly created user row.
type UserID struct {
	ID int64
}

// ValidatedKey is the outcome of ValidateSessionKey. When Valid is false,
// UserID is always zero.
type ValidatedKey struct {
	Valid  bool
	UserID int64
}

// UserPassHash carries a stored credential: the hash string, the hash
// version that produced it, and the account's validation status.
type UserPassHash struct {
	Hash      string
	Version   int
	Validated bool
}

// StatusReport carries a snapshot of the worker's per-action counters.
type StatusReport struct {
	Report models.StatusReport
}

func (Empty) isResponse()        {}
func (Bool) isResponse()         {}
func (StringResp) isResponse()   {}
func (UserID) isResponse()       {}
func (ValidatedKey) isResponse() {}
func (UserPassHash) isResponse() {}
func (StatusReport) isResponse() {}
