package models

import "time"

// SessionClass distinguishes the client categories that hold sessions.
// Each class has its own partition table, cookie name, and maximum key
// lifetime, looked up through Info. The set is fixed; adding a class means
// adding a descriptor row and a partition table migration, not new code
// paths.
type SessionClass int

const (
	// SessFrontend is the browser client. Its sessions ride a cookie and
	// cannot be refreshed; the browser re-authenticates instead.
	SessFrontend SessionClass = iota

	// SessRoku is the set-top-box client. It cannot hold cookies, so it
	// receives the token in the authenticate response body, and refreshes
	// its long-lived key.
	SessRoku

	// SessDisplay is the wall-display client, cookie-capable but unattended,
	// so like Roku it refreshes its key rather than re-authenticating.
	SessDisplay
)

// SessionClassInfo is the descriptor attached to each class.
type SessionClassInfo struct {
	// Name labels the class in logs and errors.
	Name string

	// Table is the session-key partition table for this class.
	Table string

	// CookieName is the externally visible cookie carrying the token.
	CookieName string

	// MaxAge is the maximum lifetime of a key of this class. A key older
	// than this is deleted on its next validation attempt.
	MaxAge time.Duration

	// Refreshable reports whether the class may exchange a live key for a
	// fresh one without re-authenticating.
	Refreshable bool
}

var sessionClasses = map[SessionClass]SessionClassInfo{
	SessFrontend: {
		Name:        "frontend",
		Table:       "front_end_sess_keys",
		CookieName:  "session",
		MaxAge:      5 * 24 * time.Hour,
		Refreshable: false,
	},
	SessRoku: {
		Name:        "roku",
		Table:       "roku_sess_keys",
		CookieName:  "roku_session",
		MaxAge:      365 * 24 * time.Hour,
		Refreshable: true,
	},
	SessDisplay: {
		Name:        "display",
		Table:       "display_sess_keys",
		CookieName:  "display_session",
		MaxAge:      30 * 24 * time.Hour,
		Refreshable: true,
	},
}

// Info returns the descriptor for the class. It panics on an unknown class
// value: classes only enter the program through the fixed constants above,
// so an unknown value is a programming error, not input.
func (c SessionClass) Info() SessionClassInfo {
	info, ok := sessionClasses[c]
	if !ok {
		panic("unknown session class")
	}
	return info
}

// Valid reports whether c is one of the declared classes.
func (c SessionClass) Valid() bool {
	_, ok := sessionClasses[c]
	return ok
}

// String implements fmt.Stringer using the descriptor name.
func (c SessionClass) String() string {
	if info, ok := sessionClasses[c]; ok {
		return info.Name
	}
	return "unknown"
}
