package models

// User is one account row from the user_data table.
//
// ValidationCode is only present between registration and successful email
// validation; it is cleared (set to NULL) the moment the account becomes
// validated. ActiveChannel references the channel_list row the user marked
// active, if any.
type User struct {
	UserID         int64
	Username       string
	PassHash       string
	HashVersion    int
	Validated      bool
	ValidationCode *string
	ActiveChannel  *int64
}
