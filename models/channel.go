package models

// ChannelList is one row from the channel_list table. Data is the list
// payload as a JSON document; the server treats it as opaque except for the
// Roku XML rendering path.
type ChannelList struct {
	ID     int64
	UserID int64
	Name   string
	Data   string
}

// NewChannelListData is the payload a freshly created channel list starts
// with.
const NewChannelListData = `{"entries": []}`
