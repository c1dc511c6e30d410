package model

import (
	"strconv"
	"strings"
)

// Destination is the monitoring chat. The zero value means none is configured.
type Destination struct {
	ChatID   int64
	Username string
}

func (d Destination) IsZero() bool { return d.ChatID == 0 && d.Username == "" }

// Matches reports whether a chat identified by id and username is this destination.
func (d Destination) Matches(chatID int64, username string) bool {
	if d.IsZero() {
		return false
	}
	if d.ChatID != 0 {
		return d.ChatID == chatID
	}
	return username != "" && strings.EqualFold(strings.TrimPrefix(d.Username, "@"), strings.TrimPrefix(username, "@"))
}

func (d Destination) String() string {
	if d.ChatID != 0 {
		return strconv.FormatInt(d.ChatID, 10)
	}
	return d.Username
}
