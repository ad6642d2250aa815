package model

import (
	"strconv"
	"strings"
	"time"
)

type User struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

func (u User) Ref() string {
	return strconv.FormatInt(u.ID, 10)
}

// Nickname is the full name as the chat shows it.
func (u User) Nickname() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName prefers the username, then the nickname, then the id.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if n := u.Nickname(); n != "" {
		return n
	}
	return u.Ref()
}
