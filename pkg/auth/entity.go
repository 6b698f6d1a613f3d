package auth

import "time"

// User is a domain entity representing a registered principal.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	JoinedAt     time.Time
}

// Identity is what a verified caller is known by.
type Identity struct {
	ID       string
	Username string
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}
