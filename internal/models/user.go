package models

import "time"

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Job          string     `json:"job"`
	Interests    string     `json:"interests"`
	Avatar       string     `json:"avatar"`
	Online       bool       `json:"online"`
	Location     *Location  `json:"location,omitempty"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Locatable reports whether the user has pushed a usable position.
func (u *User) Locatable() bool {
	return u.Location != nil
}
