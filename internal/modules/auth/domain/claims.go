package domain

import "time"

// Claims are the verified contents of a bearer token.
type Claims struct {
	UserID    string
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
