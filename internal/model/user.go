package model

import "time"

// UserID uniquely identifies a registered user
type UserID string

// User is a registered account
type User struct {
	ID           UserID
	Username     string
	Email        string // stored lower-cased
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}
