package models

import "time"

// User is an account able to open sessions. PasswordHash is an argon2id PHC string.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
