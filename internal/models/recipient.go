package models

import (
	"fmt"
	"time"
)

// Recipient is an account that can log in and view its own payment records.
// PasswordHash is a bcrypt hash; the plain password never reaches the store.
type Recipient struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks a recipient before it is sent to the store.
func (rc *Recipient) Validate() error {
	if rc.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !ValidEmail(rc.Email) {
		return fmt.Errorf("email is not a valid email address")
	}
	if rc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if rc.PasswordHash == "" {
		return fmt.Errorf("password_hash is required")
	}
	return nil
}
