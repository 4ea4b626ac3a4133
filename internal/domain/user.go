// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// UserID is the relay-assigned identifier of a participant.
// IDs are opaque strings under a total byte-wise ordering; see Less.
type UserID string

// ValidateUsername keeps all naming rules in one place.
func ValidateUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
