package auth

import (
	"errors"
)

type AuthDB struct {
	UserDB
}

var ErrEmptyPassword = errors.New("refusing to set empty password")

// SetPassword shadows AuthDB.UserDB.SetPassword.
func (a *AuthDB) SetPassword(u User, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	return a.UserDB.SetPassword(u, password)
}

// ChangePassword shadows AuthDB.UserDB.ChangePassword.
// The old password is verified by the UserDB before the new one is accepted.
func (a *AuthDB) ChangePassword(u User, old, new string) error {
	if new == "" {
		return ErrEmptyPassword
	}
	return a.UserDB.ChangePassword(u, old, new)
}
