package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Password length limits. bcrypt silently truncates inputs past 72 bytes, so
// longer passwords are rejected instead of being hashed truncated.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var (
	ErrPasswordTooShort = errors.New("auth: password shorter than 8 characters")
	ErrPasswordTooLong  = errors.New("auth: password longer than 72 characters")
	ErrWrongPassword    = errors.New("auth: wrong password")
)

func (a *authImpl) HashPassword(plaintext string) (string, error) {
	if len(plaintext) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(plaintext) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *authImpl) VerifyPassword(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrWrongPassword
		}
		return err
	}
	return nil
}
