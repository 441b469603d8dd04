package hash

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordLength  = errors.New("password must be between 8 and 100 characters")
	ErrPasswordDigit   = errors.New("password must contain a digit")
	ErrPasswordUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordLower   = errors.New("password must contain a lowercase letter")
	ErrPasswordSpecial = errors.New("password must contain a non-alphanumeric character")
)

// dummyHash is compared against when the user does not exist so that a miss
// costs the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func ValidatePassword(password string) error {
	n := len([]rune(password))
	if n < 8 || n > 100 {
		return ErrPasswordLength
	}

	var digit, upper, lower, special bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case !unicode.IsLetter(r):
			special = true
		}
	}

	switch {
	case !digit:
		return ErrPasswordDigit
	case !upper:
		return ErrPasswordUpper
	case !lower:
		return ErrPasswordLower
	case !special:
		return ErrPasswordSpecial
	}
	return nil
}
