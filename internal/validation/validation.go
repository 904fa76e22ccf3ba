package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("username must be at most 150 characters")
	ErrUsernameFormat   = errors.New("username contains forbidden characters")
	ErrUsernameReserved = errors.New(`username "me" is reserved`)
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailTooLong     = errors.New("email must be at most 254 characters")
	ErrEmailFormat      = errors.New("email is not a valid address")
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// Username enforces the account-name contract: word characters plus
// ".@+-", at most 150 characters, and never "me" in any casing.
func Username(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if len(username) > 150 {
		return ErrUsernameTooLong
	}
	if !usernameRe.MatchString(username) {
		return ErrUsernameFormat
	}
	if strings.EqualFold(username, "me") {
		return ErrUsernameReserved
	}
	return nil
}

func Email(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrEmailTooLong
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrEmailFormat
	}
	return nil
}

// Year rejects release years in the future. The bound is the calendar
// year at call time, not a constant.
func Year(year int) error {
	if year < 0 {
		return errors.New("year must not be negative")
	}
	if current := time.Now().Year(); year > current {
		return fmt.Errorf("year must not be greater than %d", current)
	}
	return nil
}

func Score(score int) error {
	if score < 1 || score > 10 {
		return errors.New("score must be between 1 and 10")
	}
	return nil
}

// Slug follows the dictionary-entity contract: required, short, and
// limited to lowercase word characters and hyphens.
var slugRe = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func Slug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}
	if len(slug) > 50 {
		return errors.New("slug must be at most 50 characters")
	}
	if !slugRe.MatchString(slug) {
		return errors.New("slug contains forbidden characters")
	}
	return nil
}

func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}
