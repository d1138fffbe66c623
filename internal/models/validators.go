package models

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// MinimumTitleYear is the earliest accepted creation year, the age of the
// first known work of art.
const MinimumTitleYear = -500000

// ReservedUsername cannot be registered; it is the self-profile endpoint path.
const ReservedUsername = "me"

var (
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ValidateTitleYear checks that year falls in [MinimumTitleYear, current year].
func ValidateTitleYear(year int) error {
	currentYear := time.Now().Year()
	if year < MinimumTitleYear || year > currentYear {
		return NewFieldError("year", fmt.Sprintf(
			"The year value must be between %d and %d", MinimumTitleYear, currentYear))
	}
	return nil
}

// ValidateUsername rejects empty, malformed and reserved usernames.
func ValidateUsername(username string) error {
	if username == "" {
		return NewFieldError("username", "Username is required")
	}
	if len(username) > 150 || !usernameRe.MatchString(username) {
		return NewFieldError("username", "Username may contain only letters, digits and @/./+/-/_ characters")
	}
	if strings.EqualFold(username, ReservedUsername) {
		return NewFieldError("username", "Username 'me' is reserved, please choose another one")
	}
	return nil
}

// ValidateEmail checks that the address parses per RFC 5322.
func ValidateEmail(email string) error {
	if email == "" {
		return NewFieldError("email", "Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return NewFieldError("email", "Enter a valid email address")
	}
	return nil
}

// ValidateSlug checks the slug charset shared by categories and genres.
func ValidateSlug(slug string) error {
	if slug == "" {
		return NewFieldError("slug", "Slug is required")
	}
	if len(slug) > 50 || !slugRe.MatchString(slug) {
		return NewFieldError("slug", "Slug may contain only letters, digits, hyphens and underscores")
	}
	return nil
}

// ValidateScore checks the review score bounds.
func ValidateScore(score int) error {
	if score < 1 || score > 10 {
		return NewFieldError("score", "Score must be between 1 and 10")
	}
	return nil
}

// ValidateRole checks that role is one of the known tiers.
func ValidateRole(role string) error {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return nil
	}
	return NewFieldError("role", "Role must be one of user, moderator, admin")
}
