package validation

import (
	"regexp"
	"strings"

	"github.com/dtroode/authkeeper/internal/model"
)

var (
	emailRe         = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	nameRe          = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	usernameRe      = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	usernameStartRe = regexp.MustCompile(`^[a-zA-Z0-9]`)
	lowerRe         = regexp.MustCompile(`[a-z]`)
	upperRe         = regexp.MustCompile(`[A-Z]`)
	digitRe         = regexp.MustCompile(`\d`)
)

var commonPasswordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`123456`),
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)qwerty`),
	regexp.MustCompile(`(?i)abc123`),
	regexp.MustCompile(`(?i)admin`),
}

var reservedUsernames = map[string]struct{}{
	"admin": {}, "root": {}, "user": {}, "test": {}, "guest": {},
	"api": {}, "www": {}, "mail": {}, "email": {}, "support": {},
	"help": {}, "info": {}, "contact": {}, "service": {}, "system": {},
	"null": {}, "undefined": {},
}

// NormalizeEmail trims and lowercases an email for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims and lowercases a username for lookups and storage.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Email validates an email address shape.
func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.NewErrValidation("email", "email is required")
	}
	if len(email) > 254 {
		return model.NewErrValidation("email", "email address is too long")
	}
	if !emailRe.MatchString(email) {
		return model.NewErrValidation("email", "please provide a valid email address")
	}
	return nil
}

// Password validates password strength for sign-up.
func Password(password string) error {
	if password == "" {
		return model.NewErrValidation("password", "password is required")
	}
	if len(password) < 8 {
		return model.NewErrValidation("password", "password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return model.NewErrValidation("password", "password must not exceed 128 characters")
	}
	if !lowerRe.MatchString(password) {
		return model.NewErrValidation("password", "password must contain at least one lowercase letter")
	}
	if !upperRe.MatchString(password) {
		return model.NewErrValidation("password", "password must contain at least one uppercase letter")
	}
	if !digitRe.MatchString(password) {
		return model.NewErrValidation("password", "password must contain at least one number")
	}
	for _, re := range commonPasswordPatterns {
		if re.MatchString(password) {
			return model.NewErrValidation("password", "password contains common patterns and is not secure")
		}
	}
	return nil
}

// Name validates a display name.
func Name(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.NewErrValidation("name", "name is required")
	}
	if len(name) < 2 {
		return model.NewErrValidation("name", "name must be at least 2 characters long")
	}
	if len(name) > 50 {
		return model.NewErrValidation("name", "name must not exceed 50 characters")
	}
	if !nameRe.MatchString(name) {
		return model.NewErrValidation("name", "name can only contain letters, spaces, hyphens, and apostrophes")
	}
	return nil
}

// Username validates a username.
func Username(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.NewErrValidation("username", "username is required")
	}
	if len(username) < 3 {
		return model.NewErrValidation("username", "username must be at least 3 characters long")
	}
	if len(username) > 30 {
		return model.NewErrValidation("username", "username must not exceed 30 characters")
	}
	if !usernameRe.MatchString(username) {
		return model.NewErrValidation("username", "username can only contain letters, numbers, underscores, and hyphens")
	}
	if !usernameStartRe.MatchString(username) {
		return model.NewErrValidation("username", "username must start with a letter or number")
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return model.NewErrValidation("username", "this username is reserved and cannot be used")
	}
	return nil
}

// SignUpInput validates the full sign-up payload.
func SignUpInput(name, username, email, password string) error {
	if err := Name(name); err != nil {
		return err
	}
	if err := Username(username); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	return Password(password)
}

// SignInInput validates the sign-in payload shape: presence only, no
// strength checking on an existing password.
func SignInInput(email, password string) error {
	if err := Email(email); err != nil {
		return err
	}
	if strings.TrimSpace(password) == "" {
		return model.NewErrValidation("password", "password is required")
	}
	return nil
}
