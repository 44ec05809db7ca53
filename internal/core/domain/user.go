package domain

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Role is the capability tier of a user. The zero value is the anonymous
// caller.
type Role string

const (
	RoleAnonymous Role = ""
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

const (
	ReservedUsername = "me"
	MaxUsernameLen   = 150
	MaxEmailLen      = 254
	MaxPersonNameLen = 150
)

// Word characters are matched the Unicode way, so "José" is a valid username.
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var emailValidator = validator.New()

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool     { return r == RoleAdmin }
func (r Role) IsModerator() bool { return r == RoleModerator }

// User is an account in the identity store.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ConfirmationHash is the bcrypt hash of the active confirmation code.
	ConfirmationHash string `json:"-"`
}

// Principal is the authenticated identity attached to a request. The zero
// value is an anonymous caller.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) Authenticated() bool { return p.UserID != "" }

// ValidateUsername checks pattern, length and the reserved value. "me" would
// shadow the self-profile route, so it is rejected for admin-created users too.
func ValidateUsername(username string, ve *ValidationError) {
	switch {
	case username == "":
		ve.Add("username", "this field is required")
	case utf8.RuneCountInString(username) > MaxUsernameLen:
		ve.Add("username", "ensure this field has no more than 150 characters")
	case !usernamePattern.MatchString(username):
		ve.Add("username", "enter a valid username: letters, digits and @/./+/-/_ only")
	case username == ReservedUsername:
		ve.Add("username", `username "me" is reserved`)
	}
}

func ValidateEmail(email string, ve *ValidationError) {
	switch {
	case email == "":
		ve.Add("email", "this field is required")
	case len(email) > MaxEmailLen:
		ve.Add("email", "ensure this field has no more than 254 characters")
	case emailValidator.Var(email, "email") != nil:
		ve.Add("email", "enter a valid email address")
	}
}

// ValidateProfile checks the optional free-text fields of a user.
func ValidateProfile(firstName, lastName string, ve *ValidationError) {
	if utf8.RuneCountInString(firstName) > MaxPersonNameLen {
		ve.Add("first_name", "ensure this field has no more than 150 characters")
	}
	if utf8.RuneCountInString(lastName) > MaxPersonNameLen {
		ve.Add("last_name", "ensure this field has no more than 150 characters")
	}
}

func ValidateRole(role Role, ve *ValidationError) {
	if !role.Valid() {
		ve.Add("role", "must be one of: user, moderator, admin")
	}
}
