package form

import (
	"net/url"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"blog-platform/internal/domain/entity"
)

// Password fields are never echoed back in *Invalid values.
var passwordFields = []string{"password", "password_confirm", "old_password"}

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxNameLength     = 150
)

var allDigits = regexp.MustCompile(`^[0-9]+$`)

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(minPasswordLength, maxPasswordLength).
			ErrorObject(validation.NewError("password_too_short", "password must be 8-128 characters")),
		validation.By(func(value interface{}) error {
			if s, _ := value.(string); allDigits.MatchString(s) {
				return validation.NewError("password_entirely_numeric", "password cannot be entirely numeric")
			}
			return nil
		}),
	}
}

func confirmRule(password *string) validation.Rule {
	return validation.By(func(value interface{}) error {
		if s, _ := value.(string); s != *password {
			return validation.NewError("password_mismatch", "the two password fields didn't match")
		}
		return nil
	})
}

// Register is the sign-up form.
type Register struct {
	values url.Values

	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// NewRegister binds values to a registration form.
func NewRegister(values url.Values) *Register {
	return &Register{
		values:          values,
		Username:        Text(values, "username"),
		Email:           Text(values, "email"),
		FirstName:       Text(values, "first_name"),
		LastName:        Text(values, "last_name"),
		Password:        values.Get("password"),
		PasswordConfirm: values.Get("password_confirm"),
	}
}

// Values returns the bound raw values.
func (f *Register) Values() url.Values { return f.values }

// Clean validates the form. It returns *Invalid on failure.
func (f *Register) Clean() error {
	return finish(f.values, validation.ValidateStruct(f,
		validation.Field(&f.Username, validation.By(func(v interface{}) error {
			s, _ := v.(string)
			return entity.ValidateUsername(s)
		})),
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
		validation.Field(&f.FirstName, validation.RuneLength(0, maxNameLength)),
		validation.Field(&f.LastName, validation.RuneLength(0, maxNameLength)),
		validation.Field(&f.Password, passwordRules()...),
		validation.Field(&f.PasswordConfirm, validation.Required, confirmRule(&f.Password)),
	), passwordFields...)
}

// Invalid builds an *Invalid for a failure found after Clean, such as a taken username.
func (f *Register) Invalid(field, code, message string) *Invalid {
	return Single(f.values, field, code, message, passwordFields...)
}

// Build returns an inactive user without a password hash.
func (f *Register) Build() *entity.User {
	return &entity.User{
		Username:  f.Username,
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
	}
}

// Login is the sign-in form.
type Login struct {
	values url.Values

	Username string `json:"username"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

// NewLogin binds values to a login form.
func NewLogin(values url.Values) *Login {
	return &Login{
		values:   values,
		Username: Text(values, "username"),
		Password: values.Get("password"),
		Next:     Text(values, "next"),
	}
}

// Clean validates the form. It returns *Invalid on failure.
func (f *Login) Clean() error {
	return finish(f.values, validation.ValidateStruct(f,
		validation.Field(&f.Username, validation.Required),
		validation.Field(&f.Password, validation.Required),
	), passwordFields...)
}

// Profile is the profile edit form.
type Profile struct {
	values url.Values

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// NewProfile binds values to a profile form.
func NewProfile(values url.Values) *Profile {
	return &Profile{
		values:    values,
		FirstName: Text(values, "first_name"),
		LastName:  Text(values, "last_name"),
		Email:     Text(values, "email"),
	}
}

// Clean validates the form. It returns *Invalid on failure.
func (f *Profile) Clean() error {
	return finish(f.values, validation.ValidateStruct(f,
		validation.Field(&f.FirstName, validation.RuneLength(0, maxNameLength)),
		validation.Field(&f.LastName, validation.RuneLength(0, maxNameLength)),
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
	))
}

// ApplyTo overwrites the cleaned fields of u.
func (f *Profile) ApplyTo(u *entity.User) {
	u.FirstName = f.FirstName
	u.LastName = f.LastName
	u.Email = f.Email
}

// Password is the password change form. The old password is checked by the caller.
type Password struct {
	values url.Values

	OldPassword     string `json:"old_password"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// NewPassword binds values to a password change form.
func NewPassword(values url.Values) *Password {
	return &Password{
		values:          values,
		OldPassword:     values.Get("old_password"),
		Password:        values.Get("password"),
		PasswordConfirm: values.Get("password_confirm"),
	}
}

// Clean validates the form. It returns *Invalid on failure.
func (f *Password) Clean() error {
	return finish(f.values, validation.ValidateStruct(f,
		validation.Field(&f.OldPassword, validation.Required),
		validation.Field(&f.Password, passwordRules()...),
		validation.Field(&f.PasswordConfirm, validation.Required, confirmRule(&f.Password)),
	), passwordFields...)
}

// Invalid builds an *Invalid for a failure found after Clean, such as a wrong old password.
func (f *Password) Invalid(field, code, message string) *Invalid {
	return Single(f.values, field, code, message, passwordFields...)
}
