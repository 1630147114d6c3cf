// Package account signs new users up with the record store.
package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"eventplanner/internal/models"
	"eventplanner/internal/pocketbase"
	"eventplanner/internal/session"
)

var (
	ErrMissingFields = errors.New("please fill in all fields")
	ErrInvalidEmail  = errors.New("please enter a valid e-mail address")
	ErrWeakPassword  = errors.New("the password does not meet the requirements")
)

// Requirement is one rule a password must satisfy.
type Requirement struct {
	Label string
	re    *regexp.Regexp
}

// PasswordRequirements are checked in this order and all must hold.
var PasswordRequirements = []Requirement{
	{Label: "a digit", re: regexp.MustCompile(`[0-9]`)},
	{Label: "a lowercase letter", re: regexp.MustCompile(`[a-z]`)},
	{Label: "an uppercase letter", re: regexp.MustCompile(`[A-Z]`)},
	{Label: "a special character", re: regexp.MustCompile(`[$&+,:;=?@#|'<>.^*()%!-]`)},
}

// UnmetRequirements lists the labels of the rules password breaks.
func UnmetRequirements(password string) []string {
	var unmet []string
	for _, r := range PasswordRequirements {
		if !r.re.MatchString(password) {
			unmet = append(unmet, r.Label)
		}
	}
	return unmet
}

// Registration is what a new user fills in.
type Registration struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	Name     string `validate:"required"`
	Surname  string `validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return len(UnmetRequirements(fl.Field().String())) == 0
	})
	return v
}

// Validate reports the first problem in the order a form shows them: empty
// fields, then the e-mail format, then password strength.
func (r Registration) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate registration: %w", err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return ErrMissingFields
		}
	}
	for _, fe := range fieldErrs {
		if fe.StructField() == "Email" {
			return ErrInvalidEmail
		}
	}
	return ErrWeakPassword
}

// Registrar is the subset of the record store sign-up needs.
type Registrar interface {
	CreateUser(ctx context.Context, u pocketbase.NewUser) (*models.User, error)
	AuthWithPassword(ctx context.Context, identity, password string) (*pocketbase.AuthResponse, error)
}

// Register validates r, creates the user and logs them in. Nothing is sent
// when r does not validate.
func Register(ctx context.Context, store Registrar, r Registration) (*session.Session, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := store.CreateUser(ctx, pocketbase.NewUser{
		Username:        r.Username,
		Email:           r.Email,
		EmailVisibility: true,
		Password:        r.Password,
		PasswordConfirm: r.Password,
		Name:            r.Name,
		Surname:         r.Surname,
	}); err != nil {
		return nil, err
	}
	auth, err := store.AuthWithPassword(ctx, r.Email, r.Password)
	if err != nil {
		return nil, fmt.Errorf("account created but login failed: %w", err)
	}
	return session.New(auth.Token, auth.Record), nil
}
