package shell

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/alexandrebha/cybook/circulation"
)

var (
	personNamePattern    = regexp.MustCompile(`^[\p{L} '-]+$`)
	postalAddressPattern = regexp.MustCompile(`^[\p{L}0-9 .,'/-]+$`)
	frenchPhonePattern   = regexp.MustCompile(`^(\+33[1-9]|0[1-9])(\d{2}){4}$`)
)

// userProfile carries the validation rules of the editable user fields.
type userProfile struct {
	LastName  string `validate:"required,personname"`
	FirstName string `validate:"required,personname"`
	Email     string `validate:"required,email"`
	Address   string `validate:"required,postaladdress"`
	Phone     string `validate:"required,frphone"`
}

// FieldError describes one invalid field.
type FieldError struct {
	Field string
	Rule  string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: fails %q", e.Field, e.Rule)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func profileValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		for tag, pattern := range map[string]*regexp.Regexp{
			"personname":    personNamePattern,
			"postaladdress": postalAddressPattern,
			"frphone":       frenchPhonePattern,
		} {
			_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return pattern.MatchString(fl.Field().String())
			})
		}
	})

	return validate
}

// NormalizeUser trims every profile field and brings names and the address to Unicode NFC.
// Spaces inside phone numbers are removed.
func NormalizeUser(user circulation.User) circulation.User {
	user.LastName = norm.NFC.String(strings.TrimSpace(user.LastName))
	user.FirstName = norm.NFC.String(strings.TrimSpace(user.FirstName))
	user.Email = strings.TrimSpace(user.Email)
	user.Address = norm.NFC.String(strings.TrimSpace(user.Address))
	user.Phone = strings.ReplaceAll(strings.TrimSpace(user.Phone), " ", "")

	return user
}

// ValidateUser normalizes the profile of user and checks it.
// Violations are returned as circulation.ErrValidation joined with one FieldError per invalid field.
func ValidateUser(user circulation.User) (circulation.User, error) {
	user = NormalizeUser(user)

	err := profileValidator().Struct(userProfile{
		LastName:  user.LastName,
		FirstName: user.FirstName,
		Email:     user.Email,
		Address:   user.Address,
		Phone:     user.Phone,
	})
	if err == nil {
		return user, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return user, errors.Join(circulation.ErrValidation, err)
	}

	errs := []error{circulation.ErrValidation}
	for _, fieldErr := range validationErrors {
		errs = append(errs, FieldError{Field: fieldErr.Field(), Rule: fieldErr.Tag()})
	}

	return user, errors.Join(errs...)
}

// FieldErrors extracts the FieldError values joined into err.
func FieldErrors(err error) []FieldError {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return nil
	}

	fieldErrors := make([]FieldError, 0)
	for _, e := range joined.Unwrap() {
		var fieldErr FieldError
		if errors.As(e, &fieldErr) {
			fieldErrors = append(fieldErrors, fieldErr)
		}
	}

	return fieldErrors
}

// ValidationDetails renders the invalid field names, e.g. "(invalid: Email, Phone)".
func ValidationDetails(err error) string {
	fieldErrors := FieldErrors(err)
	if len(fieldErrors) == 0 {
		return ""
	}

	names := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		names = append(names, fieldErr.Field)
	}

	return "(invalid: " + strings.Join(names, ", ") + ")"
}
