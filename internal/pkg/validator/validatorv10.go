package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"

	"github.com/campusconnect/loginflow/internal/pkg/strcase"
)

// passwordSymbols is the punctuation set of which at least one character is
// required in a password.
const passwordSymbols = "!@#$%^&*()_+-=[]{};':\",.<>/?\\|`~"

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// Validator validates structs and returns field-level error maps.
type Validator interface {
	Validate(data any) error
}

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match typical JSON conventions.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and the
// campus signup rules. allowedDomains is the campus email domain allow-list
// (compared case-insensitively).
func NewV10Validator(allowedDomains []string) (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerCampusRules(validate, enTrans, allowedDomains); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		errV10 := make(V10ValidationError)
		for _, fe := range validateErrs {
			errV10[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
		}

		return errV10
	}

	return nil
}

func registerCampusRules(validate *validator.Validate, enTrans ut.Translator, allowedDomains []string) error {
	domains := lo.Map(allowedDomains, func(d string, _ int) string {
		return strings.ToLower(strings.TrimSpace(d))
	})

	rules := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{
			tag: "campusemail",
			fn: func(fl validator.FieldLevel) bool {
				email, ok := fl.Field().Interface().(string)
				if !ok {
					return false
				}

				at := strings.LastIndex(email, "@")
				if at < 0 {
					return false
				}

				return lo.Contains(domains, strings.ToLower(email[at+1:]))
			},
			message: "{0} must be from an approved campus domain: " + strings.Join(allowedDomains, ", "),
		},
		{
			tag: "strongpassword",
			fn: func(fl validator.FieldLevel) bool {
				p, ok := fl.Field().Interface().(string)
				if !ok {
					return false
				}

				return strongPassword(p)
			},
			message: "{0} must be at least 8 characters with a lowercase letter, an uppercase letter, a digit, and a symbol",
		},
		{
			tag: "loosephone",
			fn: func(fl validator.FieldLevel) bool {
				p, ok := fl.Field().Interface().(string)
				if !ok {
					return false
				}

				return loosePhone(p)
			},
			message: "{0} must be a valid phone number with at least 10 digits",
		},
		{
			tag: "notblank",
			fn: func(fl validator.FieldLevel) bool {
				s, ok := fl.Field().Interface().(string)
				if !ok {
					return false
				}

				return strings.TrimSpace(s) != ""
			},
			message: "{0} is required",
		},
	}

	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.fn); err != nil {
			return err
		}

		msg := r.message
		err := validate.RegisterTranslation(r.tag, enTrans,
			func(t ut.Translator) error {
				return t.Add(r.tag, msg, true)
			},
			func(t ut.Translator, fe validator.FieldError) string {
				out, err := t.T(fe.Tag(), strcase.ToLowerSnake(fe.Field()))
				if err != nil {
					return fe.Error()
				}
				return out
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func strongPassword(p string) bool {
	if len(p) < 8 {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	return lower && upper && digit && symbol
}

func loosePhone(p string) bool {
	digits := 0
	for i, r := range p {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '(' || r == ')':
		case r == '+' && i == 0:
		default:
			return false
		}
	}

	return digits >= 10
}
