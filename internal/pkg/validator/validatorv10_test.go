package validator

import (
	"errors"
	"strings"
	"testing"
)

var testDomains = []string{"student.university.edu", "university.edu", "campus.edu", "college.edu"}

type signupForm struct {
	Email           string `validate:"required,email,campusemail"`
	Password        string `validate:"required,strongpassword"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	FirstName       string `validate:"required,notblank,max=50"`
	Phone           string `validate:"omitempty,loosephone"`
}

func newValidator(t *testing.T) *V10Validator {
	t.Helper()

	v, err := NewV10Validator(testDomains)
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}
	return v
}

func TestV10Validator_ValidInput(t *testing.T) {
	// Arrange
	v := newValidator(t)

	// Act
	err := v.Validate(signupForm{
		Email:           "jane@campus.edu",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
		FirstName:       "Jane",
		Phone:           "+1 (555) 123-4567",
	})

	// Assert
	if err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestV10Validator_SnakeCaseKeys(t *testing.T) {
	// Arrange
	v := newValidator(t)

	// Act
	err := v.Validate(signupForm{
		Email:           "jane@campus.edu",
		Password:        "Str0ng!pass",
		ConfirmPassword: "different",
		FirstName:       "Jane",
	})

	// Assert
	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want V10ValidationError", err)
	}
	if _, ok := verr["confirm_password"]; !ok {
		t.Fatalf("error keys = %v, want snake_case confirm_password", verr)
	}
}

func TestV10Validator_CampusEmail(t *testing.T) {
	// Arrange
	v := newValidator(t)

	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"allowed student domain", "jane@student.university.edu", true},
		{"allowed plain domain", "jane@campus.edu", true},
		{"case insensitive domain", "jane@Campus.EDU", true},
		{"public provider", "jane@gmail.com", false},
		{"subdomain of allowed is not allowed", "jane@mail.campus.edu", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := v.Validate(struct {
				Email string `validate:"required,email,campusemail"`
			}{tt.email})

			// Assert
			if tt.valid && err != nil {
				t.Fatalf("Validate(%q) error = %v, want nil", tt.email, err)
			}
			if !tt.valid {
				var verr V10ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("Validate(%q) error = %v, want V10ValidationError", tt.email, err)
				}
				if msg := verr["email"]; !strings.Contains(msg, "approved campus domain") {
					t.Fatalf("email message = %q, want allow-list message", msg)
				}
			}
		})
	}
}

func TestV10Validator_StrongPassword(t *testing.T) {
	// Arrange
	v := newValidator(t)

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"all classes", "Str0ng!pass", true},
		{"too short", "St0!a", false},
		{"no uppercase", "str0ng!pass", false},
		{"no digit", "Strong!pass", false},
		{"no symbol", "Str0ngpass", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := v.Validate(struct {
				Password string `validate:"required,strongpassword"`
			}{tt.password})

			// Assert
			if got := err == nil; got != tt.valid {
				t.Fatalf("Validate(%q) valid = %t, want %t (err: %v)", tt.password, got, tt.valid, err)
			}
		})
	}
}

func TestV10Validator_LoosePhone(t *testing.T) {
	// Arrange
	v := newValidator(t)

	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{"formatted", "+1 (555) 123-4567", true},
		{"bare digits", "5551234567", true},
		{"too few digits", "555-1234", false},
		{"letters", "call-me-maybe", false},
		{"plus not leading", "555+1234567890", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := v.Validate(struct {
				Phone string `validate:"required,loosephone"`
			}{tt.phone})

			// Assert
			if got := err == nil; got != tt.valid {
				t.Fatalf("Validate(%q) valid = %t, want %t (err: %v)", tt.phone, got, tt.valid, err)
			}
		})
	}
}

func TestV10Validator_NotBlank(t *testing.T) {
	// Arrange
	v := newValidator(t)

	// Act: whitespace passes required but not notblank.
	err := v.Validate(struct {
		FirstName string `validate:"required,notblank"`
	}{"   "})

	// Assert
	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want V10ValidationError", err)
	}
	if verr["first_name"] == "" {
		t.Fatal("first_name error missing, want notblank violation")
	}
}
