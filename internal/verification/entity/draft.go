package entity

import "time"

// Field names used as keys in the field error map. They match the snake_case
// names the validator produces from struct fields.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldPhone           = "phone"
	FieldBio             = "bio"
	FieldTermsAccepted   = "terms_accepted"
	FieldAttachment      = "attachment"
)

// Attachment is a staged profile picture waiting to be sent with the signup
// request.
type Attachment struct {
	Name string
	MIME string
	Size int64
	Data []byte
}

// CredentialDraft is the mutable form state owned by one flow session. It is
// discarded when the flow completes or the consumer tears it down.
type CredentialDraft struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Phone           string
	Bio             string
	TermsAccepted   bool
	Attachment      *Attachment
}

// Session is the client-side result of a successful login or verification:
// the bearer token plus the claims decoded from it.
type Session struct {
	AccessToken string
	UserID      int64
	Email       string
	ExpiresAt   time.Time
}

// Expired reports whether the session's token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return now.After(s.ExpiresAt)
}
