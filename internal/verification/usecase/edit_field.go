package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/campusconnect/loginflow/internal/verification/entity"
)

// EditField writes a form value into the draft and clears that field's
// validation error. Other fields keep their errors until the next submit, so
// fixing one field never hides problems elsewhere on the form.
//
// Unknown field names are ignored. For terms_accepted the value is parsed as
// a boolean.
func (f *Flow) EditField(ctx context.Context, field, value string) {
	_, span := f.uc.startSpan(ctx, "EditField")
	defer span.End()

	f.mu.Lock()

	switch field {
	case entity.FieldEmail:
		f.draft.Email = value
	case entity.FieldPassword:
		f.draft.Password = value
	case entity.FieldConfirmPassword:
		f.draft.ConfirmPassword = value
	case entity.FieldFirstName:
		f.draft.FirstName = value
	case entity.FieldLastName:
		f.draft.LastName = value
	case entity.FieldPhone:
		f.draft.Phone = value
	case entity.FieldBio:
		f.draft.Bio = value
	case entity.FieldTermsAccepted:
		accepted, err := strconv.ParseBool(strings.TrimSpace(value))
		f.draft.TermsAccepted = err == nil && accepted
	default:
		f.mu.Unlock()
		return
	}

	delete(f.fieldErrs, field)
	f.mu.Unlock()

	f.notifyChange()
}
