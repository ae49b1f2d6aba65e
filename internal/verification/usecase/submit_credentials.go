package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/campusconnect/loginflow/internal/pkg/goerror"
	"github.com/campusconnect/loginflow/internal/pkg/validator"
	"github.com/campusconnect/loginflow/internal/verification/entity"
)

type signupInput struct {
	Email           string `validate:"required,email,campusemail"`
	Password        string `validate:"required,strongpassword"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	FirstName       string `validate:"required,notblank,max=50"`
	LastName        string `validate:"required,notblank,max=50"`
	Phone           string `validate:"omitempty,loosephone"`
	TermsAccepted   bool   `validate:"required"`
}

type challengeInput struct {
	Email string `validate:"required,email,campusemail"`
}

// SubmitCredentials validates the draft and asks the identity service to issue
// a one-time code. On validation failure the field error map is replaced and
// nothing is sent. On acceptance the flow advances to the code entry step.
//
// Dropped silently when a submit is already in flight or the flow is past the
// credentials step.
func (f *Flow) SubmitCredentials(ctx context.Context) {
	ctx, span := f.uc.startSpan(ctx, "SubmitCredentials")
	defer span.End()

	if !f.busy.CompareAndSwap(false, true) {
		return
	}
	defer func() {
		f.busy.Store(false)
		f.notifyChange()
	}()

	f.mu.Lock()
	if f.step != entity.StepCollectingCredentials {
		f.mu.Unlock()
		return
	}

	f.draft.Email = strings.TrimSpace(strings.ToLower(f.draft.Email))
	draft := f.draft
	f.mu.Unlock()

	if fieldErrs := f.validateDraft(draft); len(fieldErrs) > 0 {
		f.mu.Lock()
		f.fieldErrs = fieldErrs
		f.flowErr = ""
		f.mu.Unlock()
		return
	}

	res, err := f.uc.collab.IssueChallenge(ctx, draft, f.purpose)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue challenge",
			"flow_id", f.id, "purpose", f.purpose.String(), "error", err)

		f.mu.Lock()
		f.flowErr = flowMessage(err)
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	f.step = entity.StepChallengeIssued
	f.fieldErrs = map[string]string{}
	f.flowErr = ""
	f.devCode = res.DevCode
	f.mu.Unlock()

	f.code.Clear()
}

// validateDraft runs the purpose-dependent validation. Signup validates the
// whole form; login and password reset only need the email address.
func (f *Flow) validateDraft(draft entity.CredentialDraft) map[string]string {
	var in any
	if f.purpose == entity.PurposeSignup {
		in = signupInput{
			Email:           draft.Email,
			Password:        draft.Password,
			ConfirmPassword: draft.ConfirmPassword,
			FirstName:       strings.TrimSpace(draft.FirstName),
			LastName:        strings.TrimSpace(draft.LastName),
			Phone:           strings.TrimSpace(draft.Phone),
			TermsAccepted:   draft.TermsAccepted,
		}
	} else {
		in = challengeInput{Email: draft.Email}
	}

	fieldErrs := map[string]string{}
	if err := f.uc.validator.Validate(in); err != nil {
		var verr validator.V10ValidationError
		if errors.As(err, &verr) {
			fieldErrs = verr.Values()
		} else {
			fieldErrs[entity.FieldEmail] = "invalid input"
		}
	}

	if f.purpose == entity.PurposeSignup {
		maxBio := f.uc.cfg.GetInt("modules.verification.max_bio_chars")
		if maxBio > 0 && utf8.RuneCountInString(draft.Bio) > maxBio {
			fieldErrs[entity.FieldBio] = fmt.Sprintf("bio must be at most %d characters", maxBio)
		}
	}

	return fieldErrs
}

// flowMessage extracts the user-facing message from a collaborator error. The
// service's own words are surfaced unchanged; transport failures fall back to
// a generic message.
func flowMessage(err error) string {
	var ge *goerror.Error
	if errors.As(err, &ge) && ge.Msg() != "" {
		return ge.Msg()
	}
	return "Something went wrong, please try again"
}
