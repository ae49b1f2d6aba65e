package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/campusconnect/loginflow/internal/pkg/goerror"
	"github.com/campusconnect/loginflow/internal/verification/entity"
)

type LoginInput struct {
	Email  string `validate:"required,email"`
	Secret string `validate:"required"`
	Method entity.LoginMethod
}

// Login authenticates directly against the identity service, with either the
// account password or a previously issued one-time code. Unlike the flow
// operations it returns its result, there is no session state to drive.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*entity.Session, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err, fieldValues(err))
	}

	session, err := s.collab.Login(ctx, in.Email, in.Secret, in.Method)
	if err != nil {
		slog.WarnContext(ctx, "login rejected", "email", in.Email, "error", err)
		return nil, err
	}

	return session, nil
}

func fieldValues(err error) map[string]string {
	type valuer interface{ Values() map[string]string }

	var v valuer
	if errors.As(err, &v) {
		return v.Values()
	}
	return nil
}
