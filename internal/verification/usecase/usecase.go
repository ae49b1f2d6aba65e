package usecase

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/campusconnect/loginflow/internal/pkg/config"
	"github.com/campusconnect/loginflow/internal/pkg/goroutine"
	"github.com/campusconnect/loginflow/internal/pkg/instrument"
	"github.com/campusconnect/loginflow/internal/pkg/uid"
	"github.com/campusconnect/loginflow/internal/pkg/validator"
	"github.com/campusconnect/loginflow/internal/verification/entity"
)

// IssueChallengeResult is what the identity service returns after accepting a
// challenge request. DevCode carries the one-time code when the service runs
// with development echo enabled; it is empty in production.
type IssueChallengeResult struct {
	Message string
	DevCode string
}

// Collaborator is the identity service seen from the client flow. Every call
// blocks until the service answers; failures carry the service's message.
//
// IssueChallenge starts a challenge for the draft (for signup that creates
// the account); ResendChallenge replaces the pending code for an already
// issued challenge without resubmitting the form.
type Collaborator interface {
	IssueChallenge(ctx context.Context, draft entity.CredentialDraft, purpose entity.ChallengePurpose) (*IssueChallengeResult, error)
	ResendChallenge(ctx context.Context, email string, purpose entity.ChallengePurpose) (*IssueChallengeResult, error)
	VerifyChallenge(ctx context.Context, email, code string, purpose entity.ChallengePurpose) (*entity.Session, error)
	Login(ctx context.Context, email, secret string, method entity.LoginMethod) (*entity.Session, error)
}

type Usecase struct {
	collab    Collaborator
	validator validator.Validator
	cfg       config.Config
	uuid      uid.StringID
	ins       instrument.Instrumentation
	goroutine *goroutine.Manager
}

type Dependency struct {
	Collaborator Collaborator
	Validator    validator.Validator
	Config       config.Config
	UUID         uid.StringID
	Instrument   instrument.Instrumentation
	Goroutine    *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		collab:    dep.Collaborator,
		validator: dep.Validator,
		cfg:       dep.Config,
		uuid:      dep.UUID,
		ins:       dep.Instrument,
		goroutine: dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}
