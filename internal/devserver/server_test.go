package devserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campusconnect/loginflow/internal/pkg/clock"
	"github.com/campusconnect/loginflow/internal/pkg/config"
	"github.com/campusconnect/loginflow/internal/pkg/goroutine"
	"github.com/campusconnect/loginflow/internal/pkg/hash"
	"github.com/campusconnect/loginflow/internal/pkg/instrument"
	"github.com/campusconnect/loginflow/internal/pkg/jwt"
	"github.com/campusconnect/loginflow/internal/pkg/uid"
	"github.com/campusconnect/loginflow/internal/pkg/validator"
	"github.com/campusconnect/loginflow/internal/verification/entity"
	"github.com/campusconnect/loginflow/internal/verification/outbound/api"
	"github.com/campusconnect/loginflow/internal/verification/usecase"
)

const testConfigYAML = `
modules:
  verification:
    code_length: 6
    resend_base_seconds: 30
    completion_delay_ms: 10
    max_bio_chars: 500
    max_attachment_bytes: 5242880
    allowed_domains:
      - student.university.edu
      - university.edu
      - campus.edu
      - college.edu
devserver:
  echo_otp: true
  cors_origins:
    - "*"
`

// newTestStack wires the real HTTP client against an in-process development
// server, so the whole verification flow runs end to end over the wire.
func newTestStack(t *testing.T) *usecase.Usecase {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	t.Cleanup(func() { cfg.Close() })

	clk := clock.New()
	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "campusconnect-dev",
		Audiences: []string{"campusconnect"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	store, err := NewStore(1, clk)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	srv := New(Dependency{
		Config: cfg,
		Store:  store,
		Bcrypt: hash.NewBcrypt(4),
		JWT:    signer,
	})

	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(httpSrv.Close)

	v10, err := validator.NewV10Validator(cfg.GetArray("modules.verification.allowed_domains"))
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	return usecase.New(usecase.Dependency{
		Collaborator: api.NewClient(httpSrv.URL, 5*time.Second, instrument.NewNoop()),
		Validator:    v10,
		Config:       cfg,
		UUID:         uid.NewUUID(),
		Instrument:   instrument.NewNoop(),
		Goroutine:    goroutine.NewManager(10),
	})
}

func TestEndToEnd_SignupVerifyLogin(t *testing.T) {
	// Arrange
	uc := newTestStack(t)
	ctx := context.Background()

	f := uc.NewFlow(entity.PurposeSignup)
	defer f.Close()

	done := make(chan *entity.Session, 1)
	f.OnComplete(func(s *entity.Session) { done <- s })

	f.EditField(ctx, entity.FieldEmail, "jane.doe@student.university.edu")
	f.EditField(ctx, entity.FieldPassword, "Str0ng!pass")
	f.EditField(ctx, entity.FieldConfirmPassword, "Str0ng!pass")
	f.EditField(ctx, entity.FieldFirstName, "Jane")
	f.EditField(ctx, entity.FieldLastName, "Doe")
	f.EditField(ctx, entity.FieldTermsAccepted, "true")
	f.StageAttachment(ctx, entity.Attachment{Name: "avatar.png", MIME: "image/png", Size: 4, Data: []byte("fake")})

	// Act: submit the form, then the echoed code.
	f.SubmitCredentials(ctx)

	if got := f.Step(); got != entity.StepChallengeIssued {
		t.Fatalf("Step() = %v, want StepChallengeIssued (flow error: %q)", got, f.FlowError())
	}
	code := f.DevCode()
	if len(code) != 6 {
		t.Fatalf("DevCode() = %q, want a 6 digit code", code)
	}

	f.Code().Paste(code)
	f.SubmitCode(ctx)

	// Assert
	if got := f.Step(); got != entity.StepCompleted {
		t.Fatalf("Step() = %v, want StepCompleted (flow error: %q)", got, f.FlowError())
	}

	var session *entity.Session
	select {
	case session = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("completion callback never fired")
	}
	if session.Email != "jane.doe@student.university.edu" {
		t.Fatalf("session Email = %q, want the signup email", session.Email)
	}
	if session.AccessToken == "" {
		t.Fatal("session AccessToken empty")
	}
	if session.Expired(time.Now()) {
		t.Fatal("session already expired")
	}

	// The verified account can now log in with its password.
	loginSession, err := uc.Login(ctx, usecase.LoginInput{
		Email:  "jane.doe@student.university.edu",
		Secret: "Str0ng!pass",
		Method: entity.LoginMethodPassword,
	})
	if err != nil {
		t.Fatalf("Login() error = %v, want nil", err)
	}
	if loginSession.UserID != session.UserID {
		t.Fatalf("login UserID = %d, want %d", loginSession.UserID, session.UserID)
	}
}

func TestEndToEnd_DuplicateSignupRejected(t *testing.T) {
	// Arrange
	uc := newTestStack(t)
	ctx := context.Background()

	first := uc.NewFlow(entity.PurposeSignup)
	defer first.Close()
	fillDraft(ctx, first, "sam@campus.edu")
	first.SubmitCredentials(ctx)
	if got := first.Step(); got != entity.StepChallengeIssued {
		t.Fatalf("first signup Step() = %v, want StepChallengeIssued", got)
	}

	// Act: the same email signs up again.
	second := uc.NewFlow(entity.PurposeSignup)
	defer second.Close()
	fillDraft(ctx, second, "sam@campus.edu")
	second.SubmitCredentials(ctx)

	// Assert: the server message is surfaced verbatim as the flow error.
	if got := second.Step(); got != entity.StepCollectingCredentials {
		t.Fatalf("second signup Step() = %v, want StepCollectingCredentials", got)
	}
	if got := second.FlowError(); got != "Email already registered" {
		t.Fatalf("FlowError() = %q, want %q", got, "Email already registered")
	}
}

func TestEndToEnd_WrongCodeThenResend(t *testing.T) {
	// Arrange
	uc := newTestStack(t)
	ctx := context.Background()

	f := uc.NewFlow(entity.PurposeSignup)
	defer f.Close()
	fillDraft(ctx, f, "max@college.edu")
	f.SubmitCredentials(ctx)

	// Act: a wrong code is rejected but the step survives.
	wrong := "000000"
	if wrong == f.DevCode() {
		wrong = "000001"
	}
	f.Code().Paste(wrong)
	f.SubmitCode(ctx)

	// Assert
	if got := f.Step(); got != entity.StepChallengeIssued {
		t.Fatalf("Step() = %v, want StepChallengeIssued after wrong code", got)
	}
	if got := f.FlowError(); got != "Invalid or expired OTP" {
		t.Fatalf("FlowError() = %q, want %q", got, "Invalid or expired OTP")
	}

	// Act: resend replaces the code, the fresh one verifies.
	f.Resend(ctx)
	if got := f.Throttle().SecondsRemaining(); got != 30 {
		t.Fatalf("SecondsRemaining() = %d, want 30 after accepted resend", got)
	}

	f.Code().Paste(f.DevCode())
	f.SubmitCode(ctx)
	if got := f.Step(); got != entity.StepCompleted {
		t.Fatalf("Step() = %v, want StepCompleted (flow error: %q)", got, f.FlowError())
	}
}

func TestEndToEnd_LoginPurposeUnknownEmail(t *testing.T) {
	// Arrange
	uc := newTestStack(t)
	ctx := context.Background()

	f := uc.NewFlow(entity.PurposeLogin)
	defer f.Close()
	f.EditField(ctx, entity.FieldEmail, "ghost@campus.edu")

	// Act
	f.SubmitCredentials(ctx)

	// Assert
	if got := f.Step(); got != entity.StepCollectingCredentials {
		t.Fatalf("Step() = %v, want StepCollectingCredentials", got)
	}
	if got := f.FlowError(); got != "No account found with this email" {
		t.Fatalf("FlowError() = %q, want %q", got, "No account found with this email")
	}
}

func fillDraft(ctx context.Context, f *usecase.Flow, email string) {
	f.EditField(ctx, entity.FieldEmail, email)
	f.EditField(ctx, entity.FieldPassword, "Str0ng!pass")
	f.EditField(ctx, entity.FieldConfirmPassword, "Str0ng!pass")
	f.EditField(ctx, entity.FieldFirstName, "Sam")
	f.EditField(ctx, entity.FieldLastName, "Smith")
	f.EditField(ctx, entity.FieldTermsAccepted, "true")
}
