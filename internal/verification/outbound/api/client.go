// Package api is the HTTP client for the identity service. It speaks the
// service's response envelope and maps failures into the application's error
// taxonomy: a 4xx with a message becomes a business error carried verbatim,
// anything transport-level becomes a server error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/campusconnect/loginflow/internal/pkg/goerror"
	"github.com/campusconnect/loginflow/internal/pkg/instrument"
	"github.com/campusconnect/loginflow/internal/pkg/jwt"
	"github.com/campusconnect/loginflow/internal/verification/entity"
	"github.com/campusconnect/loginflow/internal/verification/usecase"
)

// envelope is the identity service's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type otpData struct {
	OTPCode string `json:"otp_code"`
}

type sessionData struct {
	AccessToken string `json:"access_token"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
	ins     instrument.Instrumentation
}

func NewClient(baseURL string, timeout time.Duration, ins instrument.Instrumentation) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		ins:     ins,
	}
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("verification.outbound.api").Start(ctx, name)
}

func (c *Client) endSpan(span trace.Span, err error) {
	var ge *goerror.Error
	if err != nil && !(errors.As(err, &ge) && ge.Type() == goerror.TypeBusiness) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// IssueChallenge requests a one-time code. Signup posts the whole form, with
// the profile picture as a multipart upload when one is staged; the other
// purposes only need the email address.
func (c *Client) IssueChallenge(ctx context.Context, draft entity.CredentialDraft, purpose entity.ChallengePurpose) (res *usecase.IssueChallengeResult, err error) {
	ctx, span := c.startSpan(ctx, "IssueChallenge")
	defer func() { c.endSpan(span, err) }()

	var env *envelope
	if purpose == entity.PurposeSignup {
		env, err = c.postSignup(ctx, draft)
	} else {
		env, err = c.postJSON(ctx, "/api/v1/auth/send-otp", map[string]any{
			"email":   draft.Email,
			"purpose": purpose.String(),
		})
	}
	if err != nil {
		return nil, err
	}

	return challengeResult(ctx, env), nil
}

// ResendChallenge requests a fresh code for an already issued challenge. This
// always goes to the send-otp endpoint, resubmitting the signup form would
// collide with the account created on first issuance.
func (c *Client) ResendChallenge(ctx context.Context, email string, purpose entity.ChallengePurpose) (res *usecase.IssueChallengeResult, err error) {
	ctx, span := c.startSpan(ctx, "ResendChallenge")
	defer func() { c.endSpan(span, err) }()

	env, err := c.postJSON(ctx, "/api/v1/auth/send-otp", map[string]any{
		"email":   email,
		"purpose": purpose.String(),
	})
	if err != nil {
		return nil, err
	}

	return challengeResult(ctx, env), nil
}

func challengeResult(ctx context.Context, env *envelope) *usecase.IssueChallengeResult {
	var data otpData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			slog.WarnContext(ctx, "unexpected challenge response payload", "error", err)
		}
	}

	return &usecase.IssueChallengeResult{Message: env.Message, DevCode: data.OTPCode}
}

// VerifyChallenge submits the one-time code and returns the established
// session on success.
func (c *Client) VerifyChallenge(ctx context.Context, email, code string, purpose entity.ChallengePurpose) (session *entity.Session, err error) {
	ctx, span := c.startSpan(ctx, "VerifyChallenge")
	defer func() { c.endSpan(span, err) }()

	env, err := c.postJSON(ctx, "/api/v1/auth/verify-otp", map[string]any{
		"email":    email,
		"otp_code": code,
		"purpose":  purpose.String(),
	})
	if err != nil {
		return nil, err
	}

	return c.sessionFromEnvelope(ctx, env)
}

// Login authenticates with a password or a previously issued code.
func (c *Client) Login(ctx context.Context, email, secret string, method entity.LoginMethod) (session *entity.Session, err error) {
	ctx, span := c.startSpan(ctx, "Login")
	defer func() { c.endSpan(span, err) }()

	body := map[string]any{"email": email}
	if method == entity.LoginMethodCode {
		body["otp_code"] = secret
	} else {
		body["password"] = secret
	}

	env, err := c.postJSON(ctx, "/api/v1/auth/login", body)
	if err != nil {
		return nil, err
	}

	return c.sessionFromEnvelope(ctx, env)
}

func (c *Client) sessionFromEnvelope(ctx context.Context, env *envelope) (*entity.Session, error) {
	var data sessionData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AccessToken == "" {
		slog.ErrorContext(ctx, "identity service returned no access token", "error", err)
		return nil, goerror.NewServer(errors.New("missing access token in response"))
	}

	// The client has no signing secret; the claims are decoded unverified just
	// to show who is logged in and until when.
	claims, err := jwt.Peek(data.AccessToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decode access token claims", "error", err)
		return nil, goerror.NewServer(err)
	}

	session := &entity.Session{
		AccessToken: data.AccessToken,
		UserID:      claims.UserID,
		Email:       claims.UserEmail,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return session, nil
}

func (c *Client) postSignup(ctx context.Context, draft entity.CredentialDraft) (*envelope, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"email":            draft.Email,
		"password":         draft.Password,
		"confirm_password": draft.ConfirmPassword,
		"first_name":       draft.FirstName,
		"last_name":        draft.LastName,
		"phone":            draft.Phone,
		"bio":              draft.Bio,
		"terms_accepted":   fmt.Sprintf("%t", draft.TermsAccepted),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, goerror.NewServer(err)
		}
	}

	if att := draft.Attachment; att != nil {
		fw, err := mw.CreateFormFile("profile_picture", att.Name)
		if err != nil {
			return nil, goerror.NewServer(err)
		}
		if _, err := fw.Write(att.Data); err != nil {
			return nil, goerror.NewServer(err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, goerror.NewServer(err)
	}

	return c.post(ctx, "/api/v1/auth/signup", mw.FormDataContentType(), buf.Bytes())
}

func (c *Client) postJSON(ctx context.Context, path string, body map[string]any) (*envelope, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	return c.post(ctx, path, "application/json", raw)
}

// post sends the request with a short retry on transport failures only. An
// HTTP response, whatever its status, is never retried; the identity service
// has already acted on it once.
func (c *Client) post(ctx context.Context, path, contentType string, body []byte) (*envelope, error) {
	var env *envelope

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpc.Do(req)
		if err != nil {
			slog.WarnContext(ctx, "identity service unreachable", "path", path, "error", err)
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		env, err = decodeEnvelope(resp)
		return err
	})
	if err != nil {
		var ge *goerror.Error
		if errors.As(err, &ge) {
			return nil, err
		}
		return nil, goerror.NewServer(err)
	}

	return env, nil
}

func decodeEnvelope(resp *http.Response) (*envelope, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, goerror.NewServer(fmt.Errorf("malformed response (status %d)", resp.StatusCode))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && env.Success {
		return &env, nil
	}

	msg := env.Error
	if msg == "" {
		msg = env.Message
	}
	if msg == "" {
		msg = "Something went wrong, please try again"
	}

	return nil, goerror.NewBusiness(msg, goerror.CodeFromStatus(resp.StatusCode))
}
