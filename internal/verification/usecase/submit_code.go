package usecase

import (
	"context"
	"log/slog"

	"github.com/campusconnect/loginflow/internal/pkg/sched"
	"github.com/campusconnect/loginflow/internal/verification/entity"
)

// SubmitCode sends the entered one-time code for verification. An incomplete
// code is a silent no-op; the submit action is simply not available until
// every cell is filled.
//
// On success the flow moves to the completed step, the session is stored, and
// the completion callback fires after the configured delay so the interface
// can show its success state first. On rejection the service's message becomes
// the flow error and the code stays editable.
func (f *Flow) SubmitCode(ctx context.Context) {
	ctx, span := f.uc.startSpan(ctx, "SubmitCode")
	defer span.End()

	code := f.code.Value()
	if len(code) != f.code.Size() {
		return
	}

	if !f.busy.CompareAndSwap(false, true) {
		return
	}
	defer func() {
		f.busy.Store(false)
		f.notifyChange()
	}()

	f.mu.Lock()
	if f.step != entity.StepChallengeIssued {
		f.mu.Unlock()
		return
	}
	email := f.draft.Email
	f.mu.Unlock()

	session, err := f.uc.collab.VerifyChallenge(ctx, email, code, f.purpose)
	if err != nil {
		slog.WarnContext(ctx, "challenge verification rejected",
			"flow_id", f.id, "purpose", f.purpose.String(), "error", err)

		f.mu.Lock()
		f.flowErr = flowMessage(err)
		f.mu.Unlock()
		return
	}

	delay := f.uc.cfg.GetMillisecond("modules.verification.completion_delay_ms")
	bgCtx := context.WithoutCancel(ctx)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.step = entity.StepCompleted
	f.session = session
	f.flowErr = ""
	f.completion = sched.After(delay, func() {
		f.uc.goroutine.Go(bgCtx, func(context.Context) error {
			f.fireComplete()
			return nil
		})
	})
	f.mu.Unlock()

	f.throttle.Stop()
}
