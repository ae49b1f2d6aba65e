package usecase

import (
	"context"
	"log/slog"

	"github.com/campusconnect/loginflow/internal/verification/entity"
)

// Resend asks the identity service for a fresh one-time code. The trigger is
// dropped without any call when the cooldown is still counting down, a resend
// is already in flight, or any other collaborator call is outstanding. One
// outstanding call at a time, across all operations.
//
// Only an accepted resend escalates the cooldown; a rejected one releases the
// throttle so the user can try again immediately.
func (f *Flow) Resend(ctx context.Context) {
	ctx, span := f.uc.startSpan(ctx, "Resend")
	defer span.End()

	f.mu.Lock()
	if f.step != entity.StepChallengeIssued {
		f.mu.Unlock()
		return
	}
	email := f.draft.Email
	f.mu.Unlock()

	if !f.busy.CompareAndSwap(false, true) {
		return
	}
	defer func() {
		f.busy.Store(false)
		f.notifyChange()
	}()

	if !f.throttle.BeginSend() {
		return
	}
	f.notifyChange()

	res, err := f.uc.collab.ResendChallenge(ctx, email, f.purpose)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resend challenge",
			"flow_id", f.id, "purpose", f.purpose.String(), "error", err)

		f.throttle.Fail()
		f.mu.Lock()
		f.flowErr = flowMessage(err)
		f.mu.Unlock()

		f.notifyChange()
		return
	}

	f.throttle.Accept()
	f.mu.Lock()
	f.flowErr = ""
	f.devCode = res.DevCode
	f.mu.Unlock()

	f.notifyChange()
}
