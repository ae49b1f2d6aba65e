package usecase

import (
	"context"

	"github.com/campusconnect/loginflow/internal/verification/entity"
)

// Back returns from the code entry step to the credentials form. The draft is
// kept so the user edits what they typed rather than starting over; the code
// cells, the resend throttle, and the flow error are cleared because they
// belong to the abandoned challenge.
//
// Ignored while a submit is in flight and on any other step.
func (f *Flow) Back(ctx context.Context) {
	_, span := f.uc.startSpan(ctx, "Back")
	defer span.End()

	if f.busy.Load() {
		return
	}

	f.mu.Lock()
	if f.step != entity.StepChallengeIssued {
		f.mu.Unlock()
		return
	}

	f.step = entity.StepCollectingCredentials
	f.flowErr = ""
	f.devCode = ""
	f.mu.Unlock()

	f.code.Clear()
	f.throttle.Reset()

	f.notifyChange()
}
