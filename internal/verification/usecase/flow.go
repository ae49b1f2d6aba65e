package usecase

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/campusconnect/loginflow/internal/pkg/sched"
	"github.com/campusconnect/loginflow/internal/verification/codeentry"
	"github.com/campusconnect/loginflow/internal/verification/entity"
	"github.com/campusconnect/loginflow/internal/verification/throttle"
)

// Flow is one credential-verification session: the form draft, the current
// step, the code entry control, and the resend throttle. It is created in
// StepCollectingCredentials and torn down by Close or by completion.
//
// All state transitions happen through its methods; renderers observe through
// the accessors and the change callback. The flow never navigates on its own,
// completion is announced through the completion callback after the configured
// delay and the consumer decides what happens next.
type Flow struct {
	uc      *Usecase
	id      string
	purpose entity.ChallengePurpose

	mu        sync.Mutex
	step      entity.FlowStep
	draft     entity.CredentialDraft
	fieldErrs map[string]string
	flowErr   string
	devCode   string
	session   *entity.Session
	closed    bool

	busy       *atomic.Bool
	code       *codeentry.Control
	throttle   *throttle.Throttle
	completion *sched.Timer

	cbMu       sync.Mutex
	onChange   func()
	onComplete func(*entity.Session)
}

// NewFlow creates a verification flow for the given purpose. Code length and
// resend cooldown base come from configuration.
func (s *Usecase) NewFlow(purpose entity.ChallengePurpose) *Flow {
	f := &Flow{
		uc:        s,
		id:        s.uuid.Generate(),
		purpose:   purpose,
		step:      entity.StepCollectingCredentials,
		fieldErrs: map[string]string{},
		busy:      atomic.NewBool(false),
	}

	f.code = codeentry.New(s.cfg.GetInt("modules.verification.code_length"), func(string) {
		f.notifyChange()
	})
	f.throttle = throttle.New(s.cfg.GetSecond("modules.verification.resend_base_seconds"), func(int) {
		f.notifyChange()
	})

	return f
}

// ID returns the session identifier, used for log correlation.
func (f *Flow) ID() string {
	return f.id
}

// Purpose returns why this flow was started.
func (f *Flow) Purpose() entity.ChallengePurpose {
	return f.purpose
}

// Step returns the current flow step.
func (f *Flow) Step() entity.FlowStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Draft returns a copy of the current form state.
func (f *Flow) Draft() entity.CredentialDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// FieldErrors returns a copy of the per-field validation error map. Fields
// without errors are absent.
func (f *Flow) FieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.fieldErrs))
	for k, v := range f.fieldErrs {
		out[k] = v
	}
	return out
}

// FlowError returns the current flow-level error message, empty when none.
// This is the collaborator's message verbatim, or a generic one on transport
// failure.
func (f *Flow) FlowError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flowErr
}

// DevCode returns the echoed one-time code when the identity service runs in
// development mode, empty otherwise.
func (f *Flow) DevCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devCode
}

// Session returns the established session after completion, nil before.
func (f *Flow) Session() *entity.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Busy reports whether a collaborator call is outstanding. At most one call
// (submit, verify, or resend) is in flight at a time; renderers disable the
// triggering actions while true.
func (f *Flow) Busy() bool {
	return f.busy.Load()
}

// Code returns the code entry control for this flow.
func (f *Flow) Code() *codeentry.Control {
	return f.code
}

// Throttle returns the resend throttle for this flow.
func (f *Flow) Throttle() *throttle.Throttle {
	return f.throttle
}

// OnChange registers the callback invoked after any observable state change.
// It is called without locks held; passing nil unregisters.
func (f *Flow) OnChange(fn func()) {
	f.cbMu.Lock()
	defer f.cbMu.Unlock()
	f.onChange = fn
}

// OnComplete registers the callback invoked once the completion delay elapses
// after a successful verification. It receives the established session.
func (f *Flow) OnComplete(fn func(*entity.Session)) {
	f.cbMu.Lock()
	defer f.cbMu.Unlock()
	f.onComplete = fn
}

// Close tears the flow down: the completion timer and the resend countdown are
// cancelled so no callback fires afterwards. Safe to call multiple times.
func (f *Flow) Close() {
	f.mu.Lock()
	f.closed = true
	completion := f.completion
	f.completion = nil
	f.mu.Unlock()

	completion.Stop()
	f.throttle.Stop()
}

func (f *Flow) notifyChange() {
	f.cbMu.Lock()
	fn := f.onChange
	f.cbMu.Unlock()

	if fn != nil {
		fn()
	}
}

func (f *Flow) fireComplete() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	session := f.session
	f.mu.Unlock()

	f.cbMu.Lock()
	fn := f.onComplete
	f.cbMu.Unlock()

	if fn != nil {
		fn(session)
	}
}
