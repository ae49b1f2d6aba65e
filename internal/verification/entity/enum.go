package entity

// FlowStep identifies where a verification flow currently is. Exactly one step
// is active at a time; transitions are forward-only except the explicit back
// action from StepChallengeIssued.
type FlowStep int16

const (
	// StepUnknown means the step is not known / not set.
	StepUnknown FlowStep = 0

	// StepCollectingCredentials is the initial step: the form is being filled.
	StepCollectingCredentials FlowStep = 1

	// StepChallengeIssued means a one-time code was sent and is being collected.
	StepChallengeIssued FlowStep = 2

	// StepCompleted is the terminal step: the challenge was verified.
	StepCompleted FlowStep = 3
)

func (s FlowStep) String() string {
	switch s {
	case StepCollectingCredentials:
		return "CollectingCredentials"
	case StepChallengeIssued:
		return "ChallengeIssued"
	case StepCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// ChallengePurpose distinguishes why a one-time code was requested. Wire
// values match the identity service.
type ChallengePurpose string

const (
	// PurposeSignup confirms a new account's email address.
	PurposeSignup ChallengePurpose = "signup"

	// PurposeLogin authenticates an existing account by emailed code.
	PurposeLogin ChallengePurpose = "login"

	// PurposePasswordReset authorizes a password reset.
	PurposePasswordReset ChallengePurpose = "password_reset"
)

func (p ChallengePurpose) String() string {
	return string(p)
}

// LoginMethod selects what the secret in a login call is.
type LoginMethod int16

const (
	// LoginMethodPassword logs in with the account password.
	LoginMethodPassword LoginMethod = 1

	// LoginMethodCode logs in with a previously issued one-time code.
	LoginMethodCode LoginMethod = 2
)

func (m LoginMethod) String() string {
	switch m {
	case LoginMethodPassword:
		return "password"
	case LoginMethodCode:
		return "code"
	default:
		return "unknown"
	}
}
