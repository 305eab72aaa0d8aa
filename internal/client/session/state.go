package session

// State is the login state of the single per-process session.
type State int

const (
	StateLoggedOut State = iota
	StateAuthenticating
	StateOtpPending
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateAuthenticating:
		return "authenticating"
	case StateOtpPending:
		return "otp_pending"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
