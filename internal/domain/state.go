package domain

type Phase string

const (
	PhaseUnknown  Phase = "unknown"
	PhaseChecking Phase = "checking"
	PhaseResolved Phase = "resolved"
)

// AuthState is a read-only snapshot of an auth store.
type AuthState struct {
	User    *User
	Loading bool
	Phase   Phase
}

func (s AuthState) SignedIn() bool {
	return s.User != nil
}
