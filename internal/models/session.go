package models

// TokenPair is what the token endpoint returns: a short-lived access
// credential and the refresh credential persisted next to it.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// State is the session state. Exactly one of the constants below.
type State int

const (
	StateUninitialized State = iota // durable storage not consulted yet
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a point-in-time copy of the session manager state.
type Session struct {
	State        State     `json:"state"`
	Identity     *Identity `json:"identity,omitempty"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	Initializing bool      `json:"initializing"`
}

func (s Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.Identity != nil
}

// EventKind names the transition that produced an Event.
type EventKind string

const (
	EventInitialized EventKind = "initialized"
	EventLogin       EventKind = "login"
	EventLogout      EventKind = "logout"
)

// Event is published to session listeners after every transition.
// Consumers decide where the user lands; the session manager never
// navigates on its own.
type Event struct {
	Kind     EventKind `json:"kind"`
	State    State     `json:"state"`
	Identity *Identity `json:"identity,omitempty"`
}
