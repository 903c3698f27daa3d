package models

import internal "github.com/westmarch-io/westmarch/internal/models"

// Session is a point-in-time copy of a session manager.
type Session = internal.Session

// State is the session state.
type State = internal.State

const (
	StateUninitialized = internal.StateUninitialized
	StateAnonymous     = internal.StateAnonymous
	StateAuthenticated = internal.StateAuthenticated
)

// Event is delivered to session subscribers after every transition.
type Event = internal.Event

type EventKind = internal.EventKind

const (
	EventInitialized = internal.EventInitialized
	EventLogin       = internal.EventLogin
	EventLogout      = internal.EventLogout
)
