// Package sessions owns the client's notion of who is logged in.
//
// A Manager is constructed once at start-up and handed to every consumer.
// It restores the credential pair from durable storage exactly once
// (Init), exposes Login and Logout, and publishes an Event after each
// transition. It never talks to the remote API and never navigates;
// consumers react to events instead.
package sessions

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/westmarch-io/westmarch/internal/models"
	"github.com/westmarch-io/westmarch/internal/storage"
	"github.com/westmarch-io/westmarch/internal/token"
)

// Durable storage keys. The manager is their only writer.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Listener is called after every transition, outside the manager lock.
type Listener func(models.Event)

type Manager struct {
	lock sync.RWMutex // guards everything below

	storage storage.Storage
	decoder token.Decoder

	state        models.State
	identity     *models.Identity
	accessToken  string
	refreshToken string
	initializing bool

	initOnce sync.Once
	ready    chan struct{}

	listenerLock sync.Mutex
	listeners    map[int]Listener
	nextListener int

	// Events are queued under lock and delivered by one goroutine at a
	// time, so listeners see them in transition order.
	eventLock   sync.Mutex
	pending     []models.Event
	dispatching bool
}

func NewManager(store storage.Storage, decoder token.Decoder) *Manager {
	return &Manager{
		storage:      store,
		decoder:      decoder,
		state:        models.StateUninitialized,
		initializing: true,
		ready:        make(chan struct{}),
		listeners:    make(map[int]Listener),
	}
}

// Init restores the session from durable storage. Only the first call
// does any work; later calls return immediately.
func (m *Manager) Init(ctx context.Context) {
	m.initOnce.Do(func() {
		m.restore(ctx)
	})
	// Delivered outside Do so listeners may call back into the manager.
	m.dispatch()
}

func (m *Manager) restore(ctx context.Context) {
	access, found, err := m.storage.Get(ctx, AccessTokenKey)
	if err != nil {
		// Unreadable storage degrades to an anonymous session.
		logrus.WithError(err).Warnln("Failed to read stored session, continuing anonymously")
		found = false
	}

	var (
		identity *models.Identity
		refresh  string
		heal     bool
	)

	if found {
		identity, err = m.decoder.Decode(access)
		if err != nil {
			logrus.WithError(err).Warnln("Stored credential is not usable, clearing session")
			heal = true
			identity = nil
		} else {
			refresh, _, err = m.storage.Get(ctx, RefreshTokenKey)
			if err != nil {
				logrus.WithError(err).Warnln("Failed to read stored refresh credential")
				refresh = ""
			}
		}
	}

	if heal {
		m.deleteStoredKeys(ctx)
	}

	m.lock.Lock()
	if identity != nil {
		m.setAuthenticated(identity, access, refresh)
	} else {
		m.setAnonymous()
	}
	m.initializing = false
	event := m.enqueueLocked(models.EventInitialized)
	m.lock.Unlock()

	close(m.ready)

	logrus.WithFields(logrus.Fields{
		"state":    event.State.String(),
		"identity": event.Identity.String(),
	}).Debugln("Session initialized")
}

// Login decodes access, persists both credentials and replaces the
// current session. An undecodable access credential is rejected with an
// error matching token.ErrUndecodable and nothing is changed.
func (m *Manager) Login(ctx context.Context, access string, refresh string) (*models.Identity, error) {
	m.Init(ctx)

	identity, err := m.decoder.Decode(access)
	if err != nil {
		return nil, fmt.Errorf("login rejected: %w", err)
	}
	if identity == nil {
		return nil, fmt.Errorf("login rejected: %w", token.ErrUndecodable)
	}

	m.lock.Lock()
	// Persistence failures only cost durability across runs.
	if err := m.storage.Set(ctx, AccessTokenKey, access); err != nil {
		logrus.WithError(err).Warnln("Failed to persist access credential")
	}
	if len(refresh) > 0 {
		if err := m.storage.Set(ctx, RefreshTokenKey, refresh); err != nil {
			logrus.WithError(err).Warnln("Failed to persist refresh credential")
		}
	} else if err := m.storage.Delete(ctx, RefreshTokenKey); err != nil {
		logrus.WithError(err).Warnln("Failed to clear refresh credential")
	}
	m.setAuthenticated(identity, access, refresh)
	m.enqueueLocked(models.EventLogin)
	m.lock.Unlock()

	logrus.WithFields(logrus.Fields{
		"user_id":  identity.UserID,
		"username": identity.Username,
		"staff":    identity.IsStaff,
	}).Debugln("Session authenticated")

	m.dispatch()

	return copyIdentity(identity), nil
}

// Logout clears the session and its stored credentials. It always
// publishes EventLogout, even when nobody was logged in.
func (m *Manager) Logout(ctx context.Context) {
	m.Init(ctx)

	m.lock.Lock()
	m.deleteStoredKeys(ctx)
	m.setAnonymous()
	m.enqueueLocked(models.EventLogout)
	m.lock.Unlock()

	logrus.Debugln("Session cleared")

	m.dispatch()
}

// Ready is closed once initialization has completed.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Wait blocks until initialization has completed or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Initializing reports whether durable storage has not been consulted
// yet. Reads taken while it is true are provisional.
func (m *Manager) Initializing() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.initializing
}

func (m *Manager) State() models.State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.state
}

// Identity returns a copy of the current identity.
func (m *Manager) Identity() (*models.Identity, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.identity == nil {
		return nil, false
	}
	return copyIdentity(m.identity), true
}

func (m *Manager) AccessToken() (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.accessToken, len(m.accessToken) > 0
}

func (m *Manager) RefreshToken() (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.refreshToken, len(m.refreshToken) > 0
}

func (m *Manager) Snapshot() models.Session {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return models.Session{
		State:        m.state,
		Identity:     copyIdentity(m.identity),
		AccessToken:  m.accessToken,
		RefreshToken: m.refreshToken,
		Initializing: m.initializing,
	}
}

// Subscribe registers a listener and returns a func that removes it.
func (m *Manager) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}

	m.listenerLock.Lock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = listener
	m.listenerLock.Unlock()

	return func() {
		m.listenerLock.Lock()
		delete(m.listeners, id)
		m.listenerLock.Unlock()
	}
}

// enqueueLocked records the event for the current transition. It expects
// the manager lock to be held so queue order matches transition order.
func (m *Manager) enqueueLocked(kind models.EventKind) models.Event {
	event := m.eventLocked(kind)
	m.eventLock.Lock()
	m.pending = append(m.pending, event)
	m.eventLock.Unlock()
	return event
}

// dispatch delivers queued events. A call made while another goroutine,
// or a listener further up the stack, is already delivering returns
// immediately and leaves its events to that dispatcher.
func (m *Manager) dispatch() {
	m.eventLock.Lock()
	if m.dispatching {
		m.eventLock.Unlock()
		return
	}
	m.dispatching = true
	for len(m.pending) > 0 {
		event := m.pending[0]
		m.pending = m.pending[1:]
		m.eventLock.Unlock()
		m.publish(event)
		m.eventLock.Lock()
	}
	m.dispatching = false
	m.eventLock.Unlock()
}

func (m *Manager) publish(event models.Event) {
	m.listenerLock.Lock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	m.listenerLock.Unlock()

	// Registration order.
	slices.Sort(ids)

	for _, id := range ids {
		m.listenerLock.Lock()
		listener, ok := m.listeners[id]
		m.listenerLock.Unlock()
		if ok {
			listener(event)
		}
	}
}

func (m *Manager) deleteStoredKeys(ctx context.Context) {
	if err := m.storage.Delete(ctx, AccessTokenKey, RefreshTokenKey); err != nil {
		logrus.WithError(err).Warnln("Failed to clear stored credentials")
	}
}

// setAuthenticated and setAnonymous expect the lock to be held.
func (m *Manager) setAuthenticated(identity *models.Identity, access, refresh string) {
	m.state = models.StateAuthenticated
	m.identity = copyIdentity(identity)
	m.accessToken = access
	m.refreshToken = refresh
}

func (m *Manager) setAnonymous() {
	m.state = models.StateAnonymous
	m.identity = nil
	m.accessToken = ""
	m.refreshToken = ""
}

func (m *Manager) eventLocked(kind models.EventKind) models.Event {
	return models.Event{
		Kind:     kind,
		State:    m.state,
		Identity: copyIdentity(m.identity),
	}
}

func copyIdentity(identity *models.Identity) *models.Identity {
	if identity == nil {
		return nil
	}
	clone := *identity
	return &clone
}
