// Package auth keeps provider sessions for signed-in browsers and notifies
// subscribers when a session changes. It is a boundary guard only: the
// backend authorizes its own calls.
package auth

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mockmate/webapp/internal/model/auth"
)

var ErrSessionNotFound = errors.New("session not found")

// EventType tags a session-change notification.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventRefreshed EventType = "refreshed"
	EventSignedOut EventType = "signed_out"
)

// Event is delivered to subscribers of a session.
type Event struct {
	Type    EventType
	Session auth.Session
}

// Refresher exchanges a refresh token for a new session. Satisfied by
// authclient.Client.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (auth.Session, error)
}

// refreshSkew is how long before expiry a token is refreshed.
const refreshSkew = 30 * time.Second

type entry struct {
	session auth.Session
	subs    map[int]chan Event
	nextSub int
	cancel  context.CancelFunc
}

// Store is the in-memory session registry keyed by opaque cookie IDs.
type Store struct {
	refresher Refresher

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore builds a session store. refresher may be nil, in which case
// sessions simply expire instead of being renewed.
func NewStore(refresher Refresher) *Store {
	return &Store{
		refresher: refresher,
		entries:   make(map[string]*entry),
	}
}

// Create registers a provider session and returns the opaque ID the browser
// holds in its cookie. A background watcher keeps the tokens fresh.
func (s *Store) Create(session auth.Session) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.entries[id] = &entry{
		session: session,
		subs:    make(map[int]chan Event),
		cancel:  cancel,
	}
	s.mu.Unlock()

	if s.refresher != nil {
		go s.watch(ctx, id)
	}
	return id
}

// Get returns the current provider session for an ID. Expired sessions that
// could not be refreshed are reported as missing.
func (s *Store) Get(id string) (auth.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return auth.Session{}, false
	}
	if e.session.Expired(time.Now()) {
		return auth.Session{}, false
	}
	return e.session, true
}

// Delete drops a session and notifies subscribers that it signed out.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
		for _, ch := range e.subs {
			notify(ch, Event{Type: EventSignedOut})
			close(ch)
		}
		e.subs = nil
	}
	s.mu.Unlock()

	if ok {
		e.cancel()
	}
}

// Subscribe delivers session-change events for the given ID until the
// returned unsubscribe function is called. The initial signed-in state is
// delivered first, matching how the auth SDK's change listener behaves.
func (s *Store) Subscribe(id string) (<-chan Event, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	ch := make(chan Event, 4)
	key := e.nextSub
	e.nextSub++
	e.subs[key] = ch
	notify(ch, Event{Type: EventSignedIn, Session: e.session})

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, ok := s.entries[id]; ok {
			if ch, ok := e.subs[key]; ok {
				delete(e.subs, key)
				close(ch)
			}
		}
	}
	return ch, unsubscribe, nil
}

// watch refreshes the session's tokens shortly before they expire. A failed
// refresh signs the session out; there is no retry orchestration.
func (s *Store) watch(ctx context.Context, id string) {
	for {
		s.mu.RLock()
		e, ok := s.entries[id]
		if !ok {
			s.mu.RUnlock()
			return
		}
		expiresAt := e.session.ExpiresAt
		refreshToken := e.session.RefreshToken
		s.mu.RUnlock()

		if expiresAt.IsZero() || refreshToken == "" {
			return
		}

		wait := time.Until(expiresAt) - refreshSkew
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		refreshed, err := s.refresher.Refresh(ctx, refreshToken)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[auth] refresh failed for session=%s: %v", id, err)
			s.Delete(id)
			return
		}

		s.mu.Lock()
		e, ok = s.entries[id]
		if !ok {
			s.mu.Unlock()
			return
		}
		e.session = refreshed
		for _, ch := range e.subs {
			notify(ch, Event{Type: EventRefreshed, Session: refreshed})
		}
		s.mu.Unlock()
	}
}

// notify never blocks; a subscriber that stopped draining just misses the
// event. Callers hold s.mu, so a close from unsubscribe or Delete cannot
// race the send.
func notify(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
