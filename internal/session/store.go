// Package session scopes analyses to caller-supplied facility sets. Each
// session is keyed by an opaque random identifier and lives for two hours
// from its last access; expired sessions are reaped lazily on access and
// by a periodic sweep.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PLANiT-Institute/climate-risk/internal/facility"
	"github.com/PLANiT-Institute/climate-risk/pkg/messaging"
)

// DefaultTTL is the sliding idle lifetime of a session.
const DefaultTTL = 2 * time.Hour

// ErrSessionNotFound covers unknown and expired identifiers alike so a
// lookup cannot reveal whether an id ever existed.
var ErrSessionNotFound = errors.New("session not found or expired")

// Session is one caller-owned facility set.
type Session struct {
	ID             string              `json:"partner_id"`
	CompanyName    string              `json:"company_name"`
	Facilities     []facility.Facility `json:"facilities"`
	SectorWarnings []string            `json:"sector_warnings,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccess     time.Time           `json:"last_access"`
}

// Store holds sessions behind a mutex. Reads hand out snapshots, so a
// concurrent delete can never corrupt an in-flight read.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	msg      *messaging.Client // optional event bus
}

// Config holds store configuration.
type Config struct {
	TTL       time.Duration
	Now       func() time.Time
	Messaging *messaging.Client
}

// NewStore creates a session store.
func NewStore(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      cfg.TTL,
		now:      cfg.Now,
		msg:      cfg.Messaging,
	}
}

// Create registers a new session over a validated facility set and returns
// its snapshot. Unknown sectors are accepted with warnings.
func (s *Store) Create(ctx context.Context, companyName string, facilities []facility.Facility) (Session, error) {
	warnings, err := facility.ValidateAll(facilities)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	sess := &Session{
		ID:             uuid.New().String(),
		CompanyName:    companyName,
		Facilities:     append([]facility.Facility(nil), facilities...),
		SectorWarnings: warnings,
		CreatedAt:      now,
		LastAccess:     now,
	}

	s.mu.Lock()
	s.reapLocked(now)
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.publish(ctx, messaging.EventTypeSessionCreated, messaging.SessionEvent{
		SessionID:     sess.ID,
		CompanyName:   sess.CompanyName,
		FacilityCount: len(sess.Facilities),
	})
	return snapshot(sess), nil
}

// Get returns a session snapshot and slides its TTL window forward.
func (s *Store) Get(id string) (Session, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked(now)

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	sess.LastAccess = now
	return snapshot(sess), nil
}

// Touch slides the TTL window without reading the facility set.
func (s *Store) Touch(id string) error {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked(now)

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccess = now
	return nil
}

// Facilities returns a copy of the session's facility set, sliding its TTL.
func (s *Store) Facilities(id string) ([]facility.Facility, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Facilities, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// ExpiresIn reports the remaining lifetime of a session snapshot.
func (s *Store) ExpiresIn(sess Session) time.Duration {
	remaining := sess.LastAccess.Add(s.ttl).Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Len reports the live session count after reaping.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked(s.now())
	return len(s.sessions)
}

// Sweep reaps expired sessions; the periodic reaper calls this.
func (s *Store) Sweep(ctx context.Context) int {
	now := s.now()
	s.mu.Lock()
	expired := s.expiredLocked(now)
	for _, sess := range expired {
		delete(s.sessions, sess.ID)
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.publish(ctx, messaging.EventTypeSessionExpired, messaging.SessionEvent{
			SessionID:     sess.ID,
			CompanyName:   sess.CompanyName,
			FacilityCount: len(sess.Facilities),
		})
	}
	return len(expired)
}

// reapLocked drops expired entries; callers hold the write lock. Entries
// removed here get no session.expired event; only Sweep publishes expiry
// events, for the entries it removes itself.
func (s *Store) reapLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.LastAccess) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *Store) expiredLocked(now time.Time) []*Session {
	var expired []*Session
	for _, sess := range s.sessions {
		if now.Sub(sess.LastAccess) > s.ttl {
			expired = append(expired, sess)
		}
	}
	return expired
}

func (s *Store) publish(ctx context.Context, eventType string, data interface{}) {
	if s.msg == nil {
		return
	}
	event, err := messaging.NewEvent(eventType, data, messaging.EventMetadata{Source: "session-store"})
	if err != nil {
		return
	}
	// Best effort; session lifecycle must not depend on the bus.
	_ = s.msg.Publish(ctx, eventType, event)
}

func snapshot(sess *Session) Session {
	out := *sess
	out.Facilities = append([]facility.Facility(nil), sess.Facilities...)
	out.SectorWarnings = append([]string(nil), sess.SectorWarnings...)
	return out
}
