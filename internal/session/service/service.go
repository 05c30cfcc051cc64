// Package service implements session lifecycle: creation with a fresh token,
// token resolution, active-session listing, and early termination.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	orgdomain "ble-attendance/backend/internal/org/domain"
	"ble-attendance/backend/internal/session/domain"
	"ble-attendance/backend/internal/session/repository"
	"ble-attendance/backend/internal/token"
)

// Sentinel errors for the session service; callers branch on these, not on strings.
var (
	ErrOrgNotFound     = errors.New("organization not found")
	ErrSessionNotFound = errors.New("session not found")
	// ErrTokenExhausted means token generation collided with stored tokens on
	// every attempt. With a 64-bit token space this indicates a broken random
	// source or a store fault, so the service fails loudly instead of retrying
	// forever or degrading entropy.
	ErrTokenExhausted = errors.New("could not issue a unique session token")
)

// maxTokenAttempts bounds regeneration on token insert conflict.
const maxTokenAttempts = 3

// SessionRepo is the minimal session repository needed by the service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	GetByToken(ctx context.Context, tok string) (*domain.Session, error)
	ListActiveByOrg(ctx context.Context, orgID string, now time.Time) ([]*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Terminate(ctx context.Context, id string, now time.Time) error
}

// OrgRepo is the minimal organization repository needed by the service.
type OrgRepo interface {
	GetByID(ctx context.Context, id string) (*orgdomain.Org, error)
}

// AuditLogger records session lifecycle events, best-effort.
type AuditLogger interface {
	LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string)
}

// Service implements the session store operations.
type Service struct {
	sessions   SessionRepo
	orgs       OrgRepo
	gen        *token.Generator
	audit      AuditLogger
	defaultTTL time.Duration
	nowF       func() time.Time
}

// New returns a Service with the given dependencies. audit may be nil.
func New(sessions SessionRepo, orgs OrgRepo, gen *token.Generator, audit AuditLogger, defaultTTL time.Duration) *Service {
	return &Service{
		sessions:   sessions,
		orgs:       orgs,
		gen:        gen,
		audit:      audit,
		defaultTTL: defaultTTL,
		nowF:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateParams are the inputs for opening a session.
type CreateParams struct {
	OrgID     string
	Title     string
	StartsAt  time.Time     // zero means now
	TTL       time.Duration // zero means the configured default
	CreatedBy string        // officer opening the session
}

// Created is the outcome of Create: the persisted session plus the entropy of
// its token, reported so callers can surface the security floor actually met.
type Created struct {
	Session     *domain.Session
	EntropyBits float64
}

// Create opens a session for the org with a freshly generated token.
// On token insert conflict it regenerates up to maxTokenAttempts times,
// then returns ErrTokenExhausted.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Created, error) {
	org, err := s.orgs.GetByID(ctx, p.OrgID)
	if err != nil {
		return nil, fmt.Errorf("load organization: %w", err)
	}
	if org == nil {
		return nil, ErrOrgNotFound
	}

	now := s.nowF()
	startsAt := p.StartsAt
	if startsAt.IsZero() {
		startsAt = now
	}
	ttl := p.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	sess := &domain.Session{
		OrgID:     org.ID,
		Title:     p.Title,
		StartsAt:  startsAt,
		EndsAt:    startsAt.Add(ttl),
		IsActive:  true,
		CreatedBy: p.CreatedBy,
		CreatedAt: now,
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		tok, err := s.gen.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}
		sess.ID = uuid.NewString()
		sess.Token = tok

		err = s.sessions.Create(ctx, sess)
		if err == nil {
			if s.audit != nil {
				s.audit.LogEvent(ctx, sess.OrgID, p.CreatedBy, "session.create", sess.ID, sess.Title)
			}
			return &Created{Session: sess, EntropyBits: token.EntropyBits(s.gen.Length())}, nil
		}
		if !errors.Is(err, repository.ErrTokenConflict) {
			return nil, fmt.Errorf("store session: %w", err)
		}
	}
	return nil, ErrTokenExhausted
}

// Resolved is the answer to a token lookup.
type Resolved struct {
	Session   *domain.Session
	IsValid   bool // window currently contains now
	ExpiresAt time.Time
}

// ResolveByToken looks a session up by its token. The token format is checked
// before any store call; a malformed value returns token.ErrInvalidFormat.
func (s *Service) ResolveByToken(ctx context.Context, tok string) (*Resolved, error) {
	if err := s.gen.Validate(tok); err != nil {
		return nil, err
	}
	sess, err := s.sessions.GetByToken(ctx, tok)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return &Resolved{
		Session:   sess,
		IsValid:   sess.UsableAt(s.nowF()),
		ExpiresAt: sess.EndsAt,
	}, nil
}

// ActiveByOrg returns the org's currently active sessions, oldest first.
func (s *Service) ActiveByOrg(ctx context.Context, orgID string) ([]*domain.Session, error) {
	return s.sessions.ListActiveByOrg(ctx, orgID, s.nowF())
}

// Terminate ends the session early by pulling ends_at to now. Terminating a
// session whose window already closed is a no-op, not an error.
func (s *Service) Terminate(ctx context.Context, id string) error {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrSessionNotFound
	}
	now := s.nowF()
	if err := s.sessions.Terminate(ctx, id, now); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, sess.OrgID, sess.CreatedBy, "session.terminate", sess.ID, "")
	}
	return nil
}
