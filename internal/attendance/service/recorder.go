// Package service implements the attendance recorder: the single code path
// that turns a verified check-in attempt into at most one durable record.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ble-attendance/backend/internal/attendance/domain"
	orgdomain "ble-attendance/backend/internal/org/domain"
	sessiondomain "ble-attendance/backend/internal/session/domain"
)

// ErrUnknownOrg is returned when the session's organization cannot be loaded
// for the confirmation metadata.
var ErrUnknownOrg = errors.New("session organization not found")

// AttendanceRepo is the minimal attendance repository needed by the recorder.
type AttendanceRepo interface {
	InsertOnce(ctx context.Context, rec *domain.Record) (*domain.Record, bool, error)
}

// SessionRepo is the minimal session repository needed by the recorder.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	GetByToken(ctx context.Context, token string) (*sessiondomain.Session, error)
}

// OrgRepo is the minimal organization repository needed by the recorder.
type OrgRepo interface {
	GetByID(ctx context.Context, id string) (*orgdomain.Org, error)
}

// AuditLogger records check-in events, best-effort.
type AuditLogger interface {
	LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string)
}

// Result is the outcome of a record attempt plus the confirmation metadata
// the caller displays: which org and session the subject just checked into.
//
// Benign outcomes (AlreadyRecorded, SessionExpired, SessionNotFound) are
// values, not errors; an error from Record means a store fault the caller
// should retry.
type Result struct {
	Outcome domain.Outcome
	Record  *domain.Record // nil unless Recorded or AlreadyRecorded
	Session *sessiondomain.Session
	Org     *orgdomain.Org
}

// Recorder commits verified attendance events exactly once per (session, subject).
type Recorder struct {
	records  AttendanceRepo
	sessions SessionRepo
	orgs     OrgRepo
	audit    AuditLogger
	nowF     func() time.Time
}

// NewRecorder returns a Recorder with the given dependencies. audit may be nil.
func NewRecorder(records AttendanceRepo, sessions SessionRepo, orgs OrgRepo, audit AuditLogger) *Recorder {
	return &Recorder{
		records:  records,
		sessions: sessions,
		orgs:     orgs,
		audit:    audit,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// Record checks the subject into the session identified by sessionRef.
func (r *Recorder) Record(ctx context.Context, sessionRef, subjectID string, method domain.Method) (*Result, error) {
	sess, err := r.sessions.GetByID(ctx, sessionRef)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return r.record(ctx, sess, subjectID, method)
}

// RecordByToken checks the subject into the session holding token. Officer
// manual check-in paths use this form.
func (r *Recorder) RecordByToken(ctx context.Context, token, subjectID string, method domain.Method) (*Result, error) {
	sess, err := r.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return r.record(ctx, sess, subjectID, method)
}

func (r *Recorder) record(ctx context.Context, sess *sessiondomain.Session, subjectID string, method domain.Method) (*Result, error) {
	if sess == nil {
		return &Result{Outcome: domain.OutcomeSessionNotFound}, nil
	}
	org, err := r.orgs.GetByID(ctx, sess.OrgID)
	if err != nil {
		return nil, fmt.Errorf("load organization: %w", err)
	}
	if org == nil {
		return nil, ErrUnknownOrg
	}
	if !sess.UsableAt(r.nowF()) {
		return &Result{Outcome: domain.OutcomeSessionExpired, Session: sess, Org: org}, nil
	}

	rec := &domain.Record{
		ID:         uuid.NewString(),
		SessionID:  sess.ID,
		SubjectID:  subjectID,
		Method:     method,
		RecordedBy: sess.CreatedBy,
		RecordedAt: r.nowF(),
	}
	stored, created, err := r.records.InsertOnce(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("record attendance: %w", err)
	}
	if !created {
		return &Result{Outcome: domain.OutcomeAlreadyRecorded, Record: stored, Session: sess, Org: org}, nil
	}
	if r.audit != nil {
		r.audit.LogEvent(ctx, org.ID, subjectID, "attendance.record", sess.ID, string(method))
	}
	return &Result{Outcome: domain.OutcomeRecorded, Record: stored, Session: sess, Org: org}, nil
}
