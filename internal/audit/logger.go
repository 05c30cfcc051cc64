// Package audit writes best-effort audit events for session lifecycle and
// check-in code paths. Failures are logged and never affect the caller.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ble-attendance/backend/internal/audit/domain"
	auditrepo "ble-attendance/backend/internal/audit/repository"
)

// SentinelOrgID is the org_id used for audit events that have no org.
const SentinelOrgID = "_system"

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns an AuditLogger that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	if orgID == "" {
		orgID = SentinelOrgID
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", action).Str("resource", resource).
			Msg("audit: failed to log event")
	}
}
