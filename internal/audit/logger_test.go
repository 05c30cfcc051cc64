package audit

import (
	"context"
	"errors"
	"testing"

	"ble-attendance/backend/internal/audit/domain"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo)

	logger.LogEvent(context.Background(), "org-1", "member-1", "attendance.record", "sess-1", "ble")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.OrgID != "org-1" {
		t.Errorf("org_id = %q, want %q", entry.OrgID, "org-1")
	}
	if entry.UserID != "member-1" {
		t.Errorf("user_id = %q, want %q", entry.UserID, "member-1")
	}
	if entry.Action != "attendance.record" {
		t.Errorf("action = %q, want %q", entry.Action, "attendance.record")
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Error("entry should have generated ID and timestamp")
	}
}

func TestLogger_LogEvent_EmptyOrgUsesSentinel(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo)

	logger.LogEvent(context.Background(), "", "member-1", "attendance.record", "sess-1", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].OrgID != SentinelOrgID {
		t.Errorf("org_id = %q, want sentinel %q", repo.entries[0].OrgID, SentinelOrgID)
	}
}

func TestLogger_LogEvent_RepoErrorIsSwallowed(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	logger := NewLogger(repo)

	// Must not panic or propagate.
	logger.LogEvent(context.Background(), "org-1", "member-1", "attendance.record", "sess-1", "")
}

func TestLogger_NilRepoIsNoop(t *testing.T) {
	logger := NewLogger(nil)
	logger.LogEvent(context.Background(), "org-1", "member-1", "attendance.record", "sess-1", "")
}
