package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ble-attendance/backend/internal/attendance/domain"
	orgdomain "ble-attendance/backend/internal/org/domain"
	sessiondomain "ble-attendance/backend/internal/session/domain"
)

type pairKey struct{ sessionID, subjectID string }

// memAttendanceRepo mirrors the store's semantics: the check-and-insert is a
// single critical section, like the locked session row.
type memAttendanceRepo struct {
	mu sync.Mutex
	m  map[pairKey]*domain.Record
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{m: map[pairKey]*domain.Record{}}
}

func (r *memAttendanceRepo) InsertOnce(ctx context.Context, rec *domain.Record) (*domain.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := pairKey{rec.SessionID, rec.SubjectID}
	if existing, ok := r.m[k]; ok {
		return existing, false, nil
	}
	r2 := *rec
	r.m[k] = &r2
	return &r2, true, nil
}

type memSessionRepo struct {
	byID    map[string]*sessiondomain.Session
	byToken map[string]*sessiondomain.Session
}

func (r *memSessionRepo) GetByID(ctx context.Context, id string) (*sessiondomain.Session, error) {
	return r.byID[id], nil
}

func (r *memSessionRepo) GetByToken(ctx context.Context, tok string) (*sessiondomain.Session, error) {
	return r.byToken[tok], nil
}

type memOrgRepo struct {
	m map[string]*orgdomain.Org
}

func (r *memOrgRepo) GetByID(ctx context.Context, id string) (*orgdomain.Org, error) {
	return r.m[id], nil
}

type memAudit struct {
	mu     sync.Mutex
	events []string
}

func (a *memAudit) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, action)
}

func newTestRecorder(t *testing.T) (*Recorder, *memAttendanceRepo, *memAudit) {
	t.Helper()
	now := time.Now().UTC()
	sess := &sessiondomain.Session{
		ID: "sess-1", OrgID: "org-1", Token: "ACDEFGHJKMNPQ", Title: "March Meeting",
		StartsAt: now.Add(-time.Minute), EndsAt: now.Add(time.Minute),
		IsActive: true, CreatedBy: "officer-1",
	}
	sessions := &memSessionRepo{
		byID:    map[string]*sessiondomain.Session{sess.ID: sess},
		byToken: map[string]*sessiondomain.Session{sess.Token: sess},
	}
	orgs := &memOrgRepo{m: map[string]*orgdomain.Org{
		"org-1": {ID: "org-1", Code: 1, Name: "Chapter One"},
	}}
	records := newMemAttendanceRepo()
	audit := &memAudit{}
	return NewRecorder(records, sessions, orgs, audit), records, audit
}

func TestRecord(t *testing.T) {
	rec, _, audit := newTestRecorder(t)

	res, err := rec.Record(context.Background(), "sess-1", "member-1", domain.MethodBLE)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if res.Outcome != domain.OutcomeRecorded {
		t.Fatalf("Outcome = %s, want recorded", res.Outcome)
	}
	if res.Record == nil || res.Record.SubjectID != "member-1" {
		t.Fatalf("Record = %+v, want record for member-1", res.Record)
	}
	if res.Record.RecordedBy != "officer-1" {
		t.Errorf("RecordedBy = %q, want session owner", res.Record.RecordedBy)
	}
	if res.Org == nil || res.Org.Name != "Chapter One" {
		t.Errorf("Org = %+v, want owning org for confirmation display", res.Org)
	}
	if len(audit.events) != 1 || audit.events[0] != "attendance.record" {
		t.Errorf("audit events = %v", audit.events)
	}
}

func TestRecord_Duplicate(t *testing.T) {
	rec, records, audit := newTestRecorder(t)

	first, err := rec.Record(context.Background(), "sess-1", "member-1", domain.MethodBLE)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	second, err := rec.Record(context.Background(), "sess-1", "member-1", domain.MethodBLE)
	if err != nil {
		t.Fatalf("second Record must not fail: %v", err)
	}
	if second.Outcome != domain.OutcomeAlreadyRecorded {
		t.Fatalf("Outcome = %s, want already_recorded", second.Outcome)
	}
	if second.Record.ID != first.Record.ID {
		t.Error("duplicate attempt should surface the original record")
	}
	if len(records.m) != 1 {
		t.Errorf("stored records = %d, want 1", len(records.m))
	}
	if len(audit.events) != 1 {
		t.Errorf("audit events = %v, duplicates must not be audited as new check-ins", audit.events)
	}
}

func TestRecord_ConcurrentSamePair(t *testing.T) {
	rec, records, _ := newTestRecorder(t)

	const n = 32
	outcomes := make([]domain.Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := rec.Record(context.Background(), "sess-1", "member-1", domain.MethodBLE)
			if err != nil {
				t.Errorf("Record: %v", err)
				return
			}
			outcomes[i] = res.Outcome
		}(i)
	}
	wg.Wait()

	recorded, already := 0, 0
	for _, o := range outcomes {
		switch o {
		case domain.OutcomeRecorded:
			recorded++
		case domain.OutcomeAlreadyRecorded:
			already++
		}
	}
	if recorded != 1 {
		t.Errorf("recorded outcomes = %d, want exactly 1", recorded)
	}
	if already != n-1 {
		t.Errorf("already_recorded outcomes = %d, want %d", already, n-1)
	}
	if len(records.m) != 1 {
		t.Errorf("stored records = %d, want exactly 1", len(records.m))
	}
}

func TestRecord_DifferentSubjects(t *testing.T) {
	rec, records, _ := newTestRecorder(t)

	for _, subject := range []string{"member-1", "member-2", "member-3"} {
		res, err := rec.Record(context.Background(), "sess-1", subject, domain.MethodBLE)
		if err != nil {
			t.Fatalf("Record(%s): %v", subject, err)
		}
		if res.Outcome != domain.OutcomeRecorded {
			t.Errorf("Record(%s) outcome = %s, want recorded", subject, res.Outcome)
		}
	}
	if len(records.m) != 3 {
		t.Errorf("stored records = %d, want 3", len(records.m))
	}
}

func TestRecord_SessionNotFound(t *testing.T) {
	rec, _, _ := newTestRecorder(t)

	res, err := rec.Record(context.Background(), "sess-missing", "member-1", domain.MethodBLE)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if res.Outcome != domain.OutcomeSessionNotFound {
		t.Fatalf("Outcome = %s, want session_not_found", res.Outcome)
	}
}

func TestRecord_SessionExpired(t *testing.T) {
	rec, _, _ := newTestRecorder(t)
	rec.nowF = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }

	res, err := rec.Record(context.Background(), "sess-1", "member-1", domain.MethodBLE)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if res.Outcome != domain.OutcomeSessionExpired {
		t.Fatalf("Outcome = %s, want session_expired", res.Outcome)
	}
	if res.Session == nil || res.Org == nil {
		t.Error("expired outcome should still carry session and org for the user message")
	}
}

func TestRecordByToken_ManualMethod(t *testing.T) {
	rec, _, _ := newTestRecorder(t)

	res, err := rec.RecordByToken(context.Background(), "ACDEFGHJKMNPQ", "member-1", domain.MethodManual)
	if err != nil {
		t.Fatalf("RecordByToken: %v", err)
	}
	if res.Outcome != domain.OutcomeRecorded {
		t.Fatalf("Outcome = %s, want recorded", res.Outcome)
	}
	if res.Record.Method != domain.MethodManual {
		t.Errorf("Method = %s, want manual", res.Record.Method)
	}
}
