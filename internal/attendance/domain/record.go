package domain

import "time"

// Method distinguishes how an attendance record was captured.
type Method string

const (
	MethodBLE    Method = "ble"
	MethodManual Method = "manual"
)

// Record is one attendance event. The store enforces at most one record per
// (SessionID, SubjectID) pair with a uniqueness constraint; everything above
// it treats a duplicate as a benign outcome, never an error.
type Record struct {
	ID         string
	SessionID  string
	SubjectID  string // the checking-in member
	Method     Method
	RecordedBy string // session owner/officer, for audit
	RecordedAt time.Time
}

// Outcome classifies a check-in attempt. These are business outcomes callers
// pattern-match on, distinct from transport or store faults.
type Outcome string

const (
	OutcomeRecorded        Outcome = "recorded"
	OutcomeAlreadyRecorded Outcome = "already_recorded"
	OutcomeSessionExpired  Outcome = "session_expired"
	OutcomeSessionNotFound Outcome = "session_not_found"
)
