package domain

import (
	"errors"
	"time"
)

// Org represents an organization/tenant.
//
// Code is the small positive integer broadcast in the beacon major field.
// Within the active-session window the mapping Code <-> ID must be bijective;
// the store enforces it with a unique index on the code column.
type Org struct {
	ID        string
	Code      uint16
	Name      string
	Status    OrgStatus
	CreatedAt time.Time
}

type OrgStatus string

const (
	OrgStatusActive    OrgStatus = "active"
	OrgStatusSuspended OrgStatus = "suspended"
)

// Validate validates the organization for persistence. Returns an error describing the first validation failure.
func (o *Org) Validate() error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	if o.Code == 0 {
		return errors.New("code must be a positive integer")
	}
	if o.Status == "" {
		o.Status = OrgStatusActive
	}
	return nil
}
