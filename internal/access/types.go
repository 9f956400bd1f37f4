package access

import "time"

// Status is the legal access classification for a substance in a country.
type Status string

const (
	StatusUnknown         Status = "Unknown"
	StatusBanned          Status = "Banned"
	StatusLimitedTrials   Status = "LimitedAccessTrials"
	StatusApprovedMedical Status = "ApprovedMedicalUse"
)

// Known reports whether the status is part of the closed enumeration.
// Matching is case-sensitive.
func (s Status) Known() bool {
	switch s {
	case StatusUnknown, StatusBanned, StatusLimitedTrials, StatusApprovedMedical:
		return true
	}
	return false
}

// Record is one normalized access fact produced during a run. Records are
// transient: they exist to drive a reconciliation decision and are then
// discarded.
type Record struct {
	Substance   string    `json:"substance"`
	CountryCode string    `json:"country_code"`
	Status      Status    `json:"access_status"`
	ObservedAt  time.Time `json:"observed_at"`
}

// Key identifies the (substance, country) pair a record describes.
func (r Record) Key() string {
	return r.Substance + "/" + r.CountryCode
}
