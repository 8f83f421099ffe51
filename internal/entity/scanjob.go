package entity

import (
	"time"

	"github.com/google/uuid"
)

// Scan job states.
const (
	ScanJobStatusRunning   = "running"
	ScanJobStatusCompleted = "completed"
	ScanJobStatusFailed    = "failed"
)

// Scan trigger modes.
const (
	ScanTriggerManual    = "manual"
	ScanTriggerAutomatic = "automatic"
)

// ScanOptions captures the knobs a scan run was started with.
type ScanOptions struct {
	MinOrganizations int         `json:"min_organizations"`
	MinScore         int         `json:"min_score"`
	DevelopmentMode  bool        `json:"development_mode"`
	OrganizationIDs  []uuid.UUID `json:"organization_ids,omitempty"`
}

// ScanStats aggregates counters over one detection pass. Skip counters are
// observability, not errors.
type ScanStats struct {
	OrganizationsScanned int `json:"organizations_scanned"`
	ContactsScanned      int `json:"contacts_scanned"`
	CandidatesCreated    int `json:"candidates_created"`
	CandidatesUpdated    int `json:"candidates_updated"`
	Errors               int `json:"errors"`
	SkippedReference     int `json:"skipped_reference"`
	SkippedNoKey         int `json:"skipped_no_key"`
}

// ScanJob records one execution of the detection pass. It is created in
// running state and finalized exactly once, never mutated afterward.
type ScanJob struct {
	ID         uuid.UUID   `json:"id"`
	Status     string      `json:"status"`
	Trigger    string      `json:"trigger"`
	Options    ScanOptions `json:"options"`
	Stats      ScanStats   `json:"stats"`
	Error      *string     `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}
