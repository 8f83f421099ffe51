package dto

// ScanRequest is the payload accepted by the scan trigger endpoint. Zero
// values defer to the configured defaults.
type ScanRequest struct {
	MinOrganizations int      `json:"min_organizations,omitempty"`
	MinScore         int      `json:"min_score,omitempty"`
	DevelopmentMode  bool     `json:"development_mode,omitempty"`
	OrganizationIDs  []string `json:"organization_ids,omitempty"`
}

// ScanResponse summarises a finished scan run for API clients.
type ScanResponse struct {
	JobID                string `json:"job_id"`
	Status               string `json:"status"`
	OrganizationsScanned int    `json:"organizations_scanned"`
	ContactsScanned      int    `json:"contacts_scanned"`
	CandidatesCreated    int    `json:"candidates_created"`
	CandidatesUpdated    int    `json:"candidates_updated"`
	Errors               int    `json:"errors"`
	SkippedReference     int    `json:"skipped_reference"`
	SkippedNoKey         int    `json:"skipped_no_key"`
}
