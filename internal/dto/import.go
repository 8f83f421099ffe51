package dto

// ImportRequest is the payload accepted by the import trigger endpoint.
type ImportRequest struct {
	MinScore       int    `json:"min_score,omitempty"`
	UseMergeAssist bool   `json:"use_merge_assist,omitempty"`
	OrganizationID string `json:"organization_id"`
}

// ImportResponse reports the outcome of one import batch.
type ImportResponse struct {
	Processed int      `json:"processed"`
	Imported  int      `json:"imported"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}
