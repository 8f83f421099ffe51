package dto

// CandidateFilter contains query parameters for candidate listing endpoints.
type CandidateFilter struct {
	Status    string
	MatchType string
	MinScore  *int
	Page      int
	PerPage   int
}
