package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pressmate/media-crm/api/internal/dto"
	"github.com/pressmate/media-crm/api/internal/entity"
	"github.com/pressmate/media-crm/api/internal/repository"
)

// CandidatesHandler exposes read access to matching candidates.
type CandidatesHandler struct {
	candidates repository.CandidatesRepository
}

// NewCandidatesHandler constructs a candidates handler.
func NewCandidatesHandler(candidates repository.CandidatesRepository) *CandidatesHandler {
	return &CandidatesHandler{candidates: candidates}
}

// List returns candidates matching the query filters.
func (h *CandidatesHandler) List(c echo.Context) error {
	filter, err := candidateFilterFromQuery(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	records, err := h.candidates.List(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list candidates")
	}
	if records == nil {
		records = []entity.MatchingCandidate{}
	}

	return Success(c, http.StatusOK, "candidates retrieved", records)
}

func candidateFilterFromQuery(c echo.Context) (dto.CandidateFilter, error) {
	filter := dto.CandidateFilter{
		Status:    c.QueryParam("status"),
		MatchType: c.QueryParam("match_type"),
		Page:      1,
		PerPage:   50,
	}

	switch filter.Status {
	case "", entity.CandidateStatusPending, entity.CandidateStatusImported:
	default:
		return filter, errors.New("invalid status filter")
	}
	switch filter.MatchType {
	case "", entity.MatchTypeEmail, entity.MatchTypeName:
	default:
		return filter, errors.New("invalid match_type filter")
	}

	if raw := c.QueryParam("min_score"); raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil || score < 0 || score > 100 {
			return filter, errors.New("min_score must be between 0 and 100")
		}
		filter.MinScore = &score
	}
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, errors.New("page must be a positive integer")
		}
		filter.Page = page
	}
	if raw := c.QueryParam("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 || perPage > 200 {
			return filter, errors.New("per_page must be between 1 and 200")
		}
		filter.PerPage = perPage
	}

	return filter, nil
}
