package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pressmate/media-crm/api/internal/dto"
	"github.com/pressmate/media-crm/api/internal/entity"
	"github.com/pressmate/media-crm/api/internal/repository"
	"github.com/pressmate/media-crm/api/internal/service"
)

// ScanHandler exposes the matching scan trigger and scan job lookups.
type ScanHandler struct {
	scanner *service.Scanner
	jobs    repository.ScanJobsRepository
}

// NewScanHandler constructs a scan handler.
func NewScanHandler(scanner *service.Scanner, jobs repository.ScanJobsRepository) *ScanHandler {
	return &ScanHandler{scanner: scanner, jobs: jobs}
}

// Trigger validates the request and runs a manual detection pass.
func (h *ScanHandler) Trigger(c echo.Context) error {
	var req dto.ScanRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	orgIDs := make([]uuid.UUID, 0, len(req.OrganizationIDs))
	for _, raw := range req.OrganizationIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid organization id: "+raw)
		}
		orgIDs = append(orgIDs, id)
	}

	job, err := h.scanner.Run(c.Request().Context(), service.ScanOptions{
		MinOrganizations: req.MinOrganizations,
		MinScore:         req.MinScore,
		DevelopmentMode:  req.DevelopmentMode,
		Trigger:          entity.ScanTriggerManual,
		OrganizationIDs:  orgIDs,
	})
	if err != nil {
		return Error(c, http.StatusInternalServerError, "scan failed: "+err.Error())
	}

	return Success(c, http.StatusOK, "scan completed", scanResponseFromJob(job))
}

// ListJobs returns recent scan runs, newest first.
func (h *ScanHandler) ListJobs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	jobs, err := h.jobs.List(c.Request().Context(), limit)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list scan jobs")
	}
	return Success(c, http.StatusOK, "scan jobs", jobs)
}

// GetJob returns one scan run by id.
func (h *ScanHandler) GetJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid job id")
	}

	job, err := h.jobs.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrScanJobNotFound) {
			return Error(c, http.StatusNotFound, "scan job not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to fetch scan job")
	}
	return Success(c, http.StatusOK, "scan job", job)
}

func scanResponseFromJob(job *entity.ScanJob) dto.ScanResponse {
	return dto.ScanResponse{
		JobID:                job.ID.String(),
		Status:               job.Status,
		OrganizationsScanned: job.Stats.OrganizationsScanned,
		ContactsScanned:      job.Stats.ContactsScanned,
		CandidatesCreated:    job.Stats.CandidatesCreated,
		CandidatesUpdated:    job.Stats.CandidatesUpdated,
		Errors:               job.Stats.Errors,
		SkippedReference:     job.Stats.SkippedReference,
		SkippedNoKey:         job.Stats.SkippedNoKey,
	}
}
