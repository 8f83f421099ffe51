package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pressmate/media-crm/api/internal/dto"
	middlewarepkg "github.com/pressmate/media-crm/api/internal/middleware"
	"github.com/pressmate/media-crm/api/internal/service"
)

// ImportHandler exposes the candidate import trigger.
type ImportHandler struct {
	importer *service.Importer
}

// NewImportHandler constructs an import handler.
func NewImportHandler(importer *service.Importer) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// Trigger validates the request and imports one batch of eligible
// candidates into the target organization. The acting user is taken from
// the authenticated request context.
func (h *ImportHandler) Trigger(c echo.Context) error {
	var req dto.ImportRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return Error(c, http.StatusBadRequest, "organization_id is required")
	}

	actor, _ := c.Get(middlewarepkg.ContextKeyUserEmail).(string)
	if actor == "" {
		actor = "system"
	}

	summary, err := h.importer.Run(c.Request().Context(), service.ImportOptions{
		MinScore:       req.MinScore,
		UseMergeAssist: req.UseMergeAssist,
		Actor:          actor,
		OrganizationID: orgID,
	})
	if err != nil {
		return Error(c, http.StatusInternalServerError, "import failed: "+err.Error())
	}

	return Success(c, http.StatusOK, "import completed", dto.ImportResponse{
		Processed: summary.Processed,
		Imported:  summary.Imported,
		Failed:    summary.Failed,
		Errors:    summary.Errors,
	})
}
