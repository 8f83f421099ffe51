package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pressmate/media-crm/api/internal/dto"
	"github.com/pressmate/media-crm/api/internal/entity"
	middlewarepkg "github.com/pressmate/media-crm/api/internal/middleware"
	"github.com/pressmate/media-crm/api/internal/repository"
	"github.com/pressmate/media-crm/api/internal/service"
)

type stubCompaniesRepo struct{}

func (stubCompaniesRepo) FindByName(ctx context.Context, orgID uuid.UUID, name string) (*entity.Company, error) {
	return nil, repository.ErrCompanyNotFound
}

func (stubCompaniesRepo) Create(ctx context.Context, company *entity.Company) error {
	company.ID = uuid.New()
	return nil
}

func newTestImportHandler(candidates *stubCandidatesRepo, contacts *stubContactsRepo) *ImportHandler {
	importer := service.NewImporter(candidates, stubCompaniesRepo{}, stubPublicationsRepo{}, contacts, nil, service.ImportConfig{})
	return NewImportHandler(importer)
}

func TestImportHandlerTrigger(t *testing.T) {
	candidates := &stubCandidatesRepo{candidates: []entity.MatchingCandidate{
		{
			ID:        uuid.New(),
			MatchKey:  "jane.doe@spiegel.de",
			MatchType: entity.MatchTypeEmail,
			Score:     80,
			Status:    entity.CandidateStatusPending,
			Variants: []entity.CandidateVariant{
				{
					OrganizationID: uuid.New(),
					ContactID:      uuid.New(),
					Snapshot: entity.ContactSnapshot{
						FirstName: "Jane",
						LastName:  "Doe",
						Emails:    []string{"jane.doe@spiegel.de"},
					},
				},
			},
		},
	}}
	contacts := &stubContactsRepo{}
	h := newTestImportHandler(candidates, contacts)

	e := echo.New()
	body, _ := json.Marshal(dto.ImportRequest{OrganizationID: uuid.NewString()})
	req := httptest.NewRequest(http.MethodPost, "/admin/matching/import", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middlewarepkg.ContextKeyUserEmail, "admin@example.com")

	if err := h.Trigger(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Status string             `json:"status"`
		Data   dto.ImportResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Status != "success" {
		t.Fatalf("expected success envelope")
	}
	if envelope.Data.Processed != 1 || envelope.Data.Imported != 1 {
		t.Fatalf("unexpected summary: %+v", envelope.Data)
	}
}

func TestImportHandlerTriggerRequiresOrganization(t *testing.T) {
	h := newTestImportHandler(&stubCandidatesRepo{}, &stubContactsRepo{})

	e := echo.New()
	body, _ := json.Marshal(dto.ImportRequest{})
	req := httptest.NewRequest(http.MethodPost, "/admin/matching/import", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Trigger(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
