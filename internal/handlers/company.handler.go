package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/services"
	xhttp "github.com/transitops/ticket-backoffice/pkg/http"
)

type CompanyService interface {
	Create(ctx context.Context, req model.CompanyCreateRequest) (*model.Company, error)
	Get(ctx context.Context, id int64) (*model.Company, error)
	List(ctx context.Context, limit, offset int) ([]*model.Company, int64, error)
	UpdateProfile(ctx context.Context, company *model.Company) (*model.Company, error)
}

type LicenseValidator interface {
	StartValidation(ctx context.Context, companyID int64) error
}

type CompanyHandler struct {
	svc     CompanyService
	license LicenseValidator
}

func RegisterCompanyRoutes(e *router.Group, h *CompanyHandler, auth Middleware) {
	e.POST("/companies", auth(h.CreateCompany))
	e.GET("/companies", auth(h.ListCompanies))
	e.GET("/companies/{id}", auth(h.GetCompany))
	e.PUT("/companies/{id}", auth(h.UpdateCompany))
	e.POST("/companies/{id}/validate-license", auth(h.ValidateLicense))
}

func NewCompanyHandler(companyService CompanyService, licenseService LicenseValidator) *CompanyHandler {
	return &CompanyHandler{
		svc:     companyService,
		license: licenseService,
	}
}

type companyListResponse struct {
	Items []*model.Company `json:"items"`
	Total int64            `json:"total"`
}

func (h *CompanyHandler) CreateCompany(ctx *xhttp.RequestCtx) {
	var req model.CompanyCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	company, err := h.svc.Create(ctx, req)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, company)
}

func (h *CompanyHandler) GetCompany(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid company id")
		return
	}

	company, err := h.svc.Get(ctx, id)
	if err != nil {
		writeError(ctx, 404, err.Error())
		return
	}
	writeJSON(ctx, 200, company)
}

func (h *CompanyHandler) ListCompanies(ctx *xhttp.RequestCtx) {
	limit, offset := pageArgs(ctx)

	items, total, err := h.svc.List(ctx, limit, offset)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, companyListResponse{Items: items, Total: total})
}

func (h *CompanyHandler) UpdateCompany(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid company id")
		return
	}

	var company model.Company
	if err := readJSON(ctx, &company); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	company.ID = id

	updated, err := h.svc.UpdateProfile(ctx, &company)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, updated)
}

// ValidateLicense kicks off the background authority check and returns
// immediately; clients poll GET /companies/{id} to watch the status
// change off Validating.
func (h *CompanyHandler) ValidateLicense(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid company id")
		return
	}

	if err := h.license.StartValidation(ctx, id); err != nil {
		if errors.Is(err, services.ErrValidationRunning) {
			writeJSON(ctx, 409, map[string]string{
				"status": string(model.AuthStatusValidating),
				"error":  "a validation run is already in progress",
			})
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}

	writeJSON(ctx, 202, map[string]string{"status": string(model.AuthStatusValidating)})
}
