package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/transitops/ticket-backoffice/internal/model"
	xhttp "github.com/transitops/ticket-backoffice/pkg/http"
)

type UserService interface {
	Create(ctx context.Context, req model.UserCreateRequest) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, companyID *int64, limit, offset int) ([]*model.User, int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type UserHandler struct {
	svc UserService
}

func RegisterUserRoutes(e *router.Group, h *UserHandler, auth Middleware) {
	e.POST("/users", auth(h.CreateUser))
	e.GET("/users", auth(h.ListUsers))
	e.GET("/users/{id}", auth(h.GetUser))
	e.POST("/users/{id}/activate", auth(h.ActivateUser))
	e.POST("/users/{id}/deactivate", auth(h.DeactivateUser))
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{
		svc: userService,
	}
}

type userListResponse struct {
	Items []*model.User `json:"items"`
	Total int64         `json:"total"`
}

func (h *UserHandler) CreateUser(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}

	var req model.UserCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	// Company admins can only create users inside their own company.
	if claims.CompanyID != nil {
		req.CompanyID = claims.CompanyID
	}

	user, err := h.svc.Create(ctx, req)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, user)
}

func (h *UserHandler) GetUser(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid user id")
		return
	}

	user, err := h.svc.Get(ctx, id)
	if err != nil {
		writeError(ctx, 404, err.Error())
		return
	}
	writeJSON(ctx, 200, user)
}

func (h *UserHandler) ListUsers(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}

	companyID := claims.CompanyID
	if companyID == nil {
		if id, err := paramInt64(ctx, "company_id"); err == nil {
			companyID = &id
		}
	}

	limit, offset := pageArgs(ctx)
	items, total, err := h.svc.List(ctx, companyID, limit, offset)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, userListResponse{Items: items, Total: total})
}

func (h *UserHandler) ActivateUser(ctx *xhttp.RequestCtx) {
	h.setActive(ctx, true)
}

func (h *UserHandler) DeactivateUser(ctx *xhttp.RequestCtx) {
	h.setActive(ctx, false)
}

func (h *UserHandler) setActive(ctx *xhttp.RequestCtx, active bool) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid user id")
		return
	}

	if err := h.svc.SetActive(ctx, id, active); err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]bool{"is_active": active})
}
