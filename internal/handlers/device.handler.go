package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/transitops/ticket-backoffice/internal/model"
	xhttp "github.com/transitops/ticket-backoffice/pkg/http"
)

type DeviceRegistryService interface {
	ListPending(ctx context.Context, companyID int64) ([]*model.DeviceMapping, error)
	ListForUser(ctx context.Context, userID int64) ([]*model.DeviceMapping, error)
	Approve(ctx context.Context, mappingID, approverID int64) (*model.DeviceMapping, error)
	Revoke(ctx context.Context, mappingID int64) error
}

type DeviceHandler struct {
	svc DeviceRegistryService
}

func RegisterDeviceRoutes(e *router.Group, h *DeviceHandler, auth Middleware) {
	e.GET("/devices/pending", auth(h.ListPending))
	e.GET("/devices/mine", auth(h.ListMine))
	e.POST("/devices/{id}/approve", auth(h.ApproveDevice))
	e.POST("/devices/{id}/revoke", auth(h.RevokeDevice))
}

func NewDeviceHandler(deviceService DeviceRegistryService) *DeviceHandler {
	return &DeviceHandler{
		svc: deviceService,
	}
}

func (h *DeviceHandler) ListPending(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}
	if !model.Role(claims.Role).CanApproveDevices() {
		writeError(ctx, 403, "insufficient privileges")
		return
	}

	companyID, ok := companyScope(ctx, claims)
	if !ok {
		return
	}

	items, err := h.svc.ListPending(ctx, companyID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *DeviceHandler) ListMine(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}

	items, err := h.svc.ListForUser(ctx, claims.UserID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *DeviceHandler) ApproveDevice(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}
	if !model.Role(claims.Role).CanApproveDevices() {
		writeError(ctx, 403, "insufficient privileges")
		return
	}

	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid mapping id")
		return
	}

	mapping, err := h.svc.Approve(ctx, id, claims.UserID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, mapping)
}

func (h *DeviceHandler) RevokeDevice(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}
	if !model.Role(claims.Role).CanApproveDevices() {
		writeError(ctx, 403, "insufficient privileges")
		return
	}

	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid mapping id")
		return
	}

	if err := h.svc.Revoke(ctx, id); err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "revoked"})
}
