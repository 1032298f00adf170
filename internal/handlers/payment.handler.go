package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/fasthttp/router"

	"github.com/transitops/ticket-backoffice/internal/model"
	xhttp "github.com/transitops/ticket-backoffice/pkg/http"
)

type PaymentService interface {
	HandleWebhook(ctx context.Context, req model.PaymentCreateRequest, raw string) (*model.PaymentTransaction, error)
	Verify(ctx context.Context, paymentID int64, verdict model.VerificationStatus, verifierID int64, notes string) (*model.PaymentTransaction, error)
	Get(ctx context.Context, paymentID int64) (*model.PaymentTransaction, error)
	PendingVerification(ctx context.Context, limit, offset int) ([]*model.PaymentTransaction, int64, error)
	List(ctx context.Context, f model.PaymentFilter) ([]*model.PaymentTransaction, int64, error)
}

type PaymentHandler struct {
	svc PaymentService
}

// RegisterPaymentWebhookRoutes registers the gateway callback outside
// the session group; the gateway signs requests, it does not log in.
func RegisterPaymentWebhookRoutes(e *router.Group, h *PaymentHandler) {
	e.POST("/payments/webhook", h.Webhook)
}

func RegisterPaymentRoutes(e *router.Group, h *PaymentHandler, auth Middleware) {
	e.GET("/payments", auth(h.ListPayments))
	e.GET("/payments/pending", auth(h.PendingVerification))
	e.GET("/payments/{id}", auth(h.GetPayment))
	e.POST("/payments/{id}/verify", auth(h.VerifyPayment))
}

func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{
		svc: paymentService,
	}
}

type paymentListResponse struct {
	Items []*model.PaymentTransaction `json:"items"`
	Total int64                       `json:"total"`
}

type verifyRequest struct {
	Verdict string `json:"verdict"`
	Notes   string `json:"notes"`
}

// Webhook always acknowledges a well-formed settlement; reconciliation
// happens asynchronously once the stored event is consumed.
func (h *PaymentHandler) Webhook(ctx *xhttp.RequestCtx) {
	raw := string(ctx.PostBody())

	var req model.PaymentCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	payment, err := h.svc.HandleWebhook(ctx, req, raw)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	writeJSON(ctx, 201, map[string]any{"status": "accepted", "payment_id": payment.ID})
}

func (h *PaymentHandler) GetPayment(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid payment id")
		return
	}

	payment, err := h.svc.Get(ctx, id)
	if err != nil {
		writeError(ctx, 404, err.Error())
		return
	}
	writeJSON(ctx, 200, payment)
}

func (h *PaymentHandler) PendingVerification(ctx *xhttp.RequestCtx) {
	limit, offset := pageArgs(ctx)

	items, total, err := h.svc.PendingVerification(ctx, limit, offset)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, paymentListResponse{Items: items, Total: total})
}

func (h *PaymentHandler) VerifyPayment(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}

	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid payment id")
		return
	}

	var req verifyRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	payment, err := h.svc.Verify(ctx, id, model.VerificationStatus(req.Verdict), claims.UserID, req.Notes)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, payment)
}

func (h *PaymentHandler) ListPayments(ctx *xhttp.RequestCtx) {
	var f model.PaymentFilter

	if v := query(ctx, "reconciliation_status"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				f.ReconciliationStatuses = append(f.ReconciliationStatuses, model.ReconciliationStatus(part))
			}
		}
	}
	if v := query(ctx, "verification_status"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				f.VerificationStatuses = append(f.VerificationStatuses, model.VerificationStatus(part))
			}
		}
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
	}
	f.Limit, f.Offset = pageArgs(ctx)
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, paymentListResponse{Items: items, Total: total})
}

func pageArgs(ctx *xhttp.RequestCtx) (limit, offset int) {
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			offset = n
		}
	}
	return limit, offset
}
