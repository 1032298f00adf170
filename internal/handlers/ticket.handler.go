package handlers

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/services"
	xhttp "github.com/transitops/ticket-backoffice/pkg/http"
)

type TicketService interface {
	Ingest(ctx context.Context, raw string) (*services.IngestResult, error)
	IngestTripClose(ctx context.Context, raw string) (bool, error)
	List(ctx context.Context, f model.TicketFilter) ([]*model.TicketTransaction, int64, error)
}

type TicketHandler struct {
	svc TicketService
}

// RegisterDeviceCallbackRoutes registers the unauthenticated endpoint
// handheld devices post their packets to. It lives outside the session
// group: devices authenticate by being provisioned, not by cookie.
func RegisterDeviceCallbackRoutes(e *router.Group, h *TicketHandler) {
	e.GET("/device/data", h.DeviceData)
}

func RegisterTicketRoutes(e *router.Group, h *TicketHandler, auth Middleware) {
	e.GET("/tickets", auth(h.ListTickets))
}

func NewTicketHandler(ticketService TicketService) *TicketHandler {
	return &TicketHandler{
		svc: ticketService,
	}
}

type ticketListResponse struct {
	Items []*model.TicketTransaction `json:"items"`
	Total int64                      `json:"total"`
}

// DeviceData accepts the pipe-delimited `fn` payload. The ack is plain
// text because the device firmware string-matches it: a stored or
// already-stored packet both get SUCCESS so the device stops retrying,
// anything else gets an ERROR token.
func (h *TicketHandler) DeviceData(ctx *xhttp.RequestCtx) {
	raw := query(ctx, "fn")
	if strings.TrimSpace(raw) == "" {
		writeAck(ctx, 400, "ERROR|no input data")
		return
	}

	if strings.HasPrefix(raw, "C|") {
		if _, err := h.svc.IngestTripClose(ctx, raw); err != nil {
			writeAck(ctx, 500, "ERROR|"+err.Error())
			return
		}
		writeAck(ctx, 200, "C|SUCCESS")
		return
	}

	res, err := h.svc.Ingest(ctx, raw)
	if err != nil {
		writeAck(ctx, 500, "ERROR|"+err.Error())
		return
	}
	writeAck(ctx, 200, res.Ticket.TicketNumber+"|SUCCESS")
}

func (h *TicketHandler) ListTickets(ctx *xhttp.RequestCtx) {
	var f model.TicketFilter

	if v := query(ctx, "device_id"); v != "" {
		f.DeviceID = &v
	}
	if v := query(ctx, "company_code"); v != "" {
		f.CompanyCode = &v
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
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, ticketListResponse{Items: items, Total: total})
}

func writeAck(ctx *xhttp.RequestCtx, status int, body string) {
	ctx.Response.Header.Set("Content-Type", "text/plain; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyString(body)
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func paramInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	idStr := ctx.QueryArgs().Peek(name)
	return strconv.ParseInt(string(idStr), 10, 64)
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
