package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/services"
	xhttp "github.com/transitops/ticket-backoffice/pkg/http"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

type AdmissionService interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	Logout(ctx context.Context, deviceUID string) error
	Refresh(ctx context.Context, refreshToken string) (*services.LoginResult, error)
}

type AuthHandler struct {
	svc          AdmissionService
	cookieSecure bool
}

func RegisterAuthRoutes(e *router.Group, h *AuthHandler, auth Middleware) {
	e.POST("/auth/login", h.Login)
	e.POST("/auth/logout", auth(h.Logout))
	e.POST("/auth/refresh", h.Refresh)
}

func NewAuthHandler(admissionService AdmissionService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		svc:          admissionService,
		cookieSecure: cookieSecure,
	}
}

type loginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	DeviceUID string `json:"device_uid"`
}

type loginResponse struct {
	User    *model.User          `json:"user"`
	Device  *model.DeviceMapping `json:"device,omitempty"`
	Expires time.Time            `json:"expires_at"`
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req loginRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	res, err := h.svc.Login(ctx, services.LoginRequest{
		Username:  req.Username,
		Password:  req.Password,
		DeviceUID: req.DeviceUID,
		UserAgent: string(ctx.Request.Header.UserAgent()),
	})
	if err != nil {
		h.writeLoginError(ctx, err)
		return
	}

	h.setSessionCookies(ctx, res.Tokens)
	writeJSON(ctx, 200, loginResponse{
		User:    res.User,
		Device:  res.Mapping,
		Expires: res.Tokens.AccessExpiresAt,
	})
}

func (h *AuthHandler) Logout(ctx *xhttp.RequestCtx) {
	claims := sessionFromCtx(ctx)
	if claims == nil {
		writeError(ctx, 401, "not authenticated")
		return
	}

	if err := h.svc.Logout(ctx, claims.DeviceUID); err != nil {
		writeError(ctx, 500, err.Error())
		return
	}

	h.clearSessionCookies(ctx)
	writeJSON(ctx, 200, map[string]string{"status": "logged_out"})
}

func (h *AuthHandler) Refresh(ctx *xhttp.RequestCtx) {
	token := string(ctx.Request.Header.Cookie(refreshCookieName))
	if token == "" {
		writeError(ctx, 401, "no refresh token")
		return
	}

	res, err := h.svc.Refresh(ctx, token)
	if err != nil {
		h.clearSessionCookies(ctx)
		writeError(ctx, 401, "session expired, log in again")
		return
	}

	h.setSessionCookies(ctx, res.Tokens)
	writeJSON(ctx, 200, loginResponse{
		User:    res.User,
		Expires: res.Tokens.AccessExpiresAt,
	})
}

// writeLoginError maps reason-coded admission failures onto the wire.
// The reason code is the contract with device clients; a pending device
// rejection additionally carries the mapping so the client can show
// which registration is awaiting approval.
func (h *AuthHandler) writeLoginError(ctx *xhttp.RequestCtx, err error) {
	var adm *services.AdmissionError
	if !errors.As(err, &adm) {
		writeError(ctx, 500, "login failed")
		return
	}

	status := 403
	if adm.Reason == services.ReasonInvalidCredentials {
		status = 401
	}

	body := map[string]any{
		"reason": adm.Reason,
		"error":  adm.Message,
	}
	if adm.Mapping != nil {
		body["device"] = adm.Mapping
	}
	writeJSON(ctx, status, body)
}

func (h *AuthHandler) setSessionCookies(ctx *xhttp.RequestCtx, tokens *services.TokenPair) {
	h.setCookie(ctx, accessCookieName, tokens.AccessToken, tokens.AccessExpiresAt)
	h.setCookie(ctx, refreshCookieName, tokens.RefreshToken, tokens.RefreshExpiresAt)
}

func (h *AuthHandler) clearSessionCookies(ctx *xhttp.RequestCtx) {
	h.setCookie(ctx, accessCookieName, "", time.Unix(0, 0))
	h.setCookie(ctx, refreshCookieName, "", time.Unix(0, 0))
}

func (h *AuthHandler) setCookie(ctx *xhttp.RequestCtx, name, value string, expires time.Time) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(name)
	c.SetValue(value)
	c.SetPath("/")
	c.SetExpire(expires)
	c.SetHTTPOnly(true)
	c.SetSecure(h.cookieSecure)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	ctx.Response.Header.SetCookie(c)
}
