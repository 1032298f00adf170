package handlers

import (
	"strings"

	"github.com/transitops/ticket-backoffice/internal/services"
	xhttp "github.com/transitops/ticket-backoffice/pkg/http"
)

const sessionKey = "session"

// Middleware wraps a single route handler. Session enforcement is
// applied per route group at registration time, not server wide, so
// the device callback and the payment webhook stay open.
type Middleware = func(next xhttp.RequestHandler) xhttp.RequestHandler

type TokenParser interface {
	ParseAccess(token string) (*services.SessionClaims, error)
}

// RequireSession authenticates from the access cookie, falling back to
// a bearer header for non-browser clients, and stashes the claims on
// the request context.
func RequireSession(tokens TokenParser) Middleware {
	return func(next xhttp.RequestHandler) xhttp.RequestHandler {
		return func(ctx *xhttp.RequestCtx) {
			token := string(ctx.Request.Header.Cookie(accessCookieName))
			if token == "" {
				auth := string(ctx.Request.Header.Peek("Authorization"))
				token = strings.TrimPrefix(auth, "Bearer ")
			}
			if token == "" {
				writeError(ctx, 401, "not authenticated")
				return
			}

			claims, err := tokens.ParseAccess(token)
			if err != nil {
				writeError(ctx, 401, "invalid or expired session")
				return
			}

			ctx.SetUserValue(sessionKey, claims)
			next(ctx)
		}
	}
}

func sessionFromCtx(ctx *xhttp.RequestCtx) *services.SessionClaims {
	claims, _ := ctx.UserValue(sessionKey).(*services.SessionClaims)
	return claims
}

// requireSession is the in-handler variant for routes registered on an
// already-authenticated group.
func requireSession(ctx *xhttp.RequestCtx) (*services.SessionClaims, bool) {
	claims := sessionFromCtx(ctx)
	if claims == nil {
		writeError(ctx, 401, "not authenticated")
		return nil, false
	}
	return claims, true
}

// companyScope resolves which company a request may touch. Superadmins
// may pass an explicit company_id; everyone else is pinned to their own.
func companyScope(ctx *xhttp.RequestCtx, claims *services.SessionClaims) (int64, bool) {
	if claims.CompanyID != nil {
		return *claims.CompanyID, true
	}
	if id, err := paramInt64(ctx, "company_id"); err == nil {
		return id, true
	}
	writeError(ctx, 400, "company_id is required")
	return 0, false
}
