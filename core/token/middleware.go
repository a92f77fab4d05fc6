package token

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/scriptindia/course-gateway/api/web"
	"github.com/scriptindia/course-gateway/api/weberr"
)

// Bearer lifts the Authorization header into the context. It is lenient:
// anonymous or undecodable requests pass through so each handler can fail
// with its own message at the right point of its validation order.
func Bearer() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
			if raw == "" {
				return handler(ctx, w, r)
			}

			ctx = SetBearer(ctx, raw)
			if clm, err := Decode(raw); err == nil {
				ctx = SetClaims(ctx, clm)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Admin gates the admin views on the advisory role. The course platform
// still re-validates the forwarded token on every call behind this gate.
func Admin() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			clm, err := GetClaims(ctx)
			if err != nil {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			if !clm.IsAdmin() {
				return weberr.Forbidden(errors.New("admin role required"), "admin role required")
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
