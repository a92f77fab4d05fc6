package course

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/scriptindia/course-gateway/api/web"
	"github.com/scriptindia/course-gateway/api/weberr"
	"github.com/scriptindia/course-gateway/core/token"
	"github.com/scriptindia/course-gateway/upstream"
	"github.com/scriptindia/course-gateway/validate"
)

// proxyErr translates an upstream failure into a renderable error for the
// read-only course views.
func proxyErr(err error) error {
	code, ok := upstream.Status(err)
	if !ok {
		return weberr.BadGateway(err, "network error, please check your connection and try again")
	}

	switch code {
	case http.StatusUnauthorized:
		return weberr.NotAuthorized(err)
	case http.StatusForbidden:
		return weberr.Forbidden(err, "you do not have permission to access this resource")
	case http.StatusNotFound:
		return weberr.NotFound(err)
	default:
		return fmt.Errorf("proxying course platform call: %w", err)
	}
}

// HandleList serves the purchasable catalog, optionally narrowed by a
// case-insensitive search over title and description.
func HandleList(client *upstream.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var courses []Course
		if err := client.Get(ctx, "/courses", "", &courses); err != nil {
			return proxyErr(err)
		}

		courses = Filter(courses, web.QueryParam(r, "search"))
		return web.Respond(ctx, w, courses, http.StatusOK)
	}
}

// HandleListPurchased serves one member's purchases with the derived expiry
// fields filled in.
func HandleListPurchased(client *upstream.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		bearer := token.GetBearer(ctx)
		if bearer == "" {
			return weberr.NotAuthorized(errors.New("you need to be logged in to view your courses"))
		}

		userID := web.Param(r, "user_id")
		if userID == "" {
			return weberr.BadRequest(errors.New("user id is missing"))
		}

		var records []Purchased
		if err := client.Get(ctx, "/courses/purchased/"+userID, bearer, &records); err != nil {
			return proxyErr(err)
		}

		return web.Respond(ctx, w, EnrichAll(records, time.Now().UTC()), http.StatusOK)
	}
}

// HandleAdminPurchased serves every purchase on the platform, enriched and
// grouped by purchaser, for the admin expiry table.
func HandleAdminPurchased(client *upstream.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var records []Purchased
		if err := client.Get(ctx, "/admin/courses/purchased", token.GetBearer(ctx), &records); err != nil {
			return proxyErr(err)
		}

		grouped := GroupByUser(EnrichAll(records, time.Now().UTC()))
		return web.Respond(ctx, w, grouped, http.StatusOK)
	}
}

// HandleAdminSummary serves the per-creator purchase totals.
func HandleAdminSummary(client *upstream.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var rows []CreatorRow
		if err := client.Get(ctx, "/admin/courses1/purchased", token.GetBearer(ctx), &rows); err != nil {
			return proxyErr(err)
		}

		return web.Respond(ctx, w, Summarize(rows), http.StatusOK)
	}
}

// RenewalNotification is the reminder an admin sends for a purchase inside
// the renewal window.
type RenewalNotification struct {
	UserID     string `json:"userId" validate:"required"`
	CourseName string `json:"courseName" validate:"required"`
	Message    string `json:"message" validate:"required"`
}

// HandleSendRenewal relays a renewal reminder to the platform, which owns
// the actual email dispatch.
func HandleSendRenewal(client *upstream.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var n RenewalNotification
		if err := web.Decode(w, r, &n); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(n); err != nil {
			return weberr.Validation(err)
		}

		if err := client.Post(ctx, "/admin/send-renewal-notification", token.GetBearer(ctx), n, nil); err != nil {
			return proxyErr(err)
		}

		return web.Respond(ctx, w, map[string]string{"message": "notification sent successfully"}, http.StatusOK)
	}
}
