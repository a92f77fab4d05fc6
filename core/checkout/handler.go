package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/scriptindia/course-gateway/api/web"
	"github.com/scriptindia/course-gateway/api/weberr"
	"github.com/scriptindia/course-gateway/core/course"
	"github.com/scriptindia/course-gateway/core/token"
	"github.com/scriptindia/course-gateway/upstream"
	"github.com/scriptindia/course-gateway/validate"
)

const sessionKey = "checkout"

func load(sm *scs.SessionManager, ctx context.Context) Session {
	s := Session{Method: MethodCreditCard}
	raw := sm.GetBytes(ctx, sessionKey)
	if len(raw) == 0 {
		return s
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt session is indistinguishable from a fresh one.
		return Session{Method: MethodCreditCard}
	}
	return s
}

func store(sm *scs.SessionManager, ctx context.Context, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling checkout session: %w", err)
	}
	sm.Put(ctx, sessionKey, raw)
	return nil
}

// SessionView is the session plus the derived amounts the detail view
// renders.
type SessionView struct {
	Session
	Plans     []int   `json:"plans"`
	EMIAmount float64 `json:"emiAmount,omitempty"`
}

// HandleShow serves the current checkout session.
func HandleShow(sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s := load(sm, ctx)
		view := SessionView{
			Session:   s,
			Plans:     Plans,
			EMIAmount: s.EMIAmount(),
		}
		return web.Respond(ctx, w, view, http.StatusOK)
	}
}

type courseSelect struct {
	CourseID string `json:"courseId" validate:"required"`
}

// HandleSelect opens a course's detail view. The course snapshot comes from
// the platform's catalog; any previous selections are discarded.
func HandleSelect(sm *scs.SessionManager, client *upstream.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var sel courseSelect
		if err := web.Decode(w, r, &sel); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(sel); err != nil {
			return weberr.Validation(err)
		}

		var courses []course.Course
		if err := client.Get(ctx, "/courses", "", &courses); err != nil {
			return weberr.BadGateway(err, "network error, please check your connection and try again")
		}

		var picked *course.Course
		for i := range courses {
			if courses[i].ID == sel.CourseID {
				picked = &courses[i]
				break
			}
		}
		if picked == nil {
			return weberr.NotFound(fmt.Errorf("course[%s] is not purchasable", sel.CourseID))
		}

		var s Session
		s.Select(*picked)
		if err := store(sm, ctx, s); err != nil {
			return err
		}

		return web.Respond(ctx, w, SessionView{Session: s, Plans: Plans}, http.StatusOK)
	}
}

// HandleClose abandons the current selection and returns to browsing.
func HandleClose(sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var s Session
		s.Reset()
		if err := store(sm, ctx, s); err != nil {
			return err
		}
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

type planChoice struct {
	EMIPlan int `json:"emiPlan"`
}

func HandlePlan(sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pc planChoice
		if err := web.Decode(w, r, &pc); err != nil {
			return weberr.BadRequest(err)
		}

		s := load(sm, ctx)
		if err := s.ChoosePlan(pc.EMIPlan); err != nil {
			return weberr.Validation(err)
		}
		if err := store(sm, ctx, s); err != nil {
			return err
		}

		return web.Respond(ctx, w, SessionView{Session: s, Plans: Plans, EMIAmount: s.EMIAmount()}, http.StatusOK)
	}
}

type methodChoice struct {
	PaymentMethod     Method       `json:"paymentMethod"`
	CreditCardDetails *CardDetails `json:"creditCardDetails"`
	DebitCardDetails  *CardDetails `json:"debitCardDetails"`
	UPIID             *string      `json:"upiId"`
}

func HandlePayment(sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var mc methodChoice
		if err := web.Decode(w, r, &mc); err != nil {
			return weberr.BadRequest(err)
		}

		s := load(sm, ctx)
		if err := s.SetMethod(mc.PaymentMethod, mc.CreditCardDetails, mc.DebitCardDetails, mc.UPIID); err != nil {
			return weberr.Validation(err)
		}
		if err := store(sm, ctx, s); err != nil {
			return err
		}

		return web.Respond(ctx, w, SessionView{Session: s, Plans: Plans, EMIAmount: s.EMIAmount()}, http.StatusOK)
	}
}

type submitRequest struct {
	Confirmed bool `json:"confirmed"`
}

// SubmitResponse tells the caller where to navigate after a successful
// purchase.
type SubmitResponse struct {
	Message  string `json:"message"`
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
}

// HandleSubmit runs the ordered submit validations and issues exactly one
// buy call. Failures are terminal for the attempt; the user resubmits.
func HandleSubmit(sm *scs.SessionManager, client *upstream.Client, guard *Guard) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var sub submitRequest
		if err := web.Decode(w, r, &sub); err != nil {
			return weberr.BadRequest(err)
		}

		if key := sm.Token(ctx); key != "" {
			if !guard.Begin(key) {
				return weberr.Validation(ErrInFlight)
			}
			defer guard.End(key)
		}

		s := load(sm, ctx)

		bearer := token.GetBearer(ctx)
		clm, _ := token.GetClaims(ctx)

		req, err := s.BuildPurchase(bearer, clm, sub.Confirmed, time.Now().UTC())
		if err != nil {
			if errors.Is(err, ErrNotMember) {
				return weberr.Forbidden(err, err.Error())
			}
			return weberr.Validation(err)
		}

		if err := client.Post(ctx, "/courses/buy/"+s.Course.ID, bearer, req, nil); err != nil {
			return purchaseErr(err)
		}

		courseID := s.Course.ID
		s.Reset()
		if err := store(sm, ctx, s); err != nil {
			return err
		}

		res := SubmitResponse{
			Message:  "course purchased successfully with EMI",
			CourseID: courseID,
			UserID:   clm.UserID,
		}
		return web.Respond(ctx, w, res, http.StatusOK)
	}
}

// purchaseErr maps the platform's answer to the flow's user-facing
// messages.
func purchaseErr(err error) error {
	code, ok := upstream.Status(err)
	if !ok {
		return weberr.BadGateway(err, "network error, please check your connection and try again")
	}

	switch code {
	case http.StatusForbidden:
		return weberr.Forbidden(err, "you do not have permission to purchase this course")
	case http.StatusNotFound:
		return weberr.NewError(err, "course not found, please try again", http.StatusNotFound)
	default:
		return weberr.NewError(err, "an error occurred while purchasing the course, please try again", http.StatusBadGateway)
	}
}
