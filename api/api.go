package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scriptindia/course-gateway/api/background"
	"github.com/scriptindia/course-gateway/api/middleware"
	"github.com/scriptindia/course-gateway/api/web"
	"github.com/scriptindia/course-gateway/core/checkout"
	"github.com/scriptindia/course-gateway/core/course"
	"github.com/scriptindia/course-gateway/core/faq"
	"github.com/scriptindia/course-gateway/core/token"
	"github.com/scriptindia/course-gateway/rate"
	"github.com/scriptindia/course-gateway/upstream"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin  string
	Log         logrus.FieldLogger
	Session     *scs.SessionManager
	Upstream    *upstream.Client
	Background  *background.Background
	ChatLimiter *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Metrics())
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())
	a.mw = append(a.mw, token.Bearer())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	admin := token.Admin()
	guard := checkout.NewGuard()

	a.Handle(http.MethodGet, "/courses", course.HandleList(cfg.Upstream))
	a.Handle(http.MethodGet, "/courses/purchased/{user_id}", course.HandleListPurchased(cfg.Upstream))

	a.Handle(http.MethodGet, "/checkout", checkout.HandleShow(cfg.Session))
	a.Handle(http.MethodDelete, "/checkout", checkout.HandleClose(cfg.Session))
	a.Handle(http.MethodPost, "/checkout/course", checkout.HandleSelect(cfg.Session, cfg.Upstream))
	a.Handle(http.MethodPost, "/checkout/plan", checkout.HandlePlan(cfg.Session))
	a.Handle(http.MethodPost, "/checkout/payment", checkout.HandlePayment(cfg.Session))
	a.Handle(http.MethodPost, "/checkout/submit", checkout.HandleSubmit(cfg.Session, cfg.Upstream, guard))

	a.Handle(http.MethodGet, "/chat/faq", faq.HandleListFAQ())
	a.Handle(http.MethodGet, "/chat/messages", faq.HandleListMessages(cfg.Session))
	a.Handle(http.MethodPost, "/chat/messages", faq.HandleSend(cfg.Session, cfg.Upstream, cfg.Background, cfg.ChatLimiter))

	a.Handle(http.MethodGet, "/admin/courses/purchased", course.HandleAdminPurchased(cfg.Upstream), admin)
	a.Handle(http.MethodGet, "/admin/purchases/summary", course.HandleAdminSummary(cfg.Upstream), admin)
	a.Handle(http.MethodPost, "/admin/notifications/renewal", course.HandleSendRenewal(cfg.Upstream), admin)

	a.Router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
