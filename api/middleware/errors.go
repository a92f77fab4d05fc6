package middleware

import (
	"context"
	"net/http"

	"github.com/scriptindia/course-gateway/api/web"
	"github.com/scriptindia/course-gateway/api/weberr"
	"github.com/sirupsen/logrus"
)

// Errors renders handler errors. Errors carrying a response (weberr) are
// written as-is, anything else becomes an opaque 500. Nothing ever throws
// past this boundary.
func Errors(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			fields := map[string]interface{}{
				"req_id":  ContextRequestID(ctx),
				"message": err,
			}
			if f, ok := weberr.Fields(err); ok {
				for k, v := range f {
					fields[k] = v
				}
			}

			log.WithFields(logrus.Fields(fields)).Error("ERROR")

			if body, code, ok := weberr.Response(err); ok {
				return web.Respond(ctx, w, body, code)
			}

			er := weberr.ErrorResponse{
				Error: http.StatusText(http.StatusInternalServerError),
			}
			return web.Respond(ctx, w, &er, http.StatusInternalServerError)
		}
		return h
	}
	return m
}
