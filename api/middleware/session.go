package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/scriptindia/course-gateway/api/web"
)

// sessionWriter buffers the response so the session cookie can still be
// committed after the handler has produced its body.
type sessionWriter struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (sw *sessionWriter) Write(b []byte) (int, error) { return sw.buf.Write(b) }

func (sw *sessionWriter) WriteHeader(code int) { sw.code = code }

// LoadAndSave is scs's cookie middleware adapted to the web.Handler chain.
// Every request gets a session context; modified sessions are committed and
// the cookie written before the buffered body is flushed.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			var token string
			if cookie, err := r.Cookie(session.Cookie.Name); err == nil {
				token = cookie.Value
			}

			ctx, err := session.Load(ctx, token)
			if err != nil {
				return fmt.Errorf("loading session: %w", err)
			}

			sw := &sessionWriter{ResponseWriter: w}
			handlerErr := handler(ctx, sw, r.WithContext(ctx))

			switch session.Status(ctx) {
			case scs.Modified:
				token, expiry, err := session.Commit(ctx)
				if err != nil {
					return fmt.Errorf("committing session: %w", err)
				}
				session.WriteSessionCookie(ctx, w, token, expiry)
			case scs.Destroyed:
				session.WriteSessionCookie(ctx, w, "", time.Time{})
			}

			if sw.code != 0 {
				w.WriteHeader(sw.code)
			}
			if sw.buf.Len() > 0 {
				if _, err := w.Write(sw.buf.Bytes()); err != nil {
					return fmt.Errorf("flushing buffered response: %w", err)
				}
			}

			return handlerErr
		}
		return h
	}
	return m
}
