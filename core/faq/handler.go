package faq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/scriptindia/course-gateway/api/background"
	"github.com/scriptindia/course-gateway/api/web"
	"github.com/scriptindia/course-gateway/api/weberr"
	"github.com/scriptindia/course-gateway/core/token"
	"github.com/scriptindia/course-gateway/rate"
	"github.com/scriptindia/course-gateway/upstream"
	"github.com/scriptindia/course-gateway/validate"
)

const transcriptKey = "chat"

func loadTranscript(sm *scs.SessionManager, ctx context.Context) []Message {
	raw := sm.GetBytes(ctx, transcriptKey)
	if len(raw) == 0 {
		return nil
	}

	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}

func storeTranscript(sm *scs.SessionManager, ctx context.Context, msgs []Message) error {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}
	sm.Put(ctx, transcriptKey, raw)
	return nil
}

// HandleListFAQ serves the canned table for the disclosure view.
func HandleListFAQ() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, Entries(), http.StatusOK)
	}
}

// HandleListMessages serves the session transcript in send order.
func HandleListMessages(sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		msgs := loadTranscript(sm, ctx)
		if msgs == nil {
			msgs = []Message{}
		}
		return web.Respond(ctx, w, msgs, http.StatusOK)
	}
}

type sendRequest struct {
	Message string `json:"message" validate:"required"`
}

type sendResponse struct {
	Reply string `json:"reply"`
}

// HandleSend answers one question: exact table lookup, transcript append,
// and a fire-and-forget mirror to the platform's conversation log. The
// mirror never blocks or fails the reply.
func HandleSend(sm *scs.SessionManager, client *upstream.Client, bg *background.Background, limiter *rate.Limiter) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req sendRequest
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(req); err != nil {
			return weberr.Validation(err)
		}

		question := strings.TrimSpace(req.Message)
		if question == "" {
			return weberr.Validation(errors.New("message is required"))
		}

		if !limiter.Check(clientKey(ctx, r)) {
			return weberr.NewError(errors.New("chat rate exceeded"), "too many messages, please slow down", http.StatusTooManyRequests)
		}

		answer := Lookup(question)

		msgs := loadTranscript(sm, ctx)
		msgs = append(msgs,
			Message{Sender: SenderUser, Text: question},
			Message{Sender: SenderBot, Text: answer},
		)
		if err := storeTranscript(sm, ctx, msgs); err != nil {
			return err
		}

		// Mirrored outside the request lifetime: a dying view must not
		// abort the audit write.
		exch := Exchange{UserQuestion: question, ChatbotReply: answer}
		bg.Add("store-conversation", func() error {
			return client.Post(context.Background(), "/store-conversation", "", exch, nil)
		})

		return web.Respond(ctx, w, sendResponse{Reply: answer}, http.StatusOK)
	}
}

func clientKey(ctx context.Context, r *http.Request) string {
	if clm, err := token.GetClaims(ctx); err == nil && clm.UserID != "" {
		return clm.UserID
	}
	return r.RemoteAddr
}
