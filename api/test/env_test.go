package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/scriptindia/course-gateway/api"
	"github.com/scriptindia/course-gateway/api/background"
	"github.com/scriptindia/course-gateway/api/web"
	"github.com/scriptindia/course-gateway/core/checkout"
	"github.com/scriptindia/course-gateway/core/course"
	"github.com/scriptindia/course-gateway/core/faq"
	"github.com/scriptindia/course-gateway/rate"
	"github.com/scriptindia/course-gateway/upstream"
	"github.com/sirupsen/logrus"
)

// mockPlatform stands in for the course platform API, recording what the
// gateway sends it.
type mockPlatform struct {
	mu sync.Mutex

	courses   []course.Course
	purchased map[string][]course.Purchased
	creators  []course.CreatorRow

	buyStatus int

	purchases     []checkout.PurchaseRequest
	purchasedIDs  []string
	conversations []faq.Exchange
	renewals      []course.RenewalNotification
}

func (m *mockPlatform) handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/courses", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		web.Respond(context.Background(), w, m.courses, http.StatusOK)
	}).Methods(http.MethodGet)

	r.HandleFunc("/courses/buy/{id}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.buyStatus != 0 {
			w.WriteHeader(m.buyStatus)
			return
		}

		var req checkout.PurchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		m.purchases = append(m.purchases, req)
		m.purchasedIDs = append(m.purchasedIDs, mux.Vars(r)["id"])
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)

	r.HandleFunc("/store-conversation", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		var e faq.Exchange
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		m.conversations = append(m.conversations, e)
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)

	r.HandleFunc("/courses/purchased/{id}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		web.Respond(context.Background(), w, m.purchased[mux.Vars(r)["id"]], http.StatusOK)
	}).Methods(http.MethodGet)

	r.HandleFunc("/admin/courses/purchased", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		var all []course.Purchased
		for _, recs := range m.purchased {
			all = append(all, recs...)
		}
		web.Respond(context.Background(), w, all, http.StatusOK)
	}).Methods(http.MethodGet)

	r.HandleFunc("/admin/courses1/purchased", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		web.Respond(context.Background(), w, m.creators, http.StatusOK)
	}).Methods(http.MethodGet)

	r.HandleFunc("/admin/send-renewal-notification", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		var n course.RenewalNotification
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		m.renewals = append(m.renewals, n)
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)

	return r
}

func (m *mockPlatform) conversationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}

func (m *mockPlatform) purchaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.purchases)
}

func (m *mockPlatform) renewalNotifications() []course.RenewalNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]course.RenewalNotification(nil), m.renewals...)
}

type TestEnv struct {
	t        *testing.T
	Platform *mockPlatform
	Server   *httptest.Server
	URL      string
	client   *http.Client
}

func NewTestEnv(t *testing.T) *TestEnv {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	platform := &mockPlatform{
		purchased: make(map[string][]course.Purchased),
	}
	platformSrv := httptest.NewServer(platform.handler())
	t.Cleanup(platformSrv.Close)

	session := scs.New()
	session.Lifetime = time.Hour

	bg := background.New(logger)

	mux := api.APIMux(api.APIConfig{
		Log:         logger,
		Session:     session,
		Upstream:    upstream.New(platformSrv.URL, 5*time.Second),
		Background:  bg,
		ChatLimiter: rate.NewLimiter(100, time.Hour, rate.Every(time.Millisecond)),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}

	return &TestEnv{
		t:        t,
		Platform: platform,
		Server:   srv,
		URL:      srv.URL,
		client:   &http.Client{Jar: jar},
	}
}

func (e *TestEnv) Client() *http.Client { return e.client }

// do issues a JSON request through the gateway, decoding the body into out
// when out is non-nil, and returns the status code.
func (e *TestEnv) do(method string, path string, bearer string, body interface{}, out interface{}) int {
	e.t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			e.t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}

	r, err := http.NewRequest(method, e.URL+path, rd)
	if err != nil {
		e.t.Fatal(err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}

	w, err := e.client.Do(r)
	if err != nil {
		e.t.Fatal(err)
	}
	defer w.Body.Close()

	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			e.t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}
	return w.StatusCode
}

// Token signs a bearer token the way the platform does. The gateway only
// reads the payload, so the signing key is irrelevant.
func Token(t *testing.T, id string, name string, role string) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id,
		"name": name,
		"role": role,
	}).SignedString([]byte("platform-key"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}
