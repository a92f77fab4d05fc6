package checkout

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/scriptindia/course-gateway/core/course"
	"github.com/scriptindia/course-gateway/core/token"
)

var testCourse = course.Course{
	ID:       "11111111-1111-1111-1111-111111111111",
	Title:    "Web Development",
	Price:    999,
	Duration: 6,
}

var buyer = token.Claims{UserID: "42", Name: "Asha", Role: token.RoleUser}

func completeSession() Session {
	var s Session
	s.Select(testCourse)
	s.ChoosePlan(3)
	s.SetMethod(MethodCreditCard, &CardDetails{CardNumber: "4111", ExpiryDate: "12/27", CVV: "123"}, nil, nil)
	return s
}

func TestSelectResetsSelections(t *testing.T) {
	s := completeSession()
	s.SetMethod(MethodUPI, nil, nil, strptr("asha@upi"))

	s.Select(testCourse)

	want := Session{Course: &testCourse, Method: MethodCreditCard}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("selecting a course should reset every per-session choice:\n%s", diff)
	}
}

func TestChoosePlan(t *testing.T) {
	var s Session
	s.Select(testCourse)

	if err := s.ChoosePlan(4); err == nil {
		t.Fatal("plan outside {3,6,12} must be rejected")
	}

	for _, p := range Plans {
		if err := s.ChoosePlan(p); err != nil {
			t.Fatalf("plan %d should be accepted: %v", p, err)
		}
	}

	// Re-selecting the same plan is a plain idempotent assignment.
	if err := s.ChoosePlan(12); err != nil {
		t.Fatal(err)
	}
	if s.Plan != 12 {
		t.Fatalf("plan = %d, want 12", s.Plan)
	}
}

func TestSwitchingMethodKeepsOtherVariants(t *testing.T) {
	s := completeSession()

	if err := s.SetMethod(MethodUPI, nil, nil, strptr("asha@upi")); err != nil {
		t.Fatal(err)
	}
	if s.CreditCard.CardNumber != "4111" {
		t.Fatal("switching to UPI must not wipe the stored credit card fields")
	}

	// Back to credit card: the previously entered fields are live again and
	// submission validates only that variant.
	if err := s.SetMethod(MethodCreditCard, nil, nil, nil); err != nil {
		t.Fatal(err)
	}

	req, err := s.BuildPurchase("tok", buyer, true, time.Now())
	if err != nil {
		t.Fatalf("submission with a complete active variant should pass: %v", err)
	}
	if req.CreditCardDetails == nil || req.DebitCardDetails != nil || req.UPIID != nil {
		t.Fatal("only the active variant's details may be populated")
	}
}

func TestBuildPurchaseValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Session)
		bearer  string
		claims  token.Claims
		confirm bool
		want    error
	}{
		{"missing token", func(s *Session) {}, "", buyer, true, ErrNotLoggedIn},
		{"missing plan", func(s *Session) { s.Plan = 0 }, "tok", buyer, true, ErrNoPlan},
		{"incomplete credit card", func(s *Session) { s.CreditCard.CVV = "" }, "tok", buyer, true, ErrCreditDetails},
		{"incomplete debit card", func(s *Session) { s.Method = MethodDebitCard }, "tok", buyer, true, ErrDebitDetails},
		{"missing upi id", func(s *Session) { s.Method = MethodUPI }, "tok", buyer, true, ErrNoUPI},
		{"admin cannot buy", func(s *Session) {}, "tok", token.Claims{Role: token.RoleAdmin}, true, ErrNotMember},
		{"non-admin cannot buy", func(s *Session) {}, "tok", token.Claims{Role: token.RoleNonAdmin}, true, ErrNotMember},
		{"unconfirmed", func(s *Session) {}, "tok", buyer, false, ErrNotConfirmed},
		{"no course", func(s *Session) { s.Course = nil }, "tok", buyer, true, ErrInvalidCourse},
		{"non-positive price", func(s *Session) { s.Course.Price = 0 }, "tok", buyer, true, ErrInvalidCourse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := completeSession()
			tt.mutate(&s)

			_, err := s.BuildPurchase(tt.bearer, tt.claims, tt.confirm, time.Now())
			if !errors.Is(err, tt.want) {
				t.Fatalf("got error %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlanPrecedesFieldChecks(t *testing.T) {
	// No plan and no payment fields at all: the plan error wins because the
	// validations run strictly in order.
	var s Session
	s.Select(testCourse)

	_, err := s.BuildPurchase("tok", buyer, true, time.Now())
	if !errors.Is(err, ErrNoPlan) {
		t.Fatalf("got %v, want %v", err, ErrNoPlan)
	}
}

func TestEMIAmountExactDivision(t *testing.T) {
	prices := []float64{999, 1500.50, 1, 0.03, 123456.78}

	for _, price := range prices {
		for _, plan := range Plans {
			s := completeSession()
			s.Course.Price = price
			s.ChoosePlan(plan)

			req, err := s.BuildPurchase("tok", buyer, true, time.Now())
			if err != nil {
				t.Fatal(err)
			}

			if want := price / float64(plan); req.EMIAmount != want {
				t.Fatalf("emiAmount = %v, want exact %v", req.EMIAmount, want)
			}
			if diff := math.Abs(req.EMIAmount*float64(plan) - price); diff > 1e-9*price {
				t.Fatalf("emiAmount*plan drifts from price by %v", diff)
			}
		}
	}
}

func TestBuildPurchaseRequestShape(t *testing.T) {
	s := completeSession()
	now := time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)

	req, err := s.BuildPurchase("tok", buyer, true, now)
	if err != nil {
		t.Fatal(err)
	}

	want := PurchaseRequest{
		StartDate:         "2024-06-01T10:30:00Z",
		EMIPlan:           3,
		EMIAmount:         333,
		PaymentMethod:     MethodCreditCard,
		CreditCardDetails: &CardDetails{CardNumber: "4111", ExpiryDate: "12/27", CVV: "123"},
		UserName:          "Asha",
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Fatalf("unexpected purchase request:\n%s", diff)
	}
}

func TestGuard(t *testing.T) {
	g := NewGuard()

	if !g.Begin("sess") {
		t.Fatal("first submission should start")
	}
	if g.Begin("sess") {
		t.Fatal("second concurrent submission on the same session must be rejected")
	}
	if !g.Begin("other") {
		t.Fatal("other sessions are unaffected")
	}

	g.End("sess")
	if !g.Begin("sess") {
		t.Fatal("a finished submission releases the session")
	}
}

func strptr(s string) *string { return &s }
