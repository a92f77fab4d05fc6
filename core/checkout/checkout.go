package checkout

import (
	"errors"
	"math"
	"time"

	"github.com/scriptindia/course-gateway/core/course"
	"github.com/scriptindia/course-gateway/core/token"
)

// Method tags the active payment variant of a checkout session. Exactly one
// variant is active at a time; switching never wipes the other variants'
// fields, but only the active one is validated and sent.
type Method string

const (
	MethodCreditCard Method = "creditCard"
	MethodDebitCard  Method = "debitCard"
	MethodUPI        Method = "upi"
)

// Plans are the offered EMI durations in months.
var Plans = []int{3, 6, 12}

func ValidPlan(plan int) bool {
	for _, p := range Plans {
		if p == plan {
			return true
		}
	}
	return false
}

type CardDetails struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}

func (c CardDetails) complete() bool {
	return c.CardNumber != "" && c.ExpiryDate != "" && c.CVV != ""
}

// Session is one checkout attempt: at most one selected course, at most one
// EMI plan, exactly one active payment variant.
type Session struct {
	Course     *course.Course `json:"course,omitempty"`
	Plan       int            `json:"emiPlan,omitempty"`
	Method     Method         `json:"paymentMethod"`
	CreditCard CardDetails    `json:"creditCardDetails"`
	DebitCard  CardDetails    `json:"debitCardDetails"`
	UPIID      string         `json:"upiId"`
}

// The submit-time failures, in the order they are checked.
var (
	ErrNotLoggedIn   = errors.New("you need to be logged in to buy a course")
	ErrNoPlan        = errors.New("please select an EMI plan")
	ErrCreditDetails = errors.New("please enter complete credit card details")
	ErrDebitDetails  = errors.New("please enter complete debit card details")
	ErrNoUPI         = errors.New("please enter your UPI ID")
	ErrNotMember     = errors.New("only members can buy courses")
	ErrNotConfirmed  = errors.New("purchase not confirmed")
	ErrInvalidCourse = errors.New("invalid course selected")
	ErrInFlight      = errors.New("a purchase is already in progress")
)

// Select opens a course's details. All per-session selections reset so no
// stale plan or payment data leaks across course selections.
func (s *Session) Select(c course.Course) {
	*s = Session{
		Course: &c,
		Method: MethodCreditCard,
	}
}

// Reset returns the session to browsing.
func (s *Session) Reset() {
	*s = Session{Method: MethodCreditCard}
}

// ChoosePlan records the EMI plan. Assignment is idempotent.
func (s *Session) ChoosePlan(plan int) error {
	if !ValidPlan(plan) {
		return errors.New("please select a valid EMI plan")
	}
	s.Plan = plan
	return nil
}

// SetMethod switches the active payment variant and records the fields
// supplied for it. Fields of the other variants are left untouched.
func (s *Session) SetMethod(m Method, credit *CardDetails, debit *CardDetails, upiID *string) error {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodUPI:
	default:
		return errors.New("please select a valid payment method")
	}

	s.Method = m
	if credit != nil {
		s.CreditCard = *credit
	}
	if debit != nil {
		s.DebitCard = *debit
	}
	if upiID != nil {
		s.UPIID = *upiID
	}
	return nil
}

// EMIAmount is the per-installment amount: plain division, no rounding.
// Display formatting is the renderer's concern.
func (s *Session) EMIAmount() float64 {
	if s.Course == nil || s.Plan == 0 {
		return 0
	}
	return s.Course.Price / float64(s.Plan)
}

// PurchaseRequest is the body of the platform's buy call. Only the active
// variant's detail object is populated; the others stay null.
type PurchaseRequest struct {
	StartDate         string       `json:"start_date"`
	EMIPlan           int          `json:"emiPlan"`
	EMIAmount         float64      `json:"emiAmount"`
	PaymentMethod     Method       `json:"paymentMethod"`
	CreditCardDetails *CardDetails `json:"creditCardDetails"`
	DebitCardDetails  *CardDetails `json:"debitCardDetails"`
	UPIID             *string      `json:"upiId"`
	UserName          string       `json:"userName"`
}

// BuildPurchase runs the submit-time validations, strictly in order, and
// assembles the purchase request. No upstream call happens before every
// check has passed.
func (s *Session) BuildPurchase(bearer string, clm token.Claims, confirmed bool, now time.Time) (PurchaseRequest, error) {
	if bearer == "" {
		return PurchaseRequest{}, ErrNotLoggedIn
	}

	if s.Plan == 0 {
		return PurchaseRequest{}, ErrNoPlan
	}

	switch s.Method {
	case MethodCreditCard:
		if !s.CreditCard.complete() {
			return PurchaseRequest{}, ErrCreditDetails
		}
	case MethodDebitCard:
		if !s.DebitCard.complete() {
			return PurchaseRequest{}, ErrDebitDetails
		}
	case MethodUPI:
		if s.UPIID == "" {
			return PurchaseRequest{}, ErrNoUPI
		}
	}

	if !clm.IsBuyer() {
		return PurchaseRequest{}, ErrNotMember
	}

	if !confirmed {
		return PurchaseRequest{}, ErrNotConfirmed
	}

	if s.Course == nil || s.Course.Price <= 0 || math.IsNaN(s.Course.Price) {
		return PurchaseRequest{}, ErrInvalidCourse
	}

	req := PurchaseRequest{
		StartDate:     now.Format(time.RFC3339),
		EMIPlan:       s.Plan,
		EMIAmount:     s.Course.Price / float64(s.Plan),
		PaymentMethod: s.Method,
		UserName:      clm.Name,
	}

	switch s.Method {
	case MethodCreditCard:
		cc := s.CreditCard
		req.CreditCardDetails = &cc
	case MethodDebitCard:
		dc := s.DebitCard
		req.DebitCardDetails = &dc
	case MethodUPI:
		upi := s.UPIID
		req.UPIID = &upi
	}

	return req, nil
}
