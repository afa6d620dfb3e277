package payment

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"ThriftStoreAPI/internal/model"
)

// Kind identifies one interchangeable payment mechanism.
type Kind string

const (
	KindMockCard  Kind = "mock_card"
	KindHosted    Kind = "hosted_checkout"
	KindNativeSDK Kind = "native_sdk"
	KindCOD       Kind = "cod"
)

func (k Kind) Valid() bool {
	switch k {
	case KindMockCard, KindHosted, KindNativeSDK, KindCOD:
		return true
	}
	return false
}

// FailureReason is a tagged outcome, not free text, so the orchestrator can
// branch (unavailable offers a fallback driver, cancelled is not an error...).
type FailureReason string

const (
	ReasonValidation    FailureReason = "validation"
	ReasonCancelled     FailureReason = "cancelled"
	ReasonDeclined      FailureReason = "declined"
	ReasonUnavailable   FailureReason = "unavailable"
	ReasonTimeout       FailureReason = "timeout"
	ReasonProviderError FailureReason = "provider_error"
)

type Failure struct {
	Reason FailureReason `json:"reason"`
	Detail string        `json:"detail,omitempty"`
}

func (f Failure) Error() string {
	if f.Detail == "" {
		return string(f.Reason)
	}
	return string(f.Reason) + ": " + f.Detail
}

// CardDetails is what the in-app card form collects. Only the mock driver
// reads it; real gateways get a token instead.
type CardDetails struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"` // MM/YY
	CVV    string `json:"cvv"`
}

// Request is one payment attempt: the amount payable for one backend order.
type Request struct {
	Amount    decimal.Decimal
	OrderRef  string
	Buyer     model.Buyer
	Card      *CardDetails
	CardToken string
}

// Callbacks is how a driver reports its outcome. OnSuccess, OnFailure and
// OnPlaced are mutually exclusive and at most one fires per Initiate call;
// OnRedirect may fire before the terminal callback on hosted flows.
type Callbacks struct {
	OnRedirect func(url string)
	OnSuccess  func(paymentID string)
	OnFailure  func(f Failure)
	OnPlaced   func()
}

// Driver drives one external payment mechanism to completion. Initiate must
// not block: it schedules asynchronous work and reports through Callbacks.
type Driver interface {
	Kind() Kind
	Initiate(ctx context.Context, req Request, cb Callbacks) error
}

// Guarded wraps callbacks so at most one terminal callback ever fires per
// attempt; later invocations are dropped, not double-processed. This is the
// orchestrator's defence against a driver violating the exactly-once contract.
func Guarded(cb Callbacks) Callbacks {
	var once sync.Once
	return Callbacks{
		OnRedirect: cb.OnRedirect,
		OnSuccess: func(paymentID string) {
			once.Do(func() {
				if cb.OnSuccess != nil {
					cb.OnSuccess(paymentID)
				}
			})
		},
		OnFailure: func(f Failure) {
			once.Do(func() {
				if cb.OnFailure != nil {
					cb.OnFailure(f)
				}
			})
		},
		OnPlaced: func() {
			once.Do(func() {
				if cb.OnPlaced != nil {
					cb.OnPlaced()
				}
			})
		},
	}
}
