package payment

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
)

// MockCardDriver simulates an in-app card form: basic format checks, then a
// fixed processing delay, then success with a generated payment id. Used for
// development and as a fallback when real gateways are unavailable.
type MockCardDriver struct {
	delay time.Duration
	clock clockz.Clock
}

func NewMockCardDriver() *MockCardDriver {
	return &MockCardDriver{delay: 2500 * time.Millisecond}
}

// WithClock sets a custom clock for testing.
func (d *MockCardDriver) WithClock(clock clockz.Clock) *MockCardDriver {
	d.clock = clock
	return d
}

func (d *MockCardDriver) getClock() clockz.Clock {
	if d.clock == nil {
		return clockz.RealClock
	}
	return d.clock
}

func (d *MockCardDriver) Kind() Kind { return KindMockCard }

func (d *MockCardDriver) Initiate(ctx context.Context, req Request, cb Callbacks) error {
	card := req.Card
	if card == nil {
		cb.OnFailure(Failure{Reason: ReasonValidation, Detail: "please fill all card details"})
		return nil
	}

	number := strings.ReplaceAll(card.Number, " ", "")
	switch {
	case !cardNumberPattern.MatchString(number):
		cb.OnFailure(Failure{Reason: ReasonValidation, Detail: "invalid card number"})
		return nil
	case !cvvPattern.MatchString(card.CVV):
		cb.OnFailure(Failure{Reason: ReasonValidation, Detail: "invalid CVV"})
		return nil
	case !expiryPattern.MatchString(card.Expiry):
		cb.OnFailure(Failure{Reason: ReasonValidation, Detail: "invalid expiry date"})
		return nil
	case strings.TrimSpace(card.Holder) == "":
		cb.OnFailure(Failure{Reason: ReasonValidation, Detail: "cardholder name required"})
		return nil
	}

	clock := d.getClock()
	done := clock.After(d.delay)

	go func() {
		select {
		case <-ctx.Done():
			cb.OnFailure(Failure{Reason: ReasonCancelled, Detail: "payment was cancelled"})
		case <-done:
			cb.OnSuccess(mockPaymentID(clock))
		}
	}()

	return nil
}

func mockPaymentID(clock clockz.Clock) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("PAY%d%s", clock.Now().UnixMilli(), suffix)
}
