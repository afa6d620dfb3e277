package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"

	"ThriftStoreAPI/internal/model"
	"ThriftStoreAPI/internal/payment"
	"ThriftStoreAPI/internal/pricing"
	"ThriftStoreAPI/internal/repository"
)

// MarketplaceGateway is the backend surface checkout depends on.
type MarketplaceGateway interface {
	FetchSettings(ctx context.Context) (*model.PlatformSettings, error)
	CreateOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID, paymentID string, status model.PaymentStatus, extra map[string]string) error
}

// defaultPaymentTimeout bounds how long an attempt waits for a driver to
// report before it is failed with a timeout.
const defaultPaymentTimeout = 2 * time.Minute

// attemptRetention is how long a terminal attempt remains pollable before
// its bookkeeping is evicted.
const attemptRetention = 10 * time.Minute

// CheckoutRequest is one buyer-initiated purchase of the cart's first item.
type CheckoutRequest struct {
	Buyer           model.Buyer
	DeliveryAddress string
	Method          model.PaymentMethod
	Card            *payment.CardDetails
	CardToken       string
}

// Result is the terminal outcome of a checkout attempt.
type Result struct {
	State              model.CheckoutState `json:"state"`
	OrderID            string              `json:"order_id,omitempty"`
	ItemPrice          string              `json:"item_price,omitempty"`
	PaymentID          string              `json:"payment_id,omitempty"`
	Quote              pricing.Quote       `json:"quote"`
	Failure            *payment.Failure    `json:"failure,omitempty"`
	Message            string              `json:"message,omitempty"`
	ReconciliationWarn bool                `json:"reconciliation_warn,omitempty"`
	RedirectURL        string              `json:"redirect_url,omitempty"`
}

// Attempt is one in-flight checkout. It moves through the states exactly
// once and closes done when it reaches a terminal state.
type Attempt struct {
	ID         string
	BuyerEmail string

	mu          sync.Mutex
	state       model.CheckoutState
	transitions []model.CheckoutState
	redirectURL string
	extras      map[string]string
	result      *Result

	redirectReady chan struct{}
	done          chan struct{}
}

func newAttempt(buyerEmail string) *Attempt {
	a := &Attempt{
		ID:            uuid.NewString(),
		BuyerEmail:    buyerEmail,
		state:         model.StateIdle,
		redirectReady: make(chan struct{}),
		done:          make(chan struct{}),
	}
	a.transitions = append(a.transitions, model.StateIdle)
	return a
}

func (a *Attempt) setState(s model.CheckoutState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.IsTerminal() {
		return
	}
	a.state = s
	a.transitions = append(a.transitions, s)
}

// finish records the terminal result. The first call wins; any later call is
// a no-op so a late driver callback can never overwrite the outcome.
func (a *Attempt) finish(r *Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.IsTerminal() {
		return
	}
	a.state = r.State
	a.transitions = append(a.transitions, r.State)
	a.result = r
	close(a.done)
}

func (a *Attempt) setRedirect(url string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.redirectURL != "" || a.state.IsTerminal() {
		return
	}
	a.redirectURL = url
	close(a.redirectReady)
}

func (a *Attempt) noteExtras(extras map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.extras == nil {
		a.extras = map[string]string{}
	}
	for k, v := range extras {
		a.extras[k] = v
	}
}

func (a *Attempt) takeExtras() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.extras
}

func (a *Attempt) State() model.CheckoutState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Attempt) Transitions() []model.CheckoutState {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.CheckoutState, len(a.transitions))
	copy(out, a.transitions)
	return out
}

func (a *Attempt) RedirectURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.redirectURL
}

// Done is closed once the attempt reaches a terminal state.
func (a *Attempt) Done() <-chan struct{} { return a.done }

// RedirectReady is closed once a hosted driver has produced a redirect URL.
func (a *Attempt) RedirectReady() <-chan struct{} { return a.redirectReady }

// Result returns the terminal result, or nil while the attempt is running.
func (a *Attempt) Result() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// CheckoutService runs the checkout state machine:
//
//	IDLE -> VALIDATING -> CREATING_ORDER -> AWAITING_PAYMENT -> RECONCILING -> SUCCEEDED
//
// with FAILED reachable from every non-terminal step and COD skipping the
// payment leg straight to COD_PLACED. One attempt per buyer at a time; a
// second submit while one is running returns the running attempt untouched.
type CheckoutService struct {
	Gateway MarketplaceGateway
	Cart    repository.CartStore
	Drivers map[payment.Kind]payment.Driver
	Timeout time.Duration

	clock clockz.Clock

	mu       sync.Mutex
	inflight map[string]*Attempt // buyer email -> running attempt
	attempts map[string]*Attempt // attempt id -> attempt
	byOrder  map[string]*Attempt // backend order id -> attempt
	selected map[string]payment.Kind
}

func NewCheckoutService(gateway MarketplaceGateway, cart repository.CartStore, drivers ...payment.Driver) *CheckoutService {
	reg := make(map[payment.Kind]payment.Driver, len(drivers))
	for _, d := range drivers {
		reg[d.Kind()] = d
	}
	return &CheckoutService{
		Gateway:  gateway,
		Cart:     cart,
		Drivers:  reg,
		Timeout:  defaultPaymentTimeout,
		inflight: map[string]*Attempt{},
		attempts: map[string]*Attempt{},
		byOrder:  map[string]*Attempt{},
		selected: map[string]payment.Kind{},
	}
}

// WithClock sets a custom clock for testing.
func (s *CheckoutService) WithClock(clock clockz.Clock) *CheckoutService {
	s.clock = clock
	return s
}

func (s *CheckoutService) getClock() clockz.Clock {
	if s.clock == nil {
		return clockz.RealClock
	}
	return s.clock
}

// SelectDriver records which payment mechanism the buyer picked for their
// next online checkout.
func (s *CheckoutService) SelectDriver(buyerEmail string, kind payment.Kind) error {
	if !kind.Valid() {
		return &model.ValidationError{Field: "payment_driver", Reason: "unknown payment driver"}
	}
	if _, ok := s.Drivers[kind]; !ok {
		return &model.ValidationError{Field: "payment_driver", Reason: "payment driver not configured"}
	}
	s.mu.Lock()
	s.selected[buyerEmail] = kind
	s.mu.Unlock()
	return nil
}

// Attempt looks up a previously started attempt.
func (s *CheckoutService) Attempt(id string) (*Attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	return a, ok
}

// NoteGatewayExtras attaches provider-supplied fields (gateway order id,
// signature) to the attempt owning the given backend order, so they are
// forwarded on the payment status update.
func (s *CheckoutService) NoteGatewayExtras(orderID string, extras map[string]string) {
	s.mu.Lock()
	a, ok := s.byOrder[orderID]
	s.mu.Unlock()
	if ok {
		a.noteExtras(extras)
	}
}

// Start validates the request and, if it holds, launches the checkout in the
// background and returns its attempt. Validation failures return an error
// without creating an attempt or touching the network. A buyer with a
// running attempt gets that attempt back instead of a second order.
func (s *CheckoutService) Start(ctx context.Context, req CheckoutRequest) (*Attempt, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	lines, err := s.Cart.Lines(ctx, req.Buyer.Email)
	if err != nil {
		return nil, &model.NetworkError{Op: "load cart", Err: err}
	}
	if len(lines) == 0 {
		return nil, &model.ValidationError{Field: "cart", Reason: "cart is empty"}
	}

	var driver payment.Driver
	if req.Method == model.PaymentOnline {
		s.mu.Lock()
		kind, ok := s.selected[req.Buyer.Email]
		s.mu.Unlock()
		if !ok {
			return nil, &model.ValidationError{Field: "payment_driver", Reason: "no payment driver selected"}
		}
		driver = s.Drivers[kind]
	}

	s.mu.Lock()
	if running, ok := s.inflight[req.Buyer.Email]; ok && !running.State().IsTerminal() {
		s.mu.Unlock()
		return running, nil
	}
	a := newAttempt(req.Buyer.Email)
	s.inflight[req.Buyer.Email] = a
	s.attempts[a.ID] = a
	s.mu.Unlock()

	// The machine outlives the request that started it: a hosted attempt is
	// answered 202 and resolved later by the provider's return redirect, so
	// the request context ending must not cancel the attempt.
	go s.run(context.WithoutCancel(ctx), a, req, lines, driver)
	return a, nil
}

func (s *CheckoutService) validate(req CheckoutRequest) error {
	switch {
	case strings.TrimSpace(req.Buyer.Email) == "":
		return &model.ValidationError{Field: "buyer_email", Reason: "required"}
	case strings.TrimSpace(req.Buyer.Name) == "":
		return &model.ValidationError{Field: "buyer_name", Reason: "required"}
	case strings.TrimSpace(req.Buyer.Phone) == "":
		return &model.ValidationError{Field: "buyer_phone", Reason: "required"}
	case strings.TrimSpace(req.DeliveryAddress) == "":
		return &model.ValidationError{Field: "delivery_address", Reason: "required"}
	case !req.Method.Valid():
		return &model.ValidationError{Field: "payment_method", Reason: "must be online or cod"}
	}
	return nil
}

func (s *CheckoutService) run(ctx context.Context, a *Attempt, req CheckoutRequest, lines []model.CartLine, driver payment.Driver) {
	defer s.release(a)

	a.setState(model.StateValidating)

	// Settings are display data; a fetch failure degrades the quote but
	// never blocks the purchase.
	settings, err := s.Gateway.FetchSettings(ctx)
	if err != nil {
		log.Printf("checkout %s: settings unavailable: %v", a.ID, err)
		settings = nil
	}
	quote := pricing.QuoteFor(lines, req.Method, settings)

	a.setState(model.StateCreatingOrder)

	// The backend takes one item per order; the cart's first line is the
	// one being bought.
	line := lines[0]
	order, err := s.Gateway.CreateOrder(ctx, model.OrderDraft{
		BuyerEmail:      req.Buyer.Email,
		ItemID:          line.ItemID,
		PaymentMethod:   req.Method,
		BuyerName:       req.Buyer.Name,
		BuyerPhone:      req.Buyer.Phone,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		a.finish(&Result{State: model.StateFailed, Quote: quote, Message: err.Error(),
			Failure: &payment.Failure{Reason: payment.ReasonProviderError, Detail: "order could not be created"}})
		return
	}

	s.mu.Lock()
	s.byOrder[order.OrderID] = a
	s.mu.Unlock()

	if req.Method == model.PaymentCOD {
		s.clearCart(a)
		a.finish(&Result{
			State:     model.StateCODPlaced,
			OrderID:   order.OrderID,
			ItemPrice: order.ItemPrice.StringFixed(2),
			Quote:     quote,
			Message:   "order placed, pay on delivery",
		})
		return
	}

	a.setState(model.StateAwaitingPayment)

	outcome := make(chan Result, 1)
	cb := payment.Guarded(payment.Callbacks{
		OnRedirect: a.setRedirect,
		OnSuccess: func(paymentID string) {
			outcome <- Result{State: model.StateSucceeded, PaymentID: paymentID}
		},
		OnFailure: func(f payment.Failure) {
			outcome <- Result{State: model.StateFailed, Failure: &payment.Failure{Reason: f.Reason, Detail: f.Detail}}
		},
		OnPlaced: func() {
			outcome <- Result{State: model.StateCODPlaced}
		},
	})

	if err := driver.Initiate(ctx, payment.Request{
		Amount:    order.ItemPrice,
		OrderRef:  order.OrderID,
		Buyer:     req.Buyer,
		Card:      req.Card,
		CardToken: req.CardToken,
	}, cb); err != nil {
		a.finish(&Result{State: model.StateFailed, OrderID: order.OrderID, Quote: quote, Message: err.Error(),
			Failure: &payment.Failure{Reason: payment.ReasonProviderError, Detail: "payment could not be started"}})
		return
	}

	var res Result
	fromDriver := true
	select {
	case res = <-outcome:
	case <-s.getClock().After(s.timeout()):
		fromDriver = false
		res = Result{State: model.StateFailed,
			Failure: &payment.Failure{Reason: payment.ReasonTimeout, Detail: "payment did not complete in time"}}
	case <-ctx.Done():
		fromDriver = false
		res = Result{State: model.StateFailed,
			Failure: &payment.Failure{Reason: payment.ReasonCancelled, Detail: "checkout cancelled"}}
	}

	if !fromDriver {
		// A driver holding per-order callbacks (hosted checkout) must drop
		// its entry when the attempt resolves without a provider return.
		if abandoner, ok := driver.(interface{ Abandon(orderRef string) bool }); ok {
			abandoner.Abandon(order.OrderID)
		}
	}

	res.OrderID = order.OrderID
	res.ItemPrice = order.ItemPrice.StringFixed(2)
	res.Quote = quote
	res.RedirectURL = a.RedirectURL()

	if res.State == model.StateCODPlaced {
		s.clearCart(a)
		res.Message = "order placed, pay on delivery"
		a.finish(&res)
		return
	}

	if res.State != model.StateSucceeded {
		// Payment failed: the order reference is abandoned and the cart is
		// left intact for a retry.
		a.finish(&res)
		return
	}

	a.setState(model.StateReconciling)
	if err := s.Gateway.UpdatePaymentStatus(ctx, order.OrderID, res.PaymentID, model.PaymentPaid, a.takeExtras()); err != nil {
		// The buyer has paid; a failed status write must not undo that.
		log.Printf("checkout %s: reconciliation warning: order %s paid (payment %s) but status update failed: %v",
			a.ID, order.OrderID, res.PaymentID, err)
		res.ReconciliationWarn = true
	}

	s.clearCart(a)
	res.Message = "payment successful"
	a.finish(&res)
}

func (s *CheckoutService) timeout() time.Duration {
	if s.Timeout <= 0 {
		return defaultPaymentTimeout
	}
	return s.Timeout
}

// clearCart runs on its own context: a cancelled request must not leave a
// bought item sitting in the cart.
func (s *CheckoutService) clearCart(a *Attempt) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Cart.Clear(ctx, a.BuyerEmail); err != nil {
		log.Printf("checkout %s: cart clear failed for %s: %v", a.ID, a.BuyerEmail, err)
	}
}

func (s *CheckoutService) release(a *Attempt) {
	s.mu.Lock()
	if s.inflight[a.BuyerEmail] == a {
		delete(s.inflight, a.BuyerEmail)
	}
	if s.selected[a.BuyerEmail] != "" {
		delete(s.selected, a.BuyerEmail)
	}
	s.mu.Unlock()

	// The terminal attempt stays pollable for a retention window, then its
	// bookkeeping is dropped so a long-running process does not grow one
	// entry per checkout.
	go func() {
		<-s.getClock().After(attemptRetention)
		var orderID string
		if res := a.Result(); res != nil {
			orderID = res.OrderID
		}
		s.mu.Lock()
		delete(s.attempts, a.ID)
		if orderID != "" && s.byOrder[orderID] == a {
			delete(s.byOrder, orderID)
		}
		s.mu.Unlock()
	}()
}
