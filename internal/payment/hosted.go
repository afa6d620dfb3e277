package payment

import (
	"context"
	"strings"
	"sync"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	mt "ThriftStoreAPI/external/midtrans"
)

// HostedCheckoutDriver opens a provider-hosted payment page: Initiate creates
// a checkout session and reports the redirect URL; the terminal outcome
// arrives later through the provider's return redirect, whose URL markers and
// signature the return endpoint feeds into CompleteFromReturn.
type HostedCheckoutDriver struct {
	snap      *snap.Client
	serverKey string

	mu      sync.Mutex
	pending map[string]Callbacks // keyed by order ref
}

func NewHostedCheckoutDriver(client *snap.Client, serverKey string) *HostedCheckoutDriver {
	return &HostedCheckoutDriver{
		snap:      client,
		serverKey: serverKey,
		pending:   make(map[string]Callbacks),
	}
}

func (d *HostedCheckoutDriver) Kind() Kind { return KindHosted }

func (d *HostedCheckoutDriver) Initiate(ctx context.Context, req Request, cb Callbacks) error {
	if d.serverKey == "" {
		cb.OnFailure(Failure{Reason: ReasonUnavailable, Detail: "hosted checkout is not configured in this host"})
		return nil
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderRef,
			GrossAmt: req.Amount.Round(0).IntPart(),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Buyer.Name,
			Email: req.Buyer.Email,
			Phone: req.Buyer.Phone,
		},
	}

	resp, snapErr := d.snap.CreateTransaction(snapReq)
	if snapErr != nil {
		cb.OnFailure(Failure{Reason: ReasonProviderError, Detail: snapErr.Message})
		return nil
	}

	d.mu.Lock()
	d.pending[req.OrderRef] = cb
	d.mu.Unlock()

	if cb.OnRedirect != nil {
		cb.OnRedirect(resp.RedirectURL)
	}
	return nil
}

// ReturnParams is what the provider's redirect back to us carries.
type ReturnParams struct {
	OrderRef    string
	PaymentID   string
	Status      string // provider transaction status or URL marker
	StatusCode  string
	GrossAmount string
	Signature   string
}

// CompleteFromReturn resolves a pending attempt from the provider's return
// redirect. Returns false when no attempt is pending for the order ref
// (already resolved, or never initiated here).
func (d *HostedCheckoutDriver) CompleteFromReturn(p ReturnParams) bool {
	cb, ok := d.take(p.OrderRef)
	if !ok {
		return false
	}

	// The return endpoint is public; with a server key configured every
	// return must carry a valid signature, or anyone who knows an order id
	// could resolve it paid with a crafted query string.
	if d.serverKey != "" && !mt.VerifySignature(p.OrderRef, p.StatusCode, p.GrossAmount, p.Signature, d.serverKey) {
		cb.OnFailure(Failure{Reason: ReasonProviderError, Detail: "missing or invalid signature"})
		return true
	}

	status := strings.ToLower(p.Status)
	switch {
	case strings.Contains(status, "success"), status == "settlement", status == "capture":
		if p.PaymentID == "" {
			cb.OnFailure(Failure{Reason: ReasonProviderError, Detail: "provider confirmed payment without a payment id"})
			return true
		}
		cb.OnSuccess(p.PaymentID)
	case strings.Contains(status, "cancel"):
		cb.OnFailure(Failure{Reason: ReasonCancelled, Detail: "payment was cancelled"})
	case strings.Contains(status, "fail"), status == "deny", status == "expire":
		cb.OnFailure(Failure{Reason: ReasonDeclined, Detail: "payment was declined by the provider"})
	default:
		cb.OnFailure(Failure{Reason: ReasonProviderError, Detail: "unrecognized return status " + p.Status})
	}
	return true
}

// Abandon resolves a pending attempt as cancelled (the buyer closed the
// payment page without completing it).
func (d *HostedCheckoutDriver) Abandon(orderRef string) bool {
	cb, ok := d.take(orderRef)
	if !ok {
		return false
	}
	cb.OnFailure(Failure{Reason: ReasonCancelled, Detail: "payment page was closed"})
	return true
}

func (d *HostedCheckoutDriver) take(orderRef string) (Callbacks, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb, ok := d.pending[orderRef]
	if ok {
		delete(d.pending, orderRef)
	}
	return cb, ok
}
