package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingDriver(orderRef, serverKey string, cb Callbacks) *HostedCheckoutDriver {
	d := NewHostedCheckoutDriver(nil, serverKey)
	d.pending[orderRef] = cb
	return d
}

func TestHostedUnavailableWithoutKey(t *testing.T) {
	d := NewHostedCheckoutDriver(nil, "")
	var failure *Failure
	err := d.Initiate(context.Background(), Request{OrderRef: "ORD-1"}, Callbacks{
		OnFailure: func(f Failure) { failure = &f },
	})
	require.NoError(t, err)
	require.NotNil(t, failure)
	assert.Equal(t, ReasonUnavailable, failure.Reason)
}

func TestCompleteFromReturnSuccessMarker(t *testing.T) {
	var paymentID string
	d := pendingDriver("ORD-1", "", Callbacks{
		OnSuccess: func(id string) { paymentID = id },
		OnFailure: func(f Failure) { t.Errorf("unexpected failure: %v", f) },
	})

	handled := d.CompleteFromReturn(ReturnParams{
		OrderRef:  "ORD-1",
		PaymentID: "MT-778",
		Status:    "payment-success",
	})
	assert.True(t, handled)
	assert.Equal(t, "MT-778", paymentID)
}

func TestCompleteFromReturnFailureMarkers(t *testing.T) {
	cases := []struct {
		status string
		reason FailureReason
	}{
		{"payment-failed", ReasonDeclined},
		{"deny", ReasonDeclined},
		{"expire", ReasonDeclined},
		{"cancel", ReasonCancelled},
		{"something-odd", ReasonProviderError},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			var failure *Failure
			d := pendingDriver("ORD-1", "", Callbacks{
				OnSuccess: func(string) { t.Error("must not succeed") },
				OnFailure: func(f Failure) { failure = &f },
			})
			require.True(t, d.CompleteFromReturn(ReturnParams{OrderRef: "ORD-1", Status: tc.status}))
			require.NotNil(t, failure)
			assert.Equal(t, tc.reason, failure.Reason)
		})
	}
}

func TestCompleteFromReturnSuccessWithoutPaymentID(t *testing.T) {
	var failure *Failure
	d := pendingDriver("ORD-1", "", Callbacks{
		OnSuccess: func(string) { t.Error("empty payment id must not count as success") },
		OnFailure: func(f Failure) { failure = &f },
	})
	require.True(t, d.CompleteFromReturn(ReturnParams{OrderRef: "ORD-1", Status: "settlement"}))
	require.NotNil(t, failure)
	assert.Equal(t, ReasonProviderError, failure.Reason)
}

func TestCompleteFromReturnBadSignature(t *testing.T) {
	var failure *Failure
	d := pendingDriver("ORD-1", "server-key", Callbacks{
		OnFailure: func(f Failure) { failure = &f },
	})
	require.True(t, d.CompleteFromReturn(ReturnParams{
		OrderRef:    "ORD-1",
		PaymentID:   "MT-778",
		Status:      "settlement",
		StatusCode:  "200",
		GrossAmount: "250.00",
		Signature:   "forged",
	}))
	require.NotNil(t, failure)
	assert.Equal(t, ReasonProviderError, failure.Reason)
	assert.Contains(t, failure.Detail, "signature")
}

func TestCompleteFromReturnMissingSignatureWithKey(t *testing.T) {
	var failure *Failure
	d := pendingDriver("ORD-1", "server-key", Callbacks{
		OnSuccess: func(string) { t.Error("unsigned return must not resolve paid") },
		OnFailure: func(f Failure) { failure = &f },
	})
	require.True(t, d.CompleteFromReturn(ReturnParams{
		OrderRef:  "ORD-1",
		PaymentID: "MT-778",
		Status:    "payment-success",
	}))
	require.NotNil(t, failure)
	assert.Equal(t, ReasonProviderError, failure.Reason)
	assert.Contains(t, failure.Detail, "signature")
}

func TestCompleteFromReturnUnknownOrderRef(t *testing.T) {
	d := NewHostedCheckoutDriver(nil, "server-key")
	assert.False(t, d.CompleteFromReturn(ReturnParams{OrderRef: "ORD-404", Status: "success"}))
}

func TestCompleteFromReturnIsOneShot(t *testing.T) {
	calls := 0
	d := pendingDriver("ORD-1", "", Callbacks{
		OnSuccess: func(string) { calls++ },
	})
	require.True(t, d.CompleteFromReturn(ReturnParams{OrderRef: "ORD-1", PaymentID: "MT-1", Status: "success"}))
	assert.False(t, d.CompleteFromReturn(ReturnParams{OrderRef: "ORD-1", PaymentID: "MT-1", Status: "success"}))
	assert.Equal(t, 1, calls)
}

func TestAbandonReportsCancelled(t *testing.T) {
	var failure *Failure
	d := pendingDriver("ORD-1", "", Callbacks{
		OnFailure: func(f Failure) { failure = &f },
	})
	require.True(t, d.Abandon("ORD-1"))
	require.NotNil(t, failure)
	assert.Equal(t, ReasonCancelled, failure.Reason)
	assert.False(t, d.Abandon("ORD-1"))
}
