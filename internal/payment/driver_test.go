package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardedExactlyOnce(t *testing.T) {
	var successes, failures int
	cb := Guarded(Callbacks{
		OnSuccess: func(string) { successes++ },
		OnFailure: func(Failure) { failures++ },
	})

	cb.OnSuccess("PAY1")
	cb.OnSuccess("PAY2")
	cb.OnFailure(Failure{Reason: ReasonDeclined})

	assert.Equal(t, 1, successes, "second callback after terminal is a no-op")
	assert.Equal(t, 0, failures, "failure after success is dropped")
}

func TestGuardedFailureBlocksSuccess(t *testing.T) {
	var successes, failures int
	cb := Guarded(Callbacks{
		OnSuccess: func(string) { successes++ },
		OnFailure: func(Failure) { failures++ },
	})

	cb.OnFailure(Failure{Reason: ReasonCancelled})
	cb.OnSuccess("PAY1")
	cb.OnPlaced()

	assert.Equal(t, 0, successes)
	assert.Equal(t, 1, failures)
}

func TestGuardedNilCallbacksAreSafe(t *testing.T) {
	cb := Guarded(Callbacks{})
	assert.NotPanics(t, func() {
		cb.OnSuccess("PAY1")
		cb.OnFailure(Failure{})
		cb.OnPlaced()
	})
}

func TestCodDriverReportsPlacedImmediately(t *testing.T) {
	var placed bool
	d := NewCodDriver()
	err := d.Initiate(context.Background(), Request{}, Callbacks{
		OnSuccess: func(string) { t.Error("COD has no payment id") },
		OnPlaced:  func() { placed = true },
	})
	require.NoError(t, err)
	assert.True(t, placed)
	assert.Equal(t, KindCOD, d.Kind())
}

func TestNativeSDKUnavailableWithoutKey(t *testing.T) {
	d := NewNativeSDKDriver(nil, "")
	var failure *Failure
	err := d.Initiate(context.Background(), Request{CardToken: "tok"}, Callbacks{
		OnFailure: func(f Failure) { failure = &f },
	})
	require.NoError(t, err)
	require.NotNil(t, failure)
	assert.Equal(t, ReasonUnavailable, failure.Reason)
}

func TestNativeSDKRequiresToken(t *testing.T) {
	d := NewNativeSDKDriver(nil, "server-key")
	var failure *Failure
	err := d.Initiate(context.Background(), Request{}, Callbacks{
		OnFailure: func(f Failure) { failure = &f },
	})
	require.NoError(t, err)
	require.NotNil(t, failure)
	assert.Equal(t, ReasonValidation, failure.Reason)
}
