package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

func validCard() *CardDetails {
	return &CardDetails{
		Number: "4111 1111 1111 1111",
		Holder: "TEST USER",
		Expiry: "12/28",
		CVV:    "123",
	}
}

func TestMockCardSucceedsAfterDelay(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := NewMockCardDriver().WithClock(clock)

	var paymentID string
	done := make(chan struct{})
	err := d.Initiate(context.Background(), Request{Card: validCard()}, Callbacks{
		OnSuccess: func(id string) { paymentID = id; close(done) },
		OnFailure: func(f Failure) { t.Errorf("unexpected failure: %v", f) },
	})
	require.NoError(t, err)

	select {
	case <-done:
		t.Fatal("success before the simulated delay elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(3 * time.Second)
	clock.BlockUntilReady()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("driver never called back")
	}

	assert.True(t, strings.HasPrefix(paymentID, "PAY"))
	assert.Greater(t, len(paymentID), len("PAY"))
}

func TestMockCardValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CardDetails)
	}{
		{"short number", func(c *CardDetails) { c.Number = "4111 1111" }},
		{"letters in number", func(c *CardDetails) { c.Number = "4111x11111111111" }},
		{"bad cvv", func(c *CardDetails) { c.CVV = "12" }},
		{"bad expiry", func(c *CardDetails) { c.Expiry = "13/28" }},
		{"missing holder", func(c *CardDetails) { c.Holder = "  " }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := validCard()
			tc.mutate(card)

			d := NewMockCardDriver().WithClock(clockz.NewFakeClock())
			var failure *Failure
			err := d.Initiate(context.Background(), Request{Card: card}, Callbacks{
				OnSuccess: func(string) { t.Error("must not succeed") },
				OnFailure: func(f Failure) { failure = &f },
			})
			require.NoError(t, err)
			require.NotNil(t, failure, "validation failures are reported synchronously")
			assert.Equal(t, ReasonValidation, failure.Reason)
		})
	}
}

func TestMockCardNilCard(t *testing.T) {
	d := NewMockCardDriver().WithClock(clockz.NewFakeClock())
	var failure *Failure
	_ = d.Initiate(context.Background(), Request{}, Callbacks{
		OnFailure: func(f Failure) { failure = &f },
	})
	require.NotNil(t, failure)
	assert.Equal(t, ReasonValidation, failure.Reason)
}

func TestMockCardCancellation(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := NewMockCardDriver().WithClock(clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Failure, 1)
	err := d.Initiate(ctx, Request{Card: validCard()}, Callbacks{
		OnSuccess: func(string) { t.Error("cancelled attempt must not succeed") },
		OnFailure: func(f Failure) { done <- f },
	})
	require.NoError(t, err)

	cancel()

	select {
	case f := <-done:
		assert.Equal(t, ReasonCancelled, f.Reason)
	case <-time.After(time.Second):
		t.Fatal("driver never reported cancellation")
	}
}
