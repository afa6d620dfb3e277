package model

// CheckoutState is one step of the checkout state machine.
type CheckoutState string

const (
	StateIdle            CheckoutState = "IDLE"
	StateValidating      CheckoutState = "VALIDATING"
	StateCreatingOrder   CheckoutState = "CREATING_ORDER"
	StateAwaitingPayment CheckoutState = "AWAITING_PAYMENT"
	StateReconciling     CheckoutState = "RECONCILING"
	StateSucceeded       CheckoutState = "SUCCEEDED"
	StateFailed          CheckoutState = "FAILED"
	StateCODPlaced       CheckoutState = "COD_PLACED"
)

func (s CheckoutState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCODPlaced
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}
