package payment

import "context"

// CodDriver defers payment to physical delivery. There is no gateway
// round-trip: the outcome is an immediate "order placed" with no payment id.
type CodDriver struct{}

func NewCodDriver() *CodDriver { return &CodDriver{} }

func (d *CodDriver) Kind() Kind { return KindCOD }

func (d *CodDriver) Initiate(ctx context.Context, req Request, cb Callbacks) error {
	if cb.OnPlaced != nil {
		cb.OnPlaced()
	}
	return nil
}
