package model

import "github.com/shopspring/decimal"

// PlatformSettings is the commission configuration, fetched once per checkout
// session from the backend. Read-only snapshot; never mutated locally.
type PlatformSettings struct {
	CommissionRate    decimal.Decimal // percent, online payments
	CODCommissionRate decimal.Decimal // percent, cash on delivery (0 in practice)
}
