package model

import "github.com/shopspring/decimal"

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCOD
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// OrderDraft carries the fields the backend requires to create an order.
type OrderDraft struct {
	BuyerEmail      string        `json:"buyer_email"`
	ItemID          int64         `json:"item_id"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	BuyerName       string        `json:"buyer_name"`
	BuyerPhone      string        `json:"buyer_phone"`
	DeliveryAddress string        `json:"delivery_address"`
}

// Order is the server-owned purchase record, referenced locally by id.
// ItemPrice is the backend's snapshot at creation time.
type Order struct {
	OrderID       string          `json:"order_id"`
	ItemID        int64           `json:"item_id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	ItemPrice     decimal.Decimal `json:"item_price"`
}

// Buyer is the authenticated identity a checkout runs under.
type Buyer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
