package model

// ListingKind is the transaction type of a marketplace item. It determines
// which price field applies (rent_price for rentals, price otherwise).
type ListingKind string

const (
	ListingSell            ListingKind = "sell"
	ListingRent            ListingKind = "rent"
	ListingSellAccessories ListingKind = "sell_accessories"
	ListingDonate          ListingKind = "donate"
)

func (k ListingKind) Valid() bool {
	switch k {
	case ListingSell, ListingRent, ListingSellAccessories, ListingDonate:
		return true
	}
	return false
}

// CartLine is one selected item pending purchase. Prices stay in the
// backend's decimal-string convention; a nil price means the listing has no
// price of that kind.
type CartLine struct {
	ItemID      int64       `json:"item_id"`
	Title       string      `json:"title"`
	UnitPrice   *string     `json:"price,omitempty"`
	RentPrice   *string     `json:"rent_price,omitempty"`
	ListingKind ListingKind `json:"listing_type"`
	ImagePath   *string     `json:"image,omitempty"`
	Quantity    int         `json:"quantity"` // always 1, items are unique secondhand goods
}

// CartResponse is returned when calling GET /api/cart
type CartResponse struct {
	Items []CartLine `json:"items"`
	Total string     `json:"total"`
}
