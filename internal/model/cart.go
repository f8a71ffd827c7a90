package model

// LineItem is one offer plus the quantity of it held in a cart.
// Quantity is always >= 1; an item reduced to zero is removed from the cart,
// never retained as a zero-quantity record. PriceMinor is the discounted
// price converted to integer minor currency units at the time the offer
// entered the cart, so all totals are computed with integer arithmetic.
type LineItem struct {
	Offer      Offer `json:"offer"`
	Quantity   int   `json:"quantity"`
	PriceMinor int64 `json:"priceMinor"`
}

// CartResponse is the cart read model returned to clients.
type CartResponse struct {
	Items      []LineItem `json:"items"`
	ItemCount  int        `json:"itemCount"`
	TotalMinor int64      `json:"totalMinor"`
	Total      float64    `json:"total"`
}

// UpdateQuantityRequest is the request payload for changing a line item's
// quantity. A quantity of zero or below removes the item.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
