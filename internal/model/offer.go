package model

import "time"

// Offer represents a surplus-food listing as published by the marketplace
// backend. The cart stores a copy of the offer, not a live reference, so
// backend changes to price or availability never retroactively alter items
// already in a cart.
type Offer struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	VendorID          string    `json:"vendorId,omitempty"`
	VendorName        string    `json:"vendorName,omitempty"`
	OriginalPrice     float64   `json:"originalPrice"`
	DiscountedPrice   float64   `json:"discountedPrice"`
	QuantityAvailable int       `json:"quantityAvailable"`
	PickupStart       time.Time `json:"pickupStart,omitempty"`
	PickupEnd         time.Time `json:"pickupEnd,omitempty"`
	Category          string    `json:"category,omitempty"`
}
