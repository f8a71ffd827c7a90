package model

// PendingPayment is the transient linkage between a backend-created order and
// an in-progress payment session. Exactly one is active per user at a time;
// it is destroyed when payment succeeds or the checkout is cancelled.
type PendingPayment struct {
	OrderID         string `json:"orderId"`
	AmountMinor     int64  `json:"amountMinor"`
	ClientSecret    string `json:"clientSecret,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}

// CheckoutRequest is the request payload for starting a checkout.
type CheckoutRequest struct {
	VoucherCode string `json:"voucherCode,omitempty"`
}

// CompletePaymentRequest carries the payment provider outcome reported back
// by the client once the provider sheet has settled.
type CompletePaymentRequest struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// CheckoutStatusResponse is the checkout state read model.
type CheckoutStatusResponse struct {
	State     string          `json:"state"`
	Pending   *PendingPayment `json:"pending,omitempty"`
	LastError string          `json:"lastError,omitempty"`
}
