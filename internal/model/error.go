package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeInvalidOffer         = "INVALID_OFFER"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeCheckoutInProgress   = "CHECKOUT_IN_PROGRESS"
	ErrCodeInvalidCheckoutState = "INVALID_CHECKOUT_STATE"
	ErrCodeCheckoutSuperseded   = "CHECKOUT_SUPERSEDED"
	ErrCodeInvalidVoucher       = "INVALID_VOUCHER_CODE"
	ErrCodeInvalidVoucherLength = "INVALID_VOUCHER_LENGTH"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// DomainError is a business-logic error carrying a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidOffer         = NewDomainError(ErrCodeInvalidOffer, "Offer must have a non-empty ID and a non-negative discounted price")
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrCheckoutInProgress   = NewDomainError(ErrCodeCheckoutInProgress, "A checkout is already in progress")
	ErrInvalidCheckoutState = NewDomainError(ErrCodeInvalidCheckoutState, "Operation not allowed in the current checkout state")
	ErrCheckoutSuperseded   = NewDomainError(ErrCodeCheckoutSuperseded, "Checkout was cancelled while the request was in flight")
	ErrInvalidVoucherCode   = NewDomainError(ErrCodeInvalidVoucher, "Voucher code is not recognised")
	ErrInvalidVoucherLength = NewDomainError(ErrCodeInvalidVoucherLength, "Voucher code must be between 8 and 10 characters")
)
