package checkout

// State is the current phase of a user's checkout flow.
type State string

const (
	StateIdle           State = "idle"
	StateCreatingOrder  State = "creating_order"
	StatePaymentLoading State = "payment_loading"
	StatePaymentReady   State = "payment_ready"
	StateProcessing     State = "processing"
	StateSuccess        State = "success"
	StateError          State = "error"
	StateCancelling     State = "cancelling"
)

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

// settled reports whether the state allows a fresh checkout to begin.
// A machine in success has finished its flow and is as good as idle.
func (s State) settled() bool {
	return s == StateIdle || s == StateSuccess
}

// ProviderCodeCancelled is the error code the payment provider reports when
// the user dismisses the payment sheet. It is explicitly distinguished from
// genuine failures: a cancelled sheet returns silently to payment_ready and
// must never surface an error dialog.
const ProviderCodeCancelled = "Canceled"

// ProviderResult is the payment provider outcome reported back by the
// client once the provider sheet has settled.
type ProviderResult struct {
	Succeeded    bool
	ErrorCode    string
	ErrorMessage string
}

// Cancelled reports whether the result is a user-cancelled payment sheet.
func (r ProviderResult) Cancelled() bool {
	return !r.Succeeded && r.ErrorCode == ProviderCodeCancelled
}
