package checkout

type State string

const (
	StateCollectingShipping State = "COLLECTING_SHIPPING"
	StateCollectingPayment  State = "COLLECTING_PAYMENT"
	StateProcessing         State = "PROCESSING"
	StateSucceeded          State = "SUCCEEDED"
	StateFailed             State = "FAILED"
)

func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

// CanTransitionTo enumerates the legal state transitions. Failed returns
// to collecting payment so the user can retry with the cart and shipping
// draft preserved.
func CanTransitionTo(from, to State) bool {
	switch from {
	case StateCollectingShipping:
		return to == StateCollectingPayment
	case StateCollectingPayment:
		return to == StateProcessing || to == StateFailed
	case StateProcessing:
		return to == StateSucceeded || to == StateFailed
	case StateFailed:
		return to == StateCollectingPayment
	case StateSucceeded:
		return false
	default:
		return false
	}
}
