package adapter

import "context"

// CheckoutRequest carries everything the gateway needs to open a checkout
// session. Amount is always derived from the catalog by the caller.
type CheckoutRequest struct {
	TransactionID string // our reference; echoed back in the callback
	Amount        int64
	Currency      string
	Description   string
	SuccessURL    string
	FailURL       string
	CancelURL     string
	IPNURL        string
	CustomerName  string
	CustomerEmail string
}

// CheckoutSession is the gateway's answer to InitiateCheckout.
type CheckoutSession struct {
	URL string // where the client is redirected to pay
	Raw map[string]any
}

// CallbackPayload is the four-field contract every confirmation must expose,
// whether it arrives as a webhook, a client redirect, or a validation poll.
// Raw preserves the full provider body verbatim for audit; nothing in it
// beyond these fields drives logic.
type CallbackPayload struct {
	TransactionID string
	Status        string
	Amount        int64
	ProviderID    string
	Raw           map[string]any
}

// Succeeded reports whether the provider status indicates a completed
// payment.
func (p CallbackPayload) Succeeded() bool {
	switch p.Status {
	case "VALID", "VALIDATED", "SUCCESS":
		return true
	}
	return false
}

// PaymentGateway is the hex port for the external payment provider.
type PaymentGateway interface {
	Name() string
	// InitiateCheckout opens a checkout session and returns the redirect
	// location. The call is a bounded network request; failure must fail
	// the initiating request.
	InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ValidateTransaction asks the provider for the authoritative state of
	// a transaction. Used by the stale-payment reconciler and by redirect
	// flows that cannot trust the browser-carried payload.
	ValidateTransaction(ctx context.Context, transactionID string) (*CallbackPayload, error)
}
