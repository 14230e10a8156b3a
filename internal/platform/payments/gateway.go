// Package payments abstracts the card payment gateway. Production would talk
// to a real processor; the mock gateway keeps the same request/response shape
// so the billing service does not care which one it holds.
package payments

import "context"

// ChargeRequest describes a single card charge. AmountCents avoids the float
// rounding problems of charging dollar amounts directly.
type ChargeRequest struct {
	AmountCents     int64
	Currency        string
	PaymentMethodID string
	Metadata        map[string]string
}

// ChargeResult is the gateway's answer. Success false means the charge was
// declined; Error carries the decline reason.
type ChargeResult struct {
	Success         bool
	PaymentIntentID string
	Error           string
}

// Gateway processes card charges.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
