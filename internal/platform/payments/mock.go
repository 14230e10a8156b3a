package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MockGateway simulates a card processor. Payment methods referencing the
// standard decline test card (4000 0000 0000 0002) or prefixed with
// "pm_declined" are declined; everything else succeeds with a synthetic
// intent ID.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.PaymentMethodID == "" {
		return nil, fmt.Errorf("payment method id is required")
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("charge amount must be positive, got %d", req.AmountCents)
	}

	if strings.Contains(req.PaymentMethodID, "0002") || strings.HasPrefix(req.PaymentMethodID, "pm_declined") {
		return &ChargeResult{
			Success: false,
			Error:   "Your card was declined.",
		}, nil
	}

	return &ChargeResult{
		Success:         true,
		PaymentIntentID: "pi_" + uuid.New().String(),
	}, nil
}
