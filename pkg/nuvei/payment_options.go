package nuvei

import (
	"context"

	"github.com/noah-isme/nuvei-client/internal/gateway"
)

// PaymentOptionService manages user payment options (UPOs). Listing, adding
// by token and changing an existing UPO reuse the cached session token.
type PaymentOptionService struct {
	c *Client
}

func (s *PaymentOptionService) GetUserUPOs(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpGetUserUPOs, data)
}

// AddUPOCreditCard stores a card; billingAddress is signed field by field.
func (s *PaymentOptionService) AddUPOCreditCard(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpAddUPOCreditCard, data)
}

func (s *PaymentOptionService) AddUPOCreditCardByTempToken(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpAddUPOCreditCardByTempToken, data)
}

func (s *PaymentOptionService) AddUPOCreditCardByToken(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpAddUPOCreditCardByToken, data)
}

func (s *PaymentOptionService) SuspendUPO(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpSuspendUPO, data)
}

func (s *PaymentOptionService) EnableUPO(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpEnableUPO, data)
}

func (s *PaymentOptionService) DeleteUPO(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpDeleteUPO, data)
}
