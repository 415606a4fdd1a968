package nuvei

import (
	"context"

	"github.com/noah-isme/nuvei-client/internal/gateway"
)

// PaymentService covers orders, payments and transaction follow-ups.
type PaymentService struct {
	c *Client
}

// GetSessionToken opens a session. On success the token is cached and
// attached to later session-bound calls that do not carry their own.
func (s *PaymentService) GetSessionToken(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpGetSessionToken, data)
}

func (s *PaymentService) OpenOrder(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpOpenOrder, data)
}

func (s *PaymentService) UpdateOrder(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpUpdateOrder, data)
}

func (s *PaymentService) GetOrderDetails(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpGetOrderDetails, data)
}

// CreatePayment sends a payment request.
func (s *PaymentService) CreatePayment(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpPayment, data)
}

func (s *PaymentService) InitPayment(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpInitPayment, data)
}

func (s *PaymentService) PaymentCC(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpPaymentCC, data)
}

func (s *PaymentService) PaymentAPM(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpPaymentAPM, data)
}

// SettleTransaction captures a previously authorised transaction.
func (s *PaymentService) SettleTransaction(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpSettleTransaction, data)
}

func (s *PaymentService) RefundTransaction(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpRefundTransaction, data)
}

func (s *PaymentService) VoidTransaction(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpVoidTransaction, data)
}

func (s *PaymentService) Dynamic3D(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpDynamic3D, data)
}

// Authorization3D is the older name of Dynamic3D and hits the same endpoint.
func (s *PaymentService) Authorization3D(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpAuthorization3D, data)
}

func (s *PaymentService) Authorize3D(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpAuthorize3D, data)
}

// Verify3D is stamped but carries no checksum.
func (s *PaymentService) Verify3D(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpVerify3D, data)
}

// Payment3D always resolves with ErrUnsupportedOperation.
func (s *PaymentService) Payment3D(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpPayment3D, data)
}

// Payout always resolves with ErrUnsupportedOperation.
func (s *PaymentService) Payout(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpPayout, data)
}

// CardTokenization sends data as given: it is authorised by the sessionToken
// the caller supplies, not by a checksum.
func (s *PaymentService) CardTokenization(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpCardTokenization, data)
}

// GetPaymentStatus sends data as given, keyed by the caller's sessionToken.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpGetPaymentStatus, data)
}

func (s *PaymentService) GetCardDetails(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpGetCardDetails, data)
}

func (s *PaymentService) GetMerchantPaymentMethods(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpGetMerchantPaymentMethods, data)
}
