package nuvei

import (
	"context"

	"github.com/noah-isme/nuvei-client/internal/gateway"
)

// UserService manages the merchant's registered users.
type UserService struct {
	c *Client
}

// CreateUser registers userTokenId. The request is validated against the
// createUser schema unless validation is off.
func (s *UserService) CreateUser(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpCreateUser, data)
}

func (s *UserService) UpdateUser(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpUpdateUser, data)
}

func (s *UserService) GetUserDetails(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpGetUserDetails, data)
}

// GetUserUPOs lists the user's stored payment options.
func (s *UserService) GetUserUPOs(ctx context.Context, data Request) *Future {
	return s.c.Call(ctx, gateway.OpGetUserUPOs, data)
}
