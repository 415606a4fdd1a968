package gateway_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvei-client/internal/gateway"
)

func TestOperationChecksumOrders(t *testing.T) {
	cases := map[string][]string{
		gateway.OpGetSessionToken: {"merchantId", "merchantSiteId", "clientRequestId", "timeStamp", "secretKey"},
		gateway.OpPaymentAPM:      {"merchantId", "merchantSiteId", "clientRequestId", "amount", "currency", "timeStamp", "secretKey"},
		gateway.OpGetUserUPOs:     {"merchantId", "merchantSiteId", "userTokenId", "clientRequestId", "timeStamp", "secretKey"},
		gateway.OpDeleteUPO:       {"merchantId", "merchantSiteId", "userTokenId", "clientRequestId", "userPaymentOptionId", "timeStamp", "secretKey"},
		gateway.OpUpdateUser: {
			"merchantId", "merchantSiteId", "userTokenId", "clientRequestId", "firstName", "lastName", "address",
			"state", "city", "zip", "countryCode", "phone", "locale", "email", "county", "timeStamp", "secretKey",
		},
		gateway.OpVoidTransaction: {
			"merchantId", "merchantSiteId", "clientRequestId", "clientUniqueId", "amount", "currency",
			"relatedTransactionId", "authCode", "comment", "urlDetails", "timeStamp", "secretKey",
		},
	}
	for name, want := range cases {
		op, ok := gateway.LookupOperation(name)
		require.True(t, ok, name)
		require.Equal(t, want, op.Checksum.Names(), name)
	}
}

func TestOperationsWithoutChecksum(t *testing.T) {
	for _, name := range []string{gateway.OpVerify3D, gateway.OpCardTokenization, gateway.OpGetPaymentStatus, gateway.OpGetCardDetails} {
		op, ok := gateway.LookupOperation(name)
		require.True(t, ok, name)
		require.Nil(t, op.Checksum, name)
	}
	op, _ := gateway.LookupOperation(gateway.OpVerify3D)
	require.Equal(t, gateway.StampFull, op.Stamp)
}

func TestAuthorization3DAliasesDynamic3D(t *testing.T) {
	op, ok := gateway.LookupOperation(gateway.OpAuthorization3D)
	require.True(t, ok)
	require.Equal(t, gateway.OpDynamic3D, op.Name)
	require.NotContains(t, gateway.OperationNames(), gateway.OpAuthorization3D)
}

func TestAddUPOCreditCardByTokenHasOwnEndpoint(t *testing.T) {
	op, ok := gateway.LookupOperation(gateway.OpAddUPOCreditCardByToken)
	require.True(t, ok)
	require.Equal(t, gateway.OpAddUPOCreditCardByToken, op.Name)
	require.True(t, op.AttachSession)
}

func TestUnsupportedAndUnknownOperations(t *testing.T) {
	for _, name := range []string{gateway.OpPayment3D, gateway.OpPayout} {
		op, ok := gateway.LookupOperation(name)
		require.True(t, ok)
		require.True(t, op.Unsupported)
	}
	_, ok := gateway.LookupOperation("refund")
	require.False(t, ok)
}

func TestLookupReturnsIndependentSpec(t *testing.T) {
	op, _ := gateway.LookupOperation(gateway.OpPayment)
	op.Checksum[0].Name = "tampered"
	again, _ := gateway.LookupOperation(gateway.OpPayment)
	require.Equal(t, "merchantId", again.Checksum[0].Name)
}
