package gateway_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvei-client/internal/checksum"
	"github.com/noah-isme/nuvei-client/internal/gateway"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedBuilder() gateway.Builder {
	return gateway.Builder{
		Now:   func() time.Time { return fixedNow },
		NewID: func() string { return "req-1" },
	}
}

func testSettings(t *testing.T) *gateway.Settings {
	t.Helper()
	s, err := gateway.NewSettings(gateway.Credentials{
		MerchantID:     "123",
		MerchantSiteID: "456",
		SecretKey:      "s3cr3t",
		Environment:    "int",
	})
	require.NoError(t, err)
	return s
}

func mustOp(t *testing.T, name string) gateway.Operation {
	t.Helper()
	op, ok := gateway.LookupOperation(name)
	require.True(t, ok, name)
	return op
}

func TestBuildFullStampAndChecksum(t *testing.T) {
	snap := testSettings(t).Snapshot()
	data := gateway.Request{"amount": "10.00", "currency": "USD", "secretKey": "leak", "merchantId": "999"}

	req, err := fixedBuilder().Build(mustOp(t, gateway.OpPayment), snap, data)
	require.NoError(t, err)

	require.Equal(t, "123", req["merchantId"])
	require.Equal(t, "456", req["merchantSiteId"])
	require.Equal(t, "req-1", req["clientRequestId"])
	require.Equal(t, "20240101120000", req["timeStamp"])
	require.NotContains(t, req, "secretKey")
	require.Equal(t, "be5e7a7e5aa043db06d62ad33b9651a6f1c726745aa46181a4cbb6ff7ef70379", req["checksum"])

	require.Equal(t, "leak", data["secretKey"], "caller data is not modified")
	require.NotContains(t, data, "checksum")
}

func TestBuildUsesMD5WhenSelected(t *testing.T) {
	settings := testSettings(t)
	_, err := settings.SetAlgorithm("MD5")
	require.NoError(t, err)

	req, err := fixedBuilder().Build(mustOp(t, gateway.OpPayment), settings.Snapshot(), gateway.Request{"amount": "10.00", "currency": "USD"})
	require.NoError(t, err)
	require.Equal(t, "8bcd1d91ab242f21eed9dd0ff3bbc657", req["checksum"])
}

func TestBuildTimestampLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	b := fixedBuilder()
	b.Location = loc

	req, err := b.Build(mustOp(t, gateway.OpGetSessionToken), testSettings(t).Snapshot(), nil)
	require.NoError(t, err)
	require.Equal(t, "20240101190000", req["timeStamp"])
	require.Len(t, req, 5)
}

func TestBuildIdentityStamp(t *testing.T) {
	req, err := fixedBuilder().Build(mustOp(t, gateway.OpGetCardDetails), testSettings(t).Snapshot(), gateway.Request{"cardNumber": "4111"})
	require.NoError(t, err)
	require.Equal(t, gateway.Request{
		"cardNumber":      "4111",
		"merchantId":      "123",
		"merchantSiteId":  "456",
		"clientRequestId": "req-1",
	}, req)
}

func TestBuildNoStamp(t *testing.T) {
	data := gateway.Request{"sessionToken": "abc"}
	req, err := fixedBuilder().Build(mustOp(t, gateway.OpGetPaymentStatus), testSettings(t).Snapshot(), data)
	require.NoError(t, err)
	require.Equal(t, data, req)
}

func TestBuildSettleNestedNotificationURL(t *testing.T) {
	snap := testSettings(t).Snapshot()
	data := gateway.Request{
		"clientUniqueId":          "cu",
		"amount":                  10,
		"currency":                "EUR",
		"relatedTransactionId":    "tx",
		"authCode":                "ac",
		"descriptorMerchantName":  "shop",
		"descriptorMerchantPhone": "555",
		"comment":                 "c",
		"urlDetails":              map[string]any{"notificationUrl": "https://n", "successUrl": "https://s"},
	}
	op := mustOp(t, gateway.OpSettleTransaction)
	req, err := fixedBuilder().Build(op, snap, data)
	require.NoError(t, err)

	source := "123456req-1cu10EURtxacshop555chttps://n20240101120000s3cr3t"
	require.Equal(t, source, checksum.SourceString(req, snap, op.Checksum))
	want, err := checksum.Compute(checksum.Values{"s": source}, nil, checksum.Fields("s"), checksum.SHA256)
	require.NoError(t, err)
	require.Equal(t, want, req["checksum"])

	refund := mustOp(t, gateway.OpRefundTransaction)
	delete(data, "urlDetails")
	req, err = fixedBuilder().Build(refund, snap, data)
	require.NoError(t, err)
	require.Equal(t, "123456req-1cu10EURtxacc20240101120000s3cr3t", checksum.SourceString(req, snap, refund.Checksum))
}

func TestBuildAddCardFlattensBillingAddress(t *testing.T) {
	snap := testSettings(t).Snapshot()
	op := mustOp(t, gateway.OpAddUPOCreditCard)
	req, err := fixedBuilder().Build(op, snap, gateway.Request{
		"userTokenId":  "u1",
		"ccCardNumber": "4111",
		"ccExpMonth":   "12",
		"ccExpYear":    "30",
		"ccNameOnCard": "A B",
		"billingAddress": map[string]any{
			"firstName": "A", "lastName": "B", "countryCode": "US", "email": "a@b.c",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "123456u1req-141111230A BABUSa@b.c20240101120000s3cr3t", checksum.SourceString(req, snap, op.Checksum))
}

type currencyCode string

func TestBuildSignsWireValues(t *testing.T) {
	snap := testSettings(t).Snapshot()
	op := mustOp(t, gateway.OpPayment)
	amount := "10.00"

	req, err := fixedBuilder().Build(op, snap, gateway.Request{"amount": &amount, "currency": currencyCode("USD")})
	require.NoError(t, err)
	require.Equal(t, "10.00", req["amount"])
	require.Equal(t, "USD", req["currency"])
	require.Equal(t, "be5e7a7e5aa043db06d62ad33b9651a6f1c726745aa46181a4cbb6ff7ef70379", req["checksum"])

	_, err = fixedBuilder().Build(op, snap, gateway.Request{"amount": make(chan int)})
	require.Error(t, err)
}
