package nuvei_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvei-client/internal/checksum"
	"github.com/noah-isme/nuvei-client/internal/gatewaytest"
	"github.com/noah-isme/nuvei-client/pkg/nuvei"
)

var merchant = gatewaytest.Merchant{MerchantID: "123", MerchantSiteID: "456", SecretKey: "s3cr3t"}

func newClient(t *testing.T, srv *gatewaytest.Server, opts ...nuvei.Option) *nuvei.Client {
	t.Helper()
	base := []nuvei.Option{nuvei.WithBaseURL(srv.URL), nuvei.WithHTTPClient(srv.Client())}
	client, err := nuvei.New(merchant.MerchantID, 456, merchant.SecretKey, "int", append(base, opts...)...)
	require.NoError(t, err)
	return client
}

func startGateway(t *testing.T, opts ...gatewaytest.Option) *gatewaytest.Server {
	t.Helper()
	srv := gatewaytest.New(merchant, opts...)
	t.Cleanup(srv.Close)
	return srv
}

func wait(t *testing.T, f *nuvei.Future) (nuvei.Response, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.Wait(ctx)
}

type siteNumber uint16

func TestNewAcceptsStringOrIntegerSiteID(t *testing.T) {
	sites := []any{
		"456", json.Number("456"), siteNumber(456),
		456, int8(45), int16(456), int32(456), int64(456),
		uint(456), uint8(45), uint16(456), uint32(456), uint64(456),
	}
	for _, site := range sites {
		_, err := nuvei.New("123", site, "s3cr3t", "")
		require.NoError(t, err, "site %T", site)
	}

	for _, site := range []any{45.6, -5, "-5", "1.5", "4e2"} {
		_, err := nuvei.New("123", site, "s3cr3t", "")
		require.Error(t, err, "site %v", site)
	}
	_, err := nuvei.New("", 456, "s3cr3t", "")
	require.Error(t, err)
	_, err = nuvei.New("123", 456, "", "")
	require.Error(t, err)
}

func TestClientDefaultsAndSetters(t *testing.T) {
	client, err := nuvei.New("123", "456", "s3cr3t", "")
	require.NoError(t, err)
	require.Equal(t, "sha256", client.Algorithm())
	require.Equal(t, "en", client.ErrLocale())
	require.True(t, client.RequestValidation())

	require.NoError(t, client.SetAlgorithm("MD5"))
	require.Equal(t, "md5", client.Algorithm())
	err = client.SetAlgorithm("sha1")
	require.ErrorIs(t, err, checksum.ErrUnsupportedAlgorithm)
	require.Equal(t, "md5", client.Algorithm())

	require.NoError(t, client.SetErrLocale("DE"))
	require.Equal(t, "de", client.ErrLocale())
	require.ErrorIs(t, client.SetErrLocale("xx"), nuvei.ErrUnsupportedLocale)
	require.Equal(t, "de", client.ErrLocale())

	client.SetRequestValidation(false)
	require.False(t, client.RequestValidation())
}

func TestCreateUserEndToEnd(t *testing.T) {
	srv := startGateway(t)
	client := newClient(t, srv)

	data := nuvei.Request{"userTokenId": "u1", "countryCode": "US", "firstName": "Ada", "email": "ada@example.com"}
	resp, err := wait(t, client.Users().CreateUser(context.Background(), data))
	require.NoError(t, err)
	require.Equal(t, "SUCCESS", resp.String("status"))
	require.Equal(t, "u1", resp.String("userTokenId"))

	require.Len(t, data, 4, "caller data must not be modified")
	sent := srv.Requests("createUser")
	require.Len(t, sent, 1)
	require.Equal(t, "456", sent[0].String("merchantSiteId"))
	require.Len(t, sent[0].String("checksum"), 64)
	require.Len(t, sent[0].String("timeStamp"), 14)
}

func TestCreateUserValidationNeverReachesGateway(t *testing.T) {
	srv := startGateway(t)
	client := newClient(t, srv)

	_, err := wait(t, client.Users().CreateUser(context.Background(), nuvei.Request{"userTokenId": "u1", "countryCode": "XX"}))
	var verr *nuvei.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 4001, verr.ErrCode)
	require.Contains(t, verr.Reason, "countryCode")
	require.Zero(t, srv.Calls("createUser"))

	raw, err := json.Marshal(verr)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"errCode":4001`)

	client.SetRequestValidation(false)
	_, err = wait(t, client.Users().CreateUser(context.Background(), nuvei.Request{"userTokenId": "u1", "countryCode": "XX"}))
	require.NoError(t, err)
	require.Equal(t, 1, srv.Calls("createUser"))
}

func TestMD5ChecksumAcceptedWhenSelected(t *testing.T) {
	srv := startGateway(t, gatewaytest.WithAlgorithm(checksum.MD5))
	client := newClient(t, srv)

	_, err := wait(t, client.Payments().GetSessionToken(context.Background(), nil))
	var apiErr *nuvei.APIError
	require.ErrorAs(t, err, &apiErr)
	require.EqualValues(t, gatewaytest.ErrCodeInvalidChecksum, apiErr.ErrCode)

	require.NoError(t, client.SetAlgorithm("md5"))
	_, err = wait(t, client.Payments().GetSessionToken(context.Background(), nil))
	require.NoError(t, err)
}

func TestSessionTokenFlowsToPaymentOptions(t *testing.T) {
	srv := startGateway(t, gatewaytest.WithStrictSessions())
	client := newClient(t, srv)
	ctx := context.Background()

	_, err := wait(t, client.PaymentOptions().DeleteUPO(ctx, nuvei.Request{"userTokenId": "u1", "userPaymentOptionId": "9"}))
	require.Error(t, err)

	resp, err := wait(t, client.Payments().GetSessionToken(ctx, nil))
	require.NoError(t, err)
	token := resp.String("sessionToken")

	for _, f := range []*nuvei.Future{
		client.PaymentOptions().GetUserUPOs(ctx, nuvei.Request{"userTokenId": "u1"}),
		client.PaymentOptions().SuspendUPO(ctx, nuvei.Request{"userTokenId": "u1", "userPaymentOptionId": "9"}),
		client.PaymentOptions().EnableUPO(ctx, nuvei.Request{"userTokenId": "u1", "userPaymentOptionId": "9"}),
		client.PaymentOptions().DeleteUPO(ctx, nuvei.Request{"userTokenId": "u1", "userPaymentOptionId": "9"}),
		client.PaymentOptions().AddUPOCreditCardByToken(ctx, nuvei.Request{"userTokenId": "u1", "userPaymentOptionId": "9"}),
	} {
		_, err := wait(t, f)
		require.NoError(t, err)
	}
	require.Equal(t, token, srv.Requests("addUPOCreditCardByToken")[0].String("sessionToken"))
}

func TestEveryPaymentOperationPassesChecksumVerification(t *testing.T) {
	srv := startGateway(t)
	client := newClient(t, srv)
	ctx := context.Background()
	p := client.Payments()
	order := nuvei.Request{"amount": "10.00", "currency": "EUR", "clientUniqueId": "cu1"}

	calls := map[string]*nuvei.Future{
		"getSessionToken":           p.GetSessionToken(ctx, nil),
		"openOrder":                 p.OpenOrder(ctx, order),
		"updateOrder":               p.UpdateOrder(ctx, order),
		"getOrderDetails":           p.GetOrderDetails(ctx, nuvei.Request{"orderId": "o1"}),
		"payment":                   p.CreatePayment(ctx, order),
		"initPayment":               p.InitPayment(ctx, order),
		"paymentCC":                 p.PaymentCC(ctx, order),
		"paymentAPM":                p.PaymentAPM(ctx, order),
		"settleTransaction":         p.SettleTransaction(ctx, order),
		"refundTransaction":         p.RefundTransaction(ctx, order),
		"voidTransaction":           p.VoidTransaction(ctx, order),
		"dynamic3D":                 p.Dynamic3D(ctx, order),
		"authorize3d":               p.Authorize3D(ctx, order),
		"verify3d":                  p.Verify3D(ctx, order),
		"getCardDetails":            p.GetCardDetails(ctx, nuvei.Request{"cardNumber": "4111111111111111"}),
		"getMerchantPaymentMethods": p.GetMerchantPaymentMethods(ctx, nil),
	}
	for op, f := range calls {
		_, err := wait(t, f)
		require.NoError(t, err, op)
		require.Equal(t, 1, srv.Calls(op), op)
	}

	_, err := wait(t, p.Authorization3D(ctx, order))
	require.NoError(t, err)
	require.Equal(t, 2, srv.Calls("dynamic3D"))
	require.Zero(t, srv.Calls("authorization3D"))
}

func TestSessionKeyedOperationsSendDataAsGiven(t *testing.T) {
	srv := startGateway(t)
	client := newClient(t, srv)

	data := nuvei.Request{"merchantId": "123", "merchantSiteId": "456", "sessionToken": "s1", "cardData": map[string]any{"cardNumber": "4111"}}
	_, err := wait(t, client.Payments().CardTokenization(context.Background(), data))
	require.NoError(t, err)
	sent := srv.Requests("cardTokenization")[0]
	_, stamped := sent["timeStamp"]
	require.False(t, stamped)
	_, signed := sent["checksum"]
	require.False(t, signed)

	_, err = wait(t, client.Payments().GetPaymentStatus(context.Background(), nuvei.Request{"sessionToken": "s1"}))
	require.NoError(t, err)
}

func TestUnsupportedOperations(t *testing.T) {
	srv := startGateway(t)
	client := newClient(t, srv)

	_, err := wait(t, client.Payments().Payment3D(context.Background(), nil))
	require.ErrorIs(t, err, nuvei.ErrUnsupportedOperation)
	_, err = wait(t, client.Payments().Payout(context.Background(), nil))
	require.ErrorIs(t, err, nuvei.ErrUnsupportedOperation)
	_, err = wait(t, client.Call(context.Background(), "refundEverything", nil))
	require.ErrorIs(t, err, nuvei.ErrUnknownOperation)
	require.Zero(t, srv.Calls("payment3D"))
	require.Zero(t, srv.Calls("payout"))
	require.Contains(t, nuvei.Operations(), "getUserUPOs")
}

func TestThenDeliversOriginalRequest(t *testing.T) {
	srv := startGateway(t)
	srv.Reply("getUserDetails", http.StatusOK, map[string]any{"status": "ERROR", "errCode": 1016, "reason": "User not found"})
	client := newClient(t, srv)

	var (
		wg     sync.WaitGroup
		gotErr error
		gotReq nuvei.Request
	)
	wg.Add(1)
	client.Users().GetUserDetails(context.Background(), nuvei.Request{"userTokenId": "ghost"}).Then(
		func(err error, _ nuvei.Response, req nuvei.Request) {
			defer wg.Done()
			gotErr, gotReq = err, req
		})
	wg.Wait()

	var apiErr *nuvei.APIError
	require.True(t, errors.As(gotErr, &apiErr))
	require.EqualValues(t, 1016, apiErr.ErrCode)
	require.Equal(t, "User not found", apiErr.Reason)
	require.Equal(t, "ghost", gotReq.String("userTokenId"))
	require.NotEmpty(t, gotReq.String("checksum"))
}

func TestBreakerFailsFastAfterServerErrors(t *testing.T) {
	srv := startGateway(t)
	srv.Reply("getOrderDetails", http.StatusBadGateway, map[string]any{"status": "ERROR"})
	client := newClient(t, srv, nuvei.WithBreaker(nuvei.NewBreaker(1, 0.5, time.Minute)))

	_, err := wait(t, client.Payments().GetOrderDetails(context.Background(), nil))
	var apiErr *nuvei.APIError
	require.ErrorAs(t, err, &apiErr)

	_, err = wait(t, client.Payments().GetOrderDetails(context.Background(), nil))
	var terr *nuvei.TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, 1, srv.Calls("getOrderDetails"))
}

func TestMetricsOption(t *testing.T) {
	srv := startGateway(t)
	reg := prometheus.NewRegistry()
	metrics := nuvei.NewMetrics("facade_test", reg)
	client := newClient(t, srv, nuvei.WithMetrics(metrics))

	_, err := wait(t, client.Users().GetUserDetails(context.Background(), nuvei.Request{"userTokenId": "u1"}))
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("getUserDetails", "success")))
}
