// Package nuvei is a client for the Nuvei (SafeCharge) REST payment API.
//
// Every operation stamps the merchant identity and request timing onto the
// caller's data, signs it with the endpoint's checksum, validates it when a
// schema is registered and posts it. Operations return a *Future that
// completes exactly once:
//
//	client, err := nuvei.New("123", 456, secret, "int")
//	resp, err := client.Users().GetUserDetails(ctx, nuvei.Request{"userTokenId": "u1"}).Wait(ctx)
package nuvei

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/noah-isme/nuvei-client/internal/gateway"
	"github.com/noah-isme/nuvei-client/internal/resilience"
	"github.com/noah-isme/nuvei-client/internal/schema"
	"github.com/noah-isme/nuvei-client/internal/session"
)

type (
	// Request is the caller's payload; it is never modified by the client.
	Request = gateway.Request
	// Response is the decoded gateway reply.
	Response = gateway.Response
	// Future is the pending outcome of one call.
	Future = gateway.Future
	// ValidationError reports a request rejected before sending.
	ValidationError = gateway.ValidationError
	// TransportError reports a request that never got a reply.
	TransportError = gateway.TransportError
	// APIError reports a reply that is not a success.
	APIError = gateway.APIError
)

// Errors a Future can resolve with before any request is sent.
var (
	ErrUnsupportedOperation = gateway.ErrUnsupportedOperation
	ErrUnknownOperation     = gateway.ErrUnknownOperation
	ErrUnsupportedLocale    = gateway.ErrUnsupportedLocale
)

// Client holds the merchant configuration and groups operations by area.
// It is safe for concurrent use; setters affect calls started afterwards.
type Client struct {
	settings   *gateway.Settings
	dispatcher *gateway.Dispatcher
	closers    []func() error

	payments       *PaymentService
	users          *UserService
	paymentOptions *PaymentOptionService
}

// New returns a client for one merchant site. siteID may be a string or any
// integer type; env selects the gateway host and defaults to "prod".
func New(merchantID string, siteID any, secretKey, env string, opts ...Option) (*Client, error) {
	site, err := formatSiteID(siteID)
	if err != nil {
		return nil, err
	}
	settings, err := gateway.NewSettings(gateway.Credentials{
		MerchantID:     merchantID,
		MerchantSiteID: site,
		SecretKey:      secretKey,
		Environment:    env,
	})
	if err != nil {
		return nil, err
	}

	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.breaker != nil && o.logger != nil {
		o.breaker.WithLogger(*o.logger)
	}

	c := &Client{settings: settings, closers: o.closers}
	c.dispatcher = &gateway.Dispatcher{
		Settings: settings,
		Builder: gateway.Builder{
			Now:      o.now,
			NewID:    o.newID,
			Location: o.location,
		},
		Schemas:   o.schemas,
		Transport: o.transport,
		Sessions:  o.sessions,
		BaseURL:   o.baseURL,
		Logger:    o.logger,
		Metrics:   o.metrics,
		Tracer:    o.tracer,
	}
	if c.dispatcher.Schemas == nil {
		c.dispatcher.Schemas = schema.Default()
	}
	if c.dispatcher.Sessions == nil {
		c.dispatcher.Sessions = session.NewMemoryStore(session.DefaultTTL)
	}
	if c.dispatcher.Transport == nil {
		httpClient := o.httpClient
		if httpClient == nil {
			httpClient = resilience.NewHTTPClient(0)
		}
		c.dispatcher.Transport = resilience.HTTPClient{
			Client:   httpClient,
			Breaker:  o.breaker,
			Limiter:  o.limiter,
			LimitKey: gateway.SessionKey(settings.Snapshot().MerchantID, site),
			Timeout:  o.timeout,
		}
	}

	c.payments = &PaymentService{c: c}
	c.users = &UserService{c: c}
	c.paymentOptions = &PaymentOptionService{c: c}
	return c, nil
}

// formatSiteID accepts strings, every integer kind (named types included) and
// fmt.Stringer, and renders integers in decimal. The digits-only rule is
// enforced by the credentials validator.
func formatSiteID(siteID any) (string, error) {
	switch v := siteID.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	rv := reflect.ValueOf(siteID)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	default:
		return "", fmt.Errorf("nuvei: merchant site id must be a string or integer, got %T", siteID)
	}
}

func (c *Client) Payments() *PaymentService             { return c.payments }
func (c *Client) Users() *UserService                   { return c.users }
func (c *Client) PaymentOptions() *PaymentOptionService { return c.paymentOptions }

// SetAlgorithm selects "md5" or "sha256", case-insensitively. On error the
// current algorithm is kept.
func (c *Client) SetAlgorithm(name string) error {
	_, err := c.settings.SetAlgorithm(name)
	return err
}

// Algorithm returns the current checksum algorithm.
func (c *Client) Algorithm() string {
	return c.settings.Algorithm().String()
}

// SetErrLocale selects the language of validation messages.
func (c *Client) SetErrLocale(locale string) error {
	_, err := c.settings.SetErrLocale(locale)
	return err
}

// ErrLocale returns the current validation message language.
func (c *Client) ErrLocale() string {
	return c.settings.ErrLocale()
}

// SetRequestValidation turns schema validation on or off.
func (c *Client) SetRequestValidation(enabled bool) {
	c.settings.SetRequestValidation(enabled)
}

// RequestValidation reports whether schema validation is on.
func (c *Client) RequestValidation() bool {
	return c.settings.RequestValidation()
}

// Call runs any operation by its wire name.
func (c *Client) Call(ctx context.Context, operation string, data Request) *Future {
	return c.dispatcher.Call(ctx, operation, data)
}

// Operations lists the operation names Call accepts.
func Operations() []string {
	return gateway.OperationNames()
}

// Close releases connections opened by NewFromConfig.
func (c *Client) Close() error {
	var errs []error
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
