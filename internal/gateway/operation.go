package gateway

import (
	"sort"

	"github.com/noah-isme/nuvei-client/internal/checksum"
)

// Stamp selects which identity and timing fields the builder adds.
type Stamp int

const (
	// StampFull adds merchantId, merchantSiteId, clientRequestId and timeStamp.
	StampFull Stamp = iota
	// StampIdentity adds merchantId, merchantSiteId and clientRequestId.
	StampIdentity
	// StampNone sends the caller's data as given.
	StampNone
)

func (s Stamp) String() string {
	switch s {
	case StampFull:
		return "full"
	case StampIdentity:
		return "identity"
	case StampNone:
		return "none"
	default:
		return "unknown"
	}
}

// Operation describes how one gateway operation is built.
type Operation struct {
	Name  string
	Stamp Stamp
	// Checksum lists the checksum inputs in order; nil means no checksum.
	Checksum checksum.Spec
	// AttachSession adds the cached session token when the caller sent none.
	AttachSession bool
	// IssuesSession marks the operation whose reply carries a session token.
	IssuesSession bool
	// Unsupported operations resolve with ErrUnsupportedOperation without I/O.
	Unsupported bool
}

// Well-known operation names.
const (
	OpGetSessionToken             = "getSessionToken"
	OpOpenOrder                   = "openOrder"
	OpUpdateOrder                 = "updateOrder"
	OpGetOrderDetails             = "getOrderDetails"
	OpPayment                     = "payment"
	OpPaymentCC                   = "paymentCC"
	OpPaymentAPM                  = "paymentAPM"
	OpInitPayment                 = "initPayment"
	OpSettleTransaction           = "settleTransaction"
	OpRefundTransaction           = "refundTransaction"
	OpVoidTransaction             = "voidTransaction"
	OpDynamic3D                   = "dynamic3D"
	OpAuthorization3D             = "authorization3D"
	OpAuthorize3D                 = "authorize3d"
	OpVerify3D                    = "verify3d"
	OpPayment3D                   = "payment3D"
	OpPayout                      = "payout"
	OpCardTokenization            = "cardTokenization"
	OpGetPaymentStatus            = "getPaymentStatus"
	OpGetCardDetails              = "getCardDetails"
	OpGetMerchantPaymentMethods   = "getMerchantPaymentMethods"
	OpCreateUser                  = "createUser"
	OpUpdateUser                  = "updateUser"
	OpGetUserDetails              = "getUserDetails"
	OpGetUserUPOs                 = "getUserUPOs"
	OpAddUPOCreditCard            = "addUPOCreditCard"
	OpAddUPOCreditCardByTempToken = "addUPOCreditCardByTempToken"
	OpAddUPOCreditCardByToken     = "addUPOCreditCardByToken"
	OpSuspendUPO                  = "suspendUPO"
	OpEnableUPO                   = "enableUPO"
	OpDeleteUPO                   = "deleteUPO"
)

// BillingAddressFields is the order in which a billingAddress contributes to
// a checksum.
var BillingAddressFields = []string{
	"firstName", "lastName", "address", "phone", "zip", "city", "countryCode", "state", "email", "county",
}

var (
	amountSpec = checksum.Fields(
		"merchantId", "merchantSiteId", "clientRequestId", "amount", "currency", "timeStamp", "secretKey",
	)
	baseSpec = checksum.Fields(
		"merchantId", "merchantSiteId", "clientRequestId", "timeStamp", "secretKey",
	)
	userSpec = checksum.Fields(
		"merchantId", "merchantSiteId", "userTokenId", "clientRequestId", "timeStamp", "secretKey",
	)
	upoSpec = checksum.Fields(
		"merchantId", "merchantSiteId", "userTokenId", "clientRequestId", "userPaymentOptionId", "timeStamp", "secretKey",
	)
	userDataSpec = checksum.Fields(
		"merchantId", "merchantSiteId", "userTokenId", "clientRequestId",
		"firstName", "lastName", "address", "state", "city", "zip", "countryCode", "phone", "locale", "email", "county",
		"timeStamp", "secretKey",
	)
	settleSpec = checksum.Fields(
		"merchantId", "merchantSiteId", "clientRequestId", "clientUniqueId", "amount", "currency",
		"relatedTransactionId", "authCode", "descriptorMerchantName", "descriptorMerchantPhone", "comment",
		"urlDetails", "timeStamp", "secretKey",
	).With("urlDetails", "notificationUrl")
	refundSpec = checksum.Fields(
		"merchantId", "merchantSiteId", "clientRequestId", "clientUniqueId", "amount", "currency",
		"relatedTransactionId", "authCode", "comment", "urlDetails", "timeStamp", "secretKey",
	).With("urlDetails", "notificationUrl")
	addCardSpec = checksum.Fields(
		"merchantId", "merchantSiteId", "userTokenId", "clientRequestId",
		"ccCardNumber", "ccExpMonth", "ccExpYear", "ccNameOnCard", "billingAddress",
		"userPaymentOptionId", "timeStamp", "secretKey",
	).With("billingAddress", BillingAddressFields...)
)

var operations = func() map[string]Operation {
	ops := []Operation{
		{Name: OpGetSessionToken, Checksum: baseSpec, IssuesSession: true},
		{Name: OpOpenOrder, Checksum: amountSpec},
		{Name: OpUpdateOrder, Checksum: amountSpec},
		{Name: OpGetOrderDetails, Checksum: baseSpec},
		{Name: OpPayment, Checksum: amountSpec},
		{Name: OpPaymentCC, Checksum: amountSpec},
		{Name: OpPaymentAPM, Checksum: amountSpec},
		{Name: OpInitPayment, Checksum: amountSpec},
		{Name: OpSettleTransaction, Checksum: settleSpec},
		{Name: OpRefundTransaction, Checksum: refundSpec},
		{Name: OpVoidTransaction, Checksum: refundSpec},
		{Name: OpDynamic3D, Checksum: amountSpec},
		{Name: OpAuthorize3D, Checksum: amountSpec},
		{Name: OpVerify3D},
		{Name: OpPayment3D, Unsupported: true},
		{Name: OpPayout, Unsupported: true},
		{Name: OpCardTokenization, Stamp: StampNone},
		{Name: OpGetPaymentStatus, Stamp: StampNone},
		{Name: OpGetCardDetails, Stamp: StampIdentity},
		{Name: OpGetMerchantPaymentMethods, Checksum: baseSpec},
		{Name: OpCreateUser, Checksum: userDataSpec},
		{Name: OpUpdateUser, Checksum: userDataSpec},
		{Name: OpGetUserDetails, Checksum: userSpec},
		{Name: OpGetUserUPOs, Checksum: userSpec, AttachSession: true},
		{Name: OpAddUPOCreditCard, Checksum: addCardSpec},
		{Name: OpAddUPOCreditCardByTempToken, Checksum: baseSpec},
		{Name: OpAddUPOCreditCardByToken, Checksum: upoSpec, AttachSession: true},
		{Name: OpSuspendUPO, Checksum: upoSpec, AttachSession: true},
		{Name: OpEnableUPO, Checksum: upoSpec, AttachSession: true},
		{Name: OpDeleteUPO, Checksum: upoSpec, AttachSession: true},
	}
	out := make(map[string]Operation, len(ops))
	for _, op := range ops {
		out[op.Name] = op
	}
	return out
}()

var aliases = map[string]string{
	OpAuthorization3D: OpDynamic3D,
}

// LookupOperation returns the definition for name, resolving aliases. The
// returned Operation carries the canonical name used on the wire.
func LookupOperation(name string) (Operation, bool) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	op, ok := operations[name]
	if !ok {
		return Operation{}, false
	}
	op.Checksum = append(checksum.Spec(nil), op.Checksum...)
	return op, true
}

// OperationNames lists every known operation, aliases excluded, sorted.
func OperationNames() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
