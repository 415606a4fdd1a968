package schema

import "strconv"

func merchantID() *Schema {
	return &Schema{Type: KindString, Pattern: "[0-9]{1,20}", MinLength: Int(1), MaxLength: Int(20)}
}

func merchantSiteID() *Schema {
	return &Schema{AnyOf: []*Schema{
		{Type: KindInteger, Minimum: Float(1), Maximum: Float(99999999999999999999)},
		{Type: KindString, Pattern: "[0-9]{1,20}", MinLength: Int(1), MaxLength: Int(20)},
	}}
}

func clientRequestID() *Schema {
	return &Schema{Type: KindString, MinLength: Int(1), MaxLength: Int(255)}
}

func userTokenID() *Schema {
	return &Schema{Type: KindString, MinLength: Int(1), MaxLength: Int(255)}
}

func timeStamp() *Schema {
	return &Schema{Type: KindString, Pattern: "[0-9]{14}", MinLength: Int(14), MaxLength: Int(14)}
}

// checksumField accepts both md5 (32) and sha256 (64) hex digests.
func checksumField() *Schema {
	return &Schema{Type: KindString, Pattern: "[0-9a-f]{1,64}", MinLength: Int(32), MaxLength: Int(64)}
}

func sessionToken() *Schema {
	return &Schema{Type: KindString, Pattern: "[0-9a-f]{1,64}", MinLength: Int(36), MaxLength: Int(36)}
}

func amount() *Schema {
	return &Schema{OneOf: []*Schema{
		{Type: KindString, MaxLength: Int(12)},
		{Type: KindNumber, Minimum: Float(0)},
	}}
}

func countryCode() *Schema {
	return &Schema{Type: KindString, Title: "ISO 3166-1 Alpha-2 Country code", Enum: CountryCodes}
}

func currency() *Schema { return StringEnum(Currencies) }

func userLocale() *Schema { return StringEnum(UserLocales) }

func anyObject() *Schema { return &Schema{Type: KindObject} }

func anyArray() *Schema { return &Schema{Type: KindArray} }

func ipAddress() *Schema {
	return &Schema{Type: KindString, OneOf: []*Schema{{Format: "ipv4"}, {Format: "ipv6"}}}
}

func dynamicDescriptor() *Schema {
	return Object(true, map[string]*Schema{
		"merchantName":  MaxString(25),
		"merchantPhone": MaxString(13),
	})
}

func deviceDetails() *Schema {
	return Object(true, map[string]*Schema{
		"deviceType": MaxString(10),
		"deviceName": MaxString(255),
		"deviceOS":   MaxString(255),
		"browser":    MaxString(255),
		"ipAddress":  ipAddress(),
	})
}

func paymentUserDetails() *Schema {
	s := Object(true, map[string]*Schema{
		"firstName":   MaxString(30),
		"lastName":    MaxString(40),
		"address":     MaxString(60),
		"phone":       MaxString(18),
		"zip":         MaxString(10),
		"city":        MaxString(30),
		"cell":        MaxString(1000),
		"dateOfBirth": MaxString(1000),
		"country":     countryCode(),
		"state":       MaxString(2),
		"email":       MaxString(100),
		"county":      MaxString(255),
	})
	s.Title = "User detail"
	return s
}

func merchantDetails() *Schema {
	props := make(map[string]*Schema, 15)
	for i := 1; i <= 15; i++ {
		props["customField"+strconv.Itoa(i)] = MaxString(255)
	}
	return Object(true, props)
}

func urlDetails() *Schema {
	return Object(true, map[string]*Schema{
		"successUrl":      MaxString(1000),
		"failureUrl":      MaxString(1000),
		"pendingUrl":      MaxString(1000),
		"notificationUrl": MaxString(1000),
	})
}

// DefaultSchemas returns the schemas enforced out of the box, keyed by
// operation name. Each call returns fresh values.
func DefaultSchemas() map[string]*Schema {
	return map[string]*Schema{
		"getUserDetails": Object(true, map[string]*Schema{
			"merchantId":      merchantID(),
			"merchantSiteId":  merchantSiteID(),
			"userTokenId":     MaxString(255),
			"clientRequestId": clientRequestID(),
			"timeStamp":       timeStamp(),
			"checksum":        checksumField(),
		}, "merchantId", "merchantSiteId", "userTokenId", "clientRequestId", "timeStamp", "checksum"),

		"createUser": Object(true, map[string]*Schema{
			"merchantId":      merchantID(),
			"merchantSiteId":  merchantSiteID(),
			"userTokenId":     userTokenID(),
			"clientRequestId": clientRequestID(),
			"timeStamp":       timeStamp(),
			"checksum":        checksumField(),
			"firstName":       MaxString(30),
			"lastName":        MaxString(40),
			"address":         MaxString(40),
			"state":           MaxString(2),
			"city":            MaxString(30),
			"zip":             MaxString(10),
			"countryCode":     countryCode(),
			"phone":           MaxString(18),
			"locale":          userLocale(),
			"email":           MaxString(100),
			"dateOfBirth":     {Type: KindString, Format: "date"},
			"county":          MaxString(255),
		}, "merchantId", "merchantSiteId", "userTokenId", "countryCode", "clientRequestId", "timeStamp", "checksum"),
	}
}

// DraftSchemas returns schemas for payment operations that are not enforced
// by default. Callers opt in with Registry.Register.
func DraftSchemas() map[string]*Schema {
	return map[string]*Schema{
		"getSessionToken": Object(true, map[string]*Schema{
			"merchantId":      merchantID(),
			"merchantSiteId":  merchantSiteID(),
			"clientRequestId": clientRequestID(),
			"timeStamp":       timeStamp(),
			"checksum":        checksumField(),
		}, "merchantId", "merchantSiteId", "clientRequestId", "timeStamp", "checksum"),

		"openOrder": Object(true, map[string]*Schema{
			"merchantId":        merchantID(),
			"merchantSiteId":    merchantSiteID(),
			"userTokenId":       MaxString(255),
			"clientRequestId":   clientRequestID(),
			"sessionToken":      sessionToken(),
			"clientUniqueId":    MaxString(45),
			"currency":          currency(),
			"amount":            amount(),
			"dynamicDescriptor": dynamicDescriptor(),
			"amountDetails":     anyObject(),
			"items":             anyArray(),
			"deviceDetails":     deviceDetails(),
			"userDetails":       paymentUserDetails(),
			"shippingAddress":   anyObject(),
			"billingAddress":    anyObject(),
			"merchantDetails":   merchantDetails(),
			"addendums":         anyObject(),
			"timeStamp":         timeStamp(),
			"checksum":          checksumField(),
		}, "merchantId", "merchantSiteId", "clientRequestId", "timeStamp", "checksum"),

		"initPayment": Object(true, map[string]*Schema{
			"sessionToken":    sessionToken(),
			"merchantId":      {Type: KindString},
			"merchantSiteId":  {Type: KindString},
			"orderId":         {Type: KindString},
			"clientRequestId": {Type: KindString},
			"clientUniqueId":  {Type: KindString},
			"isRebilling":     {Type: KindString},
			"currency":        currency(),
			"amount":          amount(),
			"paymentOption":   anyObject(),
			"deviceDetails":   deviceDetails(),
			"urlDetails":      urlDetails(),
			"customData":      MaxString(255),
			"webMasterId":     MaxString(255),
			"timeStamp":       timeStamp(),
			"checksum":        checksumField(),
		}),

		"paymentAPM": Object(true, map[string]*Schema{
			"merchantId":         merchantID(),
			"merchantSiteId":     merchantSiteID(),
			"userTokenId":        MaxString(255),
			"clientRequestId":    clientRequestID(),
			"paymentMethod":      MaxString(50),
			"currency":           currency(),
			"amount":             amount(),
			"sessionToken":       sessionToken(),
			"clientUniqueId":     MaxString(45),
			"userPaymentOption":  anyObject(),
			"dynamicDescriptor":  dynamicDescriptor(),
			"userAccountDetails": anyObject(),
			"subMethodDetails":   anyObject(),
			"amountDetails":      anyObject(),
			"items":              anyArray(),
			"deviceDetails":      deviceDetails(),
			"userDetails":        paymentUserDetails(),
			"shippingAddress":    anyObject(),
			"billingAddress":     anyObject(),
			"merchantDetails":    merchantDetails(),
			"addendums":          anyObject(),
			"urlDetails":         urlDetails(),
			"customData":         MaxString(255),
			"webMasterId":        MaxString(255),
			"timeStamp":          timeStamp(),
			"checksum":           checksumField(),
		}, "sessionToken", "merchantId", "merchantSiteId", "clientRequestId", "currency", "amount", "timeStamp", "checksum"),
	}
}
