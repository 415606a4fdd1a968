// Package endpoint maps a gateway environment name to its HTTPS origin and
// builds operation URLs.
package endpoint

import (
	"strings"
)

const (
	// DefaultEnvironment is used when no environment is configured.
	DefaultEnvironment = "prod"
	// FallbackOrigin serves any environment name not listed in origins.
	FallbackOrigin = "https://srv-bsf-devpppjs.gw-4u.com"
	// APIPath precedes every operation name.
	APIPath = "/ppp/api/v1/"
	// Suffix follows every operation name.
	Suffix = ".do"
)

var origins = map[string]string{
	"prod": "https://secure.safecharge.com",
	"int":  "https://ppp-test.nuvei.com",
	"test": "https://ppp-test.nuvei.com",
	"qa":   "https://apmtest.gate2shop.com",
}

// Origin returns the origin for env, falling back to FallbackOrigin.
func Origin(env string) string {
	if origin, ok := origins[strings.TrimSpace(env)]; ok {
		return origin
	}
	return FallbackOrigin
}

// Known reports whether env has a dedicated origin.
func Known(env string) bool {
	_, ok := origins[strings.TrimSpace(env)]
	return ok
}

// URL returns the full operation URL for env.
func URL(env, operation string) string {
	return Join(Origin(env), operation)
}

// Join builds an operation URL on top of an explicit origin, which lets
// callers point the client at a proxy or a local fake gateway.
func Join(origin, operation string) string {
	return strings.TrimRight(origin, "/") + APIPath + operation + Suffix
}
