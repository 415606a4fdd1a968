package gateway

import (
	"fmt"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/nuvei-client/internal/checksum"
	"github.com/noah-isme/nuvei-client/internal/endpoint"
	"github.com/noah-isme/nuvei-client/internal/schema"
)

var credentialsValidator = validator.New()

// Credentials identify the merchant to the gateway.
type Credentials struct {
	MerchantID     string `validate:"required,number,max=20"`
	MerchantSiteID string `validate:"required,number,max=20"`
	SecretKey      string `validate:"required"`
	Environment    string `validate:"omitempty,max=32"`
}

// Settings is the mutable client configuration. Setters may run concurrently
// with in-flight calls; every call works on its own Snapshot.
type Settings struct {
	mu         sync.RWMutex
	creds      Credentials
	algorithm  checksum.Algorithm
	validation bool
	locale     string
}

// NewSettings validates creds and applies the defaults: sha256, request
// validation on, English messages, and the production environment when none
// is set.
func NewSettings(creds Credentials) (*Settings, error) {
	creds.MerchantID = strings.TrimSpace(creds.MerchantID)
	creds.MerchantSiteID = strings.TrimSpace(creds.MerchantSiteID)
	creds.Environment = strings.TrimSpace(creds.Environment)
	if err := credentialsValidator.Struct(creds); err != nil {
		return nil, fmt.Errorf("gateway: invalid credentials: %w", err)
	}
	if creds.Environment == "" {
		creds.Environment = endpoint.DefaultEnvironment
	}
	return &Settings{
		creds:      creds,
		algorithm:  checksum.SHA256,
		validation: true,
		locale:     schema.DefaultLocale,
	}, nil
}

// SetAlgorithm selects md5 or sha256, case-insensitively. Any other value is
// rejected and the current algorithm is kept.
func (s *Settings) SetAlgorithm(name string) (checksum.Algorithm, error) {
	alg, err := checksum.ParseAlgorithm(name)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.algorithm = alg
	s.mu.Unlock()
	return alg, nil
}

// Algorithm returns the current digest algorithm.
func (s *Settings) Algorithm() checksum.Algorithm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.algorithm
}

// SetErrLocale selects the language of validation messages.
func (s *Settings) SetErrLocale(locale string) (string, error) {
	if !schema.SupportedLocale(locale) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}
	locale = strings.ToLower(strings.TrimSpace(locale))
	s.mu.Lock()
	s.locale = locale
	s.mu.Unlock()
	return locale, nil
}

// ErrLocale returns the current message locale.
func (s *Settings) ErrLocale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locale
}

// SetRequestValidation toggles local schema validation.
func (s *Settings) SetRequestValidation(enabled bool) bool {
	s.mu.Lock()
	s.validation = enabled
	s.mu.Unlock()
	return enabled
}

// RequestValidation reports whether local schema validation is on.
func (s *Settings) RequestValidation() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validation
}

// Snapshot copies the current configuration.
func (s *Settings) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		MerchantID:     s.creds.MerchantID,
		MerchantSiteID: s.creds.MerchantSiteID,
		SecretKey:      s.creds.SecretKey,
		Environment:    s.creds.Environment,
		Algorithm:      s.algorithm,
		Validation:     s.validation,
		ErrLocale:      s.locale,
	}
}

// Snapshot is an immutable view of Settings taken at the start of a call.
type Snapshot struct {
	MerchantID     string
	MerchantSiteID string
	SecretKey      string
	Environment    string
	Algorithm      checksum.Algorithm
	Validation     bool
	ErrLocale      string
}

// Lookup implements checksum.Source for the merchant fields.
func (s Snapshot) Lookup(field string) (any, bool) {
	switch field {
	case "merchantId":
		return s.MerchantID, true
	case "merchantSiteId":
		return s.MerchantSiteID, true
	case "secretKey":
		return s.SecretKey, true
	default:
		return nil, false
	}
}
