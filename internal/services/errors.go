// internal/services/errors.go
package services

import "errors"

// Issuance and allocation errors. Handlers map these to API error codes;
// anything else coming out of a service is a persistence failure.
var (
	ErrSoftwareNotFound       = errors.New("software not found")
	ErrSoftwareInactive       = errors.New("software is not active")
	ErrBuyerLimitExceeded     = errors.New("buyer email has reached the license limit for this software")
	ErrQuotaExceeded          = errors.New("reseller allocation quota exhausted")
	ErrInvalidQuota           = errors.New("quota cannot be set below the consumed count")
	ErrKeyGenerationExhausted = errors.New("could not generate a unique license key")
	ErrUserNotFound           = errors.New("user not found")
	ErrLicenseNotFound        = errors.New("license not found")
)
