package validation

import (
	"fmt"

	dErrors "tausepro/pkg/domain-errors"
)

// String length limits for console payloads.
const (
	MaxEmailLength    = 255
	MaxPasswordLength = 128
	MaxNameLength     = 200
	MaxReasonLength   = 500
	MaxCommandLength  = 256
	MaxMessageLength  = 4000
)

// Slice element count limits.
const (
	MaxAgentTools     = 50
	MaxTenantFeatures = 100
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
