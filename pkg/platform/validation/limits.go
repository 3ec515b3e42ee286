package validation

import (
	"fmt"

	dErrors "carebridge/pkg/domain-errors"
)

// MaxBodySize is the maximum allowed request body size (64 KB).
const MaxBodySize = 64 * 1024

// Slice element count limits
const (
	// MaxDataCategories is the maximum number of data categories per grant.
	MaxDataCategories = 32

	// MaxHITypes is the maximum number of health-information types per category.
	MaxHITypes = 32

	// MaxMetadataEntries is the maximum number of metadata keys on a consent request.
	MaxMetadataEntries = 16
)

// String element length limits
const (
	MaxIdentifierLength  = 128
	MaxPurposeLength     = 256
	MaxCategoryLength    = 64
	MaxDescriptionLength = 512
	MaxMetadataKeyLength = 64
	MaxMetadataValLength = 512
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, limit int) error {
	if count > limit {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, limit))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, limit int) error {
	if len(value) > limit {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, limit))
	}
	return nil
}

// CheckEachStringLength validates every element of values against limit.
func CheckEachStringLength(fieldName string, values []string, limit int) error {
	for _, v := range values {
		if err := CheckStringLength(fieldName, v, limit); err != nil {
			return err
		}
	}
	return nil
}

// CheckMetadata bounds the number and size of free-form metadata entries.
func CheckMetadata(md map[string]string) error {
	if err := CheckSliceCount("metadata entries", len(md), MaxMetadataEntries); err != nil {
		return err
	}
	for k, v := range md {
		if k == "" {
			return dErrors.New(dErrors.CodeValidation, "metadata keys must not be empty")
		}
		if err := CheckStringLength("metadata key", k, MaxMetadataKeyLength); err != nil {
			return err
		}
		if err := CheckStringLength("metadata value", v, MaxMetadataValLength); err != nil {
			return err
		}
	}
	return nil
}
