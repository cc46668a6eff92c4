package entity

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// MaxArticleNumber is the largest business key storage can hold (a 32-bit column).
const MaxArticleNumber = math.MaxInt32

// Field length limits. Inputs above these sizes are rejected before they reach storage.
const (
	maxBrandLength       = 255
	maxTitleLength       = 255
	maxColorLength       = 64
	maxDescriptionLength = 4000
)

// ValidateArticleNumber checks that the business key is in 1..MaxArticleNumber.
func ValidateArticleNumber(n int) error {
	if n <= 0 || n > MaxArticleNumber {
		return &ValidationError{
			Field:   "articleNumber",
			Message: fmt.Sprintf("must be between 1 and %d", MaxArticleNumber),
		}
	}
	return nil
}

// ValidateBrand checks that the brand is present and not too long.
func ValidateBrand(brand string) error {
	return requiredText("brand", brand, maxBrandLength)
}

// ValidateAttributeFields checks title, description and color.
func ValidateAttributeFields(f AttributeFields) error {
	if err := requiredText("title", f.Title, maxTitleLength); err != nil {
		return err
	}
	if err := requiredText("description", f.Description, maxDescriptionLength); err != nil {
		return err
	}
	return requiredText("color", f.Color, maxColorLength)
}

// ValidateCountry rejects values outside the Country enumeration.
func ValidateCountry(c Country) error {
	if !c.Valid() {
		return unsupportedCountry(string(c))
	}
	return nil
}

func requiredText(field, value string, maxLen int) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	if utf8.RuneCountInString(value) > maxLen {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must not exceed %d characters", maxLen),
		}
	}
	return nil
}
