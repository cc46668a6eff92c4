package entity

import (
	"fmt"
	"strings"
)

// Country identifies the localization axis of an article attribute.
// The set of valid values is fixed at build time.
type Country string

const (
	CountryGermany     Country = "DE"
	CountryAustria     Country = "AT"
	CountrySwitzerland Country = "CH"
	CountryFrance      Country = "FR"
	CountryItaly       Country = "IT"
	CountrySpain       Country = "ES"
	CountryNetherlands Country = "NL"
	CountryBelgium     Country = "BE"
	CountryPoland      Country = "PL"
	CountryDenmark     Country = "DK"
)

var countries = []Country{
	CountryGermany,
	CountryAustria,
	CountrySwitzerland,
	CountryFrance,
	CountryItaly,
	CountrySpain,
	CountryNetherlands,
	CountryBelgium,
	CountryPoland,
	CountryDenmark,
}

// Countries returns every valid country in declaration order.
// The returned slice is a copy and may be modified by the caller.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// Valid reports whether c is a member of the enumeration.
func (c Country) Valid() bool {
	for _, known := range countries {
		if c == known {
			return true
		}
	}
	return false
}

func (c Country) String() string { return string(c) }

// ParseCountry converts an ISO code (case-insensitive) into a Country.
func ParseCountry(s string) (Country, error) {
	c := Country(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", unsupportedCountry(s)
	}
	return c, nil
}

func unsupportedCountry(code string) *ValidationError {
	known := make([]string, len(countries))
	for i, c := range countries {
		known[i] = string(c)
	}
	return &ValidationError{
		Field:   "country",
		Message: fmt.Sprintf("%q is not supported; use one of %s", code, strings.Join(known, ", ")),
	}
}

// MarshalText encodes the country as its ISO code.
func (c Country) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

// UnmarshalText decodes an ISO code and rejects unknown countries.
func (c *Country) UnmarshalText(text []byte) error {
	parsed, err := ParseCountry(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
