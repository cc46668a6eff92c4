package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountries_ReturnsCopy(t *testing.T) {
	first := Countries()
	require.NotEmpty(t, first)
	first[0] = Country("XX")

	assert.Equal(t, CountryGermany, Countries()[0])
}

func TestCountries_Unique(t *testing.T) {
	seen := map[Country]bool{}
	for _, c := range Countries() {
		assert.False(t, seen[c], "duplicate country %s", c)
		assert.True(t, c.Valid())
		seen[c] = true
	}
}

func TestParseCountry(t *testing.T) {
	tests := []struct {
		in      string
		want    Country
		wantErr bool
	}{
		{in: "DE", want: CountryGermany},
		{in: "fr", want: CountryFrance},
		{in: " it ", want: CountryItaly},
		{in: "US", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCountry(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountry_JSON(t *testing.T) {
	type payload struct {
		Country Country `json:"country"`
	}

	data, err := json.Marshal(payload{Country: CountryAustria})
	require.NoError(t, err)
	assert.JSONEq(t, `{"country":"AT"}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"country":"ch"}`), &p))
	assert.Equal(t, CountrySwitzerland, p.Country)

	assert.Error(t, json.Unmarshal([]byte(`{"country":"ZZ"}`), &p))
}
