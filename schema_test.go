package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSessionDocument_Valid(t *testing.T) {
	doc := `{
		"customer": {"name": "Tan Ah Kow", "dob": {"day": 15, "month": 6, "year": 1990}},
		"slots": [
			{"name": "方案 A", "product": "Ultimate Link", "riders": ["PrimeCare+"],
			 "rider_sas": {"PrimeCare+": 100000}, "ci_tier": 157, "age1": 70, "age2": 80,
			 "jaundice_amount": 0, "secure_cover_parent": "Mother"},
			{"name": "Draft", "product": ""}
		],
		"advisor": {"name": "Lim", "contact": "012"}
	}`
	assert.NoError(t, ValidateSessionDocument([]byte(doc)))
}

func TestValidateSessionDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing slots", `{"customer": {"dob": {"day": 1, "month": 1, "year": 1990}}}`},
		{"month out of range", `{"customer": {"dob": {"day": 1, "month": 13, "year": 1990}}, "slots": [{}]}`},
		{"no slots", `{"customer": {"dob": {"day": 1, "month": 1, "year": 1990}}, "slots": []}`},
		{"too many slots", `{"customer": {"dob": {"day": 1, "month": 1, "year": 1990}}, "slots": [{}, {}, {}, {}, {}]}`},
		{"unknown product", `{"customer": {"dob": {"day": 1, "month": 1, "year": 1990}}, "slots": [{"product": "Mystery"}]}`},
		{"bad tier", `{"customer": {"dob": {"day": 1, "month": 1, "year": 1990}}, "slots": [{"ci_tier": 50}]}`},
		{"negative sum", `{"customer": {"dob": {"day": 1, "month": 1, "year": 1990}}, "slots": [{"life_sa": -1}]}`},
		{"bad jaundice", `{"customer": {"dob": {"day": 1, "month": 1, "year": 1990}}, "slots": [{"jaundice_amount": 750}]}`},
		{"duplicate riders", `{"customer": {"dob": {"day": 1, "month": 1, "year": 1990}}, "slots": [{"riders": ["Payor Cover", "Payor Cover"]}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSessionDocument([]byte(tc.doc))
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "session", verr.Field)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestValidateSessionDocument_NotJSON(t *testing.T) {
	err := ValidateSessionDocument([]byte("{nope"))
	require.Error(t, err)

	var verr ValidationError
	assert.NotErrorAs(t, err, &verr)
}
