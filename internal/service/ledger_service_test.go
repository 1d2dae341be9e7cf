package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracktok/internal/domain"
)

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("42.50")
	require.NoError(t, err)
	assert.Equal(t, "42.50", amount.StringFixed(2))

	_, err = parseAmount("forty two")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseAmountRejectsSubCentPrecision(t *testing.T) {
	_, err := parseAmount("10.999")
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Trailing zeros beyond scale 2 carry no extra precision.
	amount, err := parseAmount("10.990")
	require.NoError(t, err)
	assert.Equal(t, "10.99", amount.StringFixed(2))
}

func TestParseDateAcceptsBothFormats(t *testing.T) {
	day, err := parseDate("2026-08-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), day)

	stamp, err := parseDate("2026-08-15T09:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 9, stamp.Hour())

	_, err = parseDate("15/08/2026")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
