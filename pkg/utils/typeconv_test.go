package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueToString(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	testCases := []struct {
		name     string
		in       interface{}
		expected string
	}{
		{name: "nil", in: nil, expected: ""},
		{name: "string is trimmed", in: "  QTO101 ", expected: "QTO101"},
		{name: "bytes", in: []byte("L "), expected: "L"},
		{name: "int", in: 42, expected: "42"},
		{name: "int64", in: int64(7), expected: "7"},
		{name: "float", in: 1.5, expected: "1.5"},
		{name: "bool", in: true, expected: "true"},
		{name: "time", in: ts, expected: "2024-03-01T10:00:00Z"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ValueToString(tc.in))
		})
	}
}

func TestNormalizeSQLValue(t *testing.T) {
	assert.Equal(t, "abc", NormalizeSQLValue([]byte("abc")))
	assert.Equal(t, 10, NormalizeSQLValue(10))
	assert.Nil(t, NormalizeSQLValue(nil))
}

func TestConvertToInt(t *testing.T) {
	n, err := ConvertToInt(" 5432 ")
	require.NoError(t, err)
	assert.Equal(t, 5432, n)

	n, err = ConvertToInt([]byte("1433"))
	require.NoError(t, err)
	assert.Equal(t, 1433, n)

	n, err = ConvertToInt(float64(3306))
	require.NoError(t, err)
	assert.Equal(t, 3306, n)

	_, err = ConvertToInt("abc")
	assert.Error(t, err)
}

func TestSlugHelpers(t *testing.T) {
	assert.Equal(t, "quarto-a", Slug("Quarto A"))
	assert.Equal(t, "101a", Compact("101-A"))
	assert.Equal(t, "Qu", Prefix("Quarto", 2))
	assert.Equal(t, "U", Prefix("U", 2))
}
