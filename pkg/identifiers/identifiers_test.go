package identifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeISBN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "9780306406157", NormalizeISBN("978-0-306-40615-7"))
	assert.Equal(t, "9780306406157", NormalizeISBN("ISBN: 978 0306 40615 7"))
	assert.Equal(t, "030640615X", NormalizeISBN("0-306-40615-x"))
	assert.Equal(t, "", NormalizeISBN("no digits here"))
}

func TestValidateISBN10(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidateISBN10("0306406152"))
	assert.True(t, ValidateISBN10("097522980X"))
	assert.False(t, ValidateISBN10("0306406153"))
	assert.False(t, ValidateISBN10("03064061"))
	assert.False(t, ValidateISBN10("030640615A"))
}

func TestValidateISBN13(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidateISBN13("9780306406157"))
	assert.False(t, ValidateISBN13("9780306406158"))
	assert.False(t, ValidateISBN13("97803064061"))
}

func TestDetectType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TypeISBN13, DetectType("978-0-306-40615-7"))
	assert.Equal(t, TypeISBN10, DetectType("0306406152"))
	assert.Equal(t, TypeUnknown, DetectType("B00EXAMPLE"))
}

func TestPickISBN(t *testing.T) {
	t.Parallel()

	// ISBN-13 wins regardless of order.
	isbn := PickISBN([]Identifier{
		{Type: "ISBN_10", Value: "0306406152"},
		{Type: "ISBN_13", Value: "978-0-306-40615-7"},
	})
	assert.Equal(t, "9780306406157", isbn)

	// ISBN-10 is the fallback.
	isbn = PickISBN([]Identifier{
		{Type: "OTHER", Value: "OCLC123"},
		{Type: "ISBN_10", Value: "0306406152"},
	})
	assert.Equal(t, "0306406152", isbn)

	assert.Equal(t, "", PickISBN([]Identifier{{Type: "OTHER", Value: "x"}}))
}
