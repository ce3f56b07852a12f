package codegen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHeaderProducesNamespacedIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	err := GenerateHeader(&buf, []byte{1, 2, 3}, Options{Namespace: "Foo", Package: "foodata"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "package foodata")
	assert.Contains(t, out, "var FooBlob = []byte{1, 2, 3}")
	assert.Contains(t, out, "func FooCountryID(lat, lon float64) uint16")
	assert.Contains(t, out, "func FooCountryISO(lat, lon float64) string")
	assert.Contains(t, out, "func FooCountryIDFromISO(code string) uint16")
}

func TestGenerateHeaderDefaultsNamespaceAndPackage(t *testing.T) {
	var buf bytes.Buffer
	err := GenerateHeader(&buf, []byte{}, Options{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "package adm0data")
	assert.Contains(t, out, "func Adm0CountryID(lat, lon float64) uint16")
}

func TestGenerateHeaderIsValidGoSyntax(t *testing.T) {
	var buf bytes.Buffer
	err := GenerateHeader(&buf, []byte{10, 20, 30, 40}, Options{Namespace: "Bar", Package: "bardata"})
	require.NoError(t, err)
	// GenerateHeader itself runs go/format.Source, so a non-error return is
	// already proof the output parses as Go; this just pins down that the
	// blob bytes survived the round trip into the literal.
	assert.Contains(t, buf.String(), "10, 20, 30, 40")
}
