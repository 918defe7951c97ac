package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanSectionStartsAtKeyword(t *testing.T) {
	lines := []string{
		"encabezado",
		"Proveedor: ACME Corp",
		"RFC: XXX",
		"fin",
	}
	section := ScanSection(lines, []string{"proveedor"}, 10)
	assert.Equal(t, []string{"Proveedor: ACME Corp", "RFC: XXX", "fin"}, section)
}

func TestScanSectionNoKeyword(t *testing.T) {
	lines := []string{"a", "b", "c"}
	assert.Empty(t, ScanSection(lines, []string{"proveedor"}, 10))
}

func TestScanSectionCap(t *testing.T) {
	lines := []string{"proveedor"}
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("linea %d", i))
	}
	section := ScanSection(lines, []string{"proveedor"}, 10)
	assert.Len(t, section, 10)
	assert.Equal(t, "proveedor", section[0])
}

func TestScanSectionUnbounded(t *testing.T) {
	lines := []string{"x", "partida 1"}
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf("linea %d", i))
	}
	section := ScanSection(lines, []string{"partida"}, 0)
	assert.Len(t, section, 31) // keyword line through end of text
}

func TestScanSectionFlagNeverResets(t *testing.T) {
	// An early unrelated keyword hit keeps collecting across intervening
	// noise; this is the documented behavior, not a bug to fix here.
	lines := []string{
		"supplier terms apply",
		"texto sin relacion",
		"Proveedor: ACME",
	}
	section := ScanSection(lines, []string{"proveedor", "supplier"}, 10)
	assert.Len(t, section, 3)
}

func TestScanSectionPreservesCase(t *testing.T) {
	lines := []string{"PROVEEDOR", "ACME SA de CV"}
	section := ScanSection(lines, []string{"proveedor"}, 10)
	assert.Equal(t, []string{"PROVEEDOR", "ACME SA de CV"}, section)
}

func TestExtractInSectionTrailingSegment(t *testing.T) {
	section := []string{"nombre: ACME Corp"}
	assert.Equal(t, "acme corp", extractInSection(section, []string{"nombre"}))
}

func TestExtractInSectionNextLine(t *testing.T) {
	section := []string{"Nombre", "ACME Corp"}
	assert.Equal(t, "acme corp", extractInSection(section, []string{"nombre"}))
}

func TestExtractInSectionNoLookaheadBeyondNextLine(t *testing.T) {
	// The section variant takes the next line as-is, even when empty.
	section := []string{"nombre", "", "ACME Corp"}
	assert.Equal(t, "", extractInSection(section, []string{"nombre"}))
}

func TestExtractInSectionNoMatch(t *testing.T) {
	assert.Equal(t, "", extractInSection([]string{"sin datos"}, []string{"nombre"}))
	assert.Equal(t, "", extractInSection(nil, []string{"nombre"}))
}
