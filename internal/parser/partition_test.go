package parser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionKeyFromPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"year segment", filepath.Join("data", "2021", "facturas", "4435.txt"), "2021"},
		{"no year", filepath.Join("data", "facturas", "4435.txt"), "unknown"},
		{"lower bound", filepath.Join("archive", "2000", "a.txt"), "2000"},
		{"upper bound", filepath.Join("archive", "2100", "a.txt"), "2100"},
		{"below range", filepath.Join("archive", "1999", "a.txt"), "unknown"},
		{"above range", filepath.Join("archive", "2101", "a.txt"), "unknown"},
		{"five digits", filepath.Join("archive", "20211", "a.txt"), "unknown"},
		{"first match wins", filepath.Join("2020", "2021", "a.txt"), "2020"},
		{"empty path", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartitionKeyFromPath(tt.path))
		})
	}
}
