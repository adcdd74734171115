package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "R$ 0,00"},
		{80, "R$ 80,00"},
		{1234.5, "R$ 1.234,50"},
		{1234567.89, "R$ 1.234.567,89"},
		{-950.3, "R$ -950,30"},
		{-12345, "R$ -12.345,00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCurrency(tt.value), "value %v", tt.value)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/03/2024", formatDate(time.Date(2024, 3, 5, 12, 0, 0, 0, time.Local)))
	assert.Equal(t, "", formatDate(time.Time{}))
}
