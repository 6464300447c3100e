package salary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinMonthly(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
		ok   bool
	}{
		{"kilo annual", "42k€ selon profil", 3500.00, true},
		{"kilo annual range takes min", "de 30k€ à 38k€", 2500.00, true},
		{"kilo with decimal comma", "37,5 k € brut", 3125.00, true},
		{"monthly", "2800 €/mois", 2800.00, true},
		{"monthly spelled out", "1200 € net par mois", 1200.00, true},
		{"annual", "38000 € / an", 3166.67, true},
		{"hourly", "15 €/h", 2275.05, true},
		{"hourly spelled out", "13,50 € par heure", 2047.55, true},
		{"bare annual amount", "38000 €", 3166.67, true},
		{"bare monthly amount", "2400 €", 2400.00, true},
		{"bare small amount ignored", "35 €", 0, false},
		{"no amount", "Selon profil et expérience", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMinMonthly(tt.text)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.01)
			}
		})
	}
}

func TestParseMinMonthlyTakesMinAcrossIdioms(t *testing.T) {
	// A yearly figure and a monthly figure in the same text: the smaller
	// monthly projection wins.
	got, ok := ParseMinMonthly("45k€ annuel soit environ 2900 €/mois")
	require.True(t, ok)
	assert.InDelta(t, 2900.0, got, 0.01)
}

func TestParseMinMonthlyDeterministic(t *testing.T) {
	text := "de 32k€ à 40k€ selon expérience"
	a, okA := ParseMinMonthly(text)
	b, okB := ParseMinMonthly(text)
	require.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}
