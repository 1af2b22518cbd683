package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assertDecimal(t, "0.13", Round(d("0.125"), 2))
	assertDecimal(t, "-0.13", Round(d("-0.125"), 2))
	assertDecimal(t, "240", Round(d("240.0000"), 2))
}

func TestMoneyFormat(t *testing.T) {
	sek := Money{Currency: "SEK", Precision: 2}

	tests := map[string]string{
		"1234.5":    "1 234,50 SEK",
		"0":         "0,00 SEK",
		"999":       "999,00 SEK",
		"1000000":   "1 000 000,00 SEK",
		"-4500.005": "-4 500,01 SEK",
	}
	for in, want := range tests {
		assert.Equal(t, want, sek.Format(d(in)), in)
	}

	assert.Equal(t, "1 235", Money{Precision: 0}.Format(d("1234.5")))
}
