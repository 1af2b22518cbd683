package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultPrecision int32 = 2

// Round rounds half away from zero. It is meant for presentation only; the
// engine itself never rounds.
func Round(amount decimal.Decimal, places int32) decimal.Decimal {
	return amount.Round(places)
}

// Money formats amounts for documents and CLI output.
type Money struct {
	Currency  string
	Precision int32
}

// Format renders amount as "1 234,50 SEK".
func (m Money) Format(amount decimal.Decimal) string {
	places := m.Precision
	if places < 0 {
		places = DefaultPrecision
	}
	raw := Round(amount, places).StringFixed(places)

	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign = "-"
		raw = raw[1:]
	}

	intPart, frac, _ := strings.Cut(raw, ".")
	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	if m.Currency != "" {
		b.WriteByte(' ')
		b.WriteString(m.Currency)
	}
	return b.String()
}
