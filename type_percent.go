package harvest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed in percent (-20 means -20%), kept as an
// exact decimal.
type Percent struct {
	value decimal.Decimal
}

// P creates a Percent from a numeric value.
func P[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Percent {
	return Percent{value: newDecimal(value)}
}

func (p Percent) Decimal() decimal.Decimal { return p.value }
func (p Percent) Equal(q Percent) bool     { return p.value.Equal(q.value) }
func (p Percent) IsZero() bool             { return p.value.IsZero() }

func (p Percent) String() string {
	return fmt.Sprintf("%s%%", p.value.StringFixed(2))
}

func (p Percent) SignedString() string {
	rounded := p.value.Round(2)
	if rounded.IsZero() {
		return "-"
	}
	if rounded.IsPositive() {
		return "+" + p.String()
	}
	return p.String()
}

func (p Percent) MarshalJSON() ([]byte, error) { return p.value.MarshalJSON() }
func (p Percent) MarshalCSV() (string, error)  { return p.value.StringFixed(2), nil }
