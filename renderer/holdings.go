package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/date"
)

// NoPrice marks the price of a position valued without a known price.
const NoPrice = "(no price)"

func price(p harvest.Position) string {
	if p.PriceMissing {
		return NoPrice
	}
	return p.CurrentPrice.String()
}

func writePositions(w io.Writer, positions []harvest.Position) {
	t := newTable(w, "lrrrrrrr", "Ticker", "Quantity", "Avg Cost", "Cost Basis", "Price", "Market Value", "Unrealized P/L", "%")
	for _, p := range positions {
		t.Row(p.Ticker, p.Quantity.String(), p.AvgCost.String(), p.CostBasis.String(), price(p), p.MarketValue.String(), p.UnrealizedPL.SignedString(), p.UnrealizedPLPercent.SignedString())
	}
}

func writeUnrealized(w io.Writer, s harvest.UnrealizedSummary) {
	t := newTable(w, "lr", "Unrealized", "Amount")
	t.Row("Total Gain", s.TotalUnrealizedGain.SignedString())
	t.Row("Total Loss", s.TotalUnrealizedLoss.SignedString())
	t.Row(bold("Net P/L"), bold(s.NetUnrealizedPL.SignedString()))
}

// Holdings renders the valuation of the open positions, sorted by ticker.
func Holdings(on date.Date, v harvest.Valuation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings on %s\n\n", on)

	positions := v.Sorted()
	if len(positions) == 0 {
		fmt.Fprint(&b, "No open positions.\n")
		return b.String()
	}
	writePositions(&b, positions)
	fmt.Fprintln(&b)
	writeUnrealized(&b, v.Summary)
	fmt.Fprintln(&b)
	writeUnpriced(&b, v.Unpriced)
	return b.String()
}

func writeUnpriced(w io.Writer, unpriced []string) {
	section(w, "Missing Prices", func(w io.Writer) bool {
		if len(unpriced) == 0 {
			return false
		}
		fmt.Fprintf(w, "No price for %s: valued at 0, use -fetch or -price.\n", strings.Join(unpriced, ", "))
		return true
	})
}
