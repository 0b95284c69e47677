package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/harvest"
)

// Gains renders the realized gains and losses, in the order of the sales,
// followed by their total.
func Gains(realized []harvest.RealizedGainLoss) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Realized Gains\n\n")

	if len(realized) == 0 {
		fmt.Fprint(&b, "No sales.\n")
		return b.String()
	}

	var total, proceeds, cost harvest.Money
	t := newTable(&b, "llrrrrl", "Date", "Ticker", "Quantity", "Proceeds", "Cost Basis", "Gain/Loss", "Term")
	for _, r := range realized {
		t.Row(r.Date.String(), r.Ticker, r.QuantitySold.String(), r.Proceeds.String(), r.CostBasis.String(), r.GainLoss.SignedString(), string(r.Term))
		total = total.Add(r.GainLoss)
		proceeds = proceeds.Add(r.Proceeds)
		cost = cost.Add(r.CostBasis)
	}
	t.Row(bold("Total"), "", "", bold(proceeds.String()), bold(cost.String()), bold(total.SignedString()), "")
	fmt.Fprintln(&b)

	section(&b, "Unmatched Sales", func(w io.Writer) bool {
		found := false
		for _, r := range realized {
			if r.Unmatched.IsZero() {
				continue
			}
			if !found {
				fmt.Fprintln(w, "These sales exceed the tracked holdings, the excess has a zero cost basis.")
				fmt.Fprintln(w)
			}
			found = true
			fmt.Fprintf(w, "* %s: %s of %s sold without a matching buy\n", r.Date, r.Unmatched, r.Ticker)
		}
		return found
	})

	return b.String()
}
