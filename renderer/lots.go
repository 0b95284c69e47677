package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/harvest"
)

// Lots renders the open lots of every ticker, oldest first.
func Lots(h harvest.Holdings) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Open Lots\n\n")

	tickers := h.Tickers()
	if len(tickers) == 0 {
		fmt.Fprint(&b, "No open lots.\n")
		return b.String()
	}

	t := newTable(&b, "llrrr", "Ticker", "Acquired", "Quantity", "Unit Cost", "Cost")
	for _, ticker := range tickers {
		lots := h[ticker]
		for _, lot := range lots {
			t.Row(ticker, lot.Date.String(), lot.Quantity.String(), lot.UnitCost.String(), lot.TotalCost.String())
		}
		if len(lots) > 1 {
			t.Row(bold(ticker), "", bold(lots.Quantity().String()), "", bold(lots.Cost().String()))
		}
	}
	return b.String()
}
