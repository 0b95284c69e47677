package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/harvest"
)

// WashSale is the warning shown next to a loss with a recent buy.
const WashSale = "wash sale risk"

// Summary renders the portfolio summary table.
func Summary(s harvest.PortfolioSummary) string {
	var b strings.Builder
	writeSummary(&b, s)
	return b.String()
}

func writeSummary(w io.Writer, s harvest.PortfolioSummary) {
	t := newTable(w, "lr", "Summary", "Amount")
	t.Row("Realized Gain", s.TotalRealizedGain.SignedString())
	t.Row("Unrealized Gain", s.TotalUnrealizedGain.SignedString())
	t.Row("Unrealized Loss", s.TotalUnrealizedLoss.SignedString())
	t.Row("Net Unrealized P/L", s.NetUnrealizedPL.SignedString())
	t.Row("Max Harvestable Loss", s.MaxHarvestableLoss.SignedString())
	t.Row(bold("Net Gain If Harvested"), bold(s.NetGainIfHarvested.SignedString()))
}

func washSale(h harvest.HarvestOpportunity) string {
	if !h.WashSaleWarning {
		return ""
	}
	if h.HasRecentBuy() {
		return fmt.Sprintf("%s (bought %s)", WashSale, h.RecentBuyDate)
	}
	return WashSale
}

// Report renders a complete harvesting analysis: the summary then the
// harvesting and balancing opportunities, with their selection marks.
func Report(r harvest.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tax-Loss Harvesting on %s\n\n", r.Date)

	writeSummary(&b, r.Summary)
	fmt.Fprintln(&b)

	sel := r.Selection
	if sel == nil {
		sel = harvest.NewSelection()
	}

	section(&b, "Harvesting Opportunities", func(w io.Writer) bool {
		if len(r.Harvest) == 0 {
			fmt.Fprintln(w, "No position at a loss.")
			return true
		}
		t := newTable(w, "llrrrrrl", "Sell", "Ticker", "Quantity", "Cost Basis", "Market Value", "Unrealized Loss", "%", "Warning")
		for _, h := range r.Harvest {
			t.Row(check(sel.IsHarvest(h.Ticker)), h.Ticker, h.Quantity.String(), h.CostBasis.String(), h.MarketValue.String(), h.UnrealizedPL.SignedString(), h.UnrealizedPLPercent.SignedString(), washSale(h))
		}
		return true
	})

	section(&b, "Balancing Opportunities", func(w io.Writer) bool {
		if len(r.Balancing) == 0 {
			fmt.Fprintln(w, "No position at a gain.")
			return true
		}
		t := newTable(w, "llrrrrr", "Sell", "Ticker", "Quantity", "Cost Basis", "Market Value", "Unrealized Gain", "%")
		for _, o := range r.Balancing {
			t.Row(check(sel.IsBalancing(o.Ticker)), o.Ticker, o.Quantity.String(), o.CostBasis.String(), o.MarketValue.String(), o.UnrealizedPL.SignedString(), o.UnrealizedPLPercent.SignedString())
		}
		return true
	})

	writeOversells(&b, r.Oversells)
	writeUnpriced(&b, r.Unpriced)
	return b.String()
}

func writeOversells(w io.Writer, oversells []harvest.OversellWarning) {
	section(w, "Oversells", func(w io.Writer) bool {
		if len(oversells) == 0 {
			return false
		}
		fmt.Fprintln(w, "Some sales exceed the holdings: the import may be missing earlier buys.")
		fmt.Fprintln(w)
		for _, o := range oversells {
			fmt.Fprintf(w, "* %s\n", o)
		}
		return true
	})
}
