package harvest

import (
	"slices"
	"sort"
	"strings"

	"github.com/etnz/harvest/date"
)

// HarvestOpportunity is a position at a loss that could be sold to realize it.
type HarvestOpportunity struct {
	Position
	// WashSaleWarning is true when the ticker was bought within the wash-sale
	// window: selling now may get the loss disallowed.
	WashSaleWarning bool
	RecentBuyDate   date.Date // zero when there is no recent buy
}

// HasRecentBuy reports whether a recent buy date is attached.
func (h HarvestOpportunity) HasRecentBuy() bool { return !h.RecentBuyDate.IsZero() }

func (h HarvestOpportunity) MarshalJSON() ([]byte, error) {
	var w jsonObject
	w.Flatten(h.Position)
	w.Append("washSaleWarning", h.WashSaleWarning)
	if h.HasRecentBuy() {
		w.Append("recentBuyDate", h.RecentBuyDate)
	}
	return w.MarshalJSON()
}

// BalancingOpportunity is a position at a gain that could be sold to offset
// realized or harvested losses.
type BalancingOpportunity struct {
	Position
}

// sortedPositions returns positions ordered by ticker, so that ties in
// later sorts are resolved deterministically.
func sortedPositions(positions map[string]Position) []Position {
	return Valuation{Positions: positions}.Sorted()
}

// FindHarvestingOpportunities returns every position with a strictly negative
// unrealized P/L, largest loss first.
//
// Each one is checked for wash-sale risk: a buy of the same ticker dated in
// [target - window, target]. The earliest such buy is attached. A zero
// target means today.
func FindHarvestingOpportunities(positions map[string]Position, txs []Transaction, target date.Date, opts ...Option) []HarvestOpportunity {
	o := newOptions(opts)
	if target.IsZero() {
		target = date.Today()
	}
	window := date.Window(target, o.washSaleDays)

	opportunities := make([]HarvestOpportunity, 0)
	for _, pos := range sortedPositions(positions) {
		if !pos.UnrealizedPL.IsNegative() {
			continue
		}
		opportunity := HarvestOpportunity{Position: pos}
		if buy, ok := recentBuy(txs, pos.Ticker, window); ok {
			opportunity.WashSaleWarning = true
			opportunity.RecentBuyDate = buy.Date
		}
		opportunities = append(opportunities, opportunity)
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].UnrealizedPL.LessThan(opportunities[j].UnrealizedPL)
	})
	return opportunities
}

// recentBuy finds the first buy of ticker within window.
func recentBuy(txs []Transaction, ticker string, window date.Range) (Transaction, bool) {
	i := slices.IndexFunc(txs, func(tx Transaction) bool {
		return tx.Kind == Buy && tx.Ticker == ticker && window.Contains(tx.Date)
	})
	if i < 0 {
		return Transaction{}, false
	}
	return txs[i], true
}

// FindBalancingOpportunities returns every position with a strictly positive
// unrealized P/L, largest gain first.
func FindBalancingOpportunities(positions map[string]Position) []BalancingOpportunity {
	opportunities := make([]BalancingOpportunity, 0)
	for _, pos := range sortedPositions(positions) {
		if pos.UnrealizedPL.IsPositive() {
			opportunities = append(opportunities, BalancingOpportunity{Position: pos})
		}
	}
	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].UnrealizedPL.GreaterThan(opportunities[j].UnrealizedPL)
	})
	return opportunities
}

// HarvestTickers returns the tickers of the opportunities, in order.
func HarvestTickers(opportunities []HarvestOpportunity) []string {
	tickers := make([]string, len(opportunities))
	for i, o := range opportunities {
		tickers[i] = o.Ticker
	}
	return tickers
}

// BalancingTickers returns the tickers of the opportunities, in order.
func BalancingTickers(opportunities []BalancingOpportunity) []string {
	tickers := make([]string, len(opportunities))
	for i, o := range opportunities {
		tickers[i] = o.Ticker
	}
	return tickers
}

// Selection is the set of harvesting and balancing tickers a user intends to sell.
type Selection struct {
	harvest   map[string]struct{}
	balancing map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{harvest: make(map[string]struct{}), balancing: make(map[string]struct{})}
}

func toggle(set map[string]struct{}, ticker string) {
	if _, ok := set[ticker]; ok {
		delete(set, ticker)
		return
	}
	set[ticker] = struct{}{}
}

func keys(set map[string]struct{}) []string {
	k := make([]string, 0, len(set))
	for t := range set {
		k = append(k, t)
	}
	slices.Sort(k)
	return k
}

// ToggleHarvest adds ticker to the harvesting selection, or removes it if present.
func (s *Selection) ToggleHarvest(ticker string) { toggle(s.harvest, ticker) }

// ToggleBalancing adds ticker to the balancing selection, or removes it if present.
func (s *Selection) ToggleBalancing(ticker string) { toggle(s.balancing, ticker) }

// SetHarvest replaces the harvesting selection.
func (s *Selection) SetHarvest(tickers ...string) {
	clear(s.harvest)
	for _, t := range tickers {
		s.harvest[t] = struct{}{}
	}
}

// SetBalancing replaces the balancing selection.
func (s *Selection) SetBalancing(tickers ...string) {
	clear(s.balancing)
	for _, t := range tickers {
		s.balancing[t] = struct{}{}
	}
}

// IsHarvest reports whether ticker is selected for harvesting.
func (s *Selection) IsHarvest(ticker string) bool { _, ok := s.harvest[ticker]; return ok }

// IsBalancing reports whether ticker is selected for balancing.
func (s *Selection) IsBalancing(ticker string) bool { _, ok := s.balancing[ticker]; return ok }

// Harvest returns the sorted harvesting selection.
func (s *Selection) Harvest() []string { return keys(s.harvest) }

// Balancing returns the sorted balancing selection.
func (s *Selection) Balancing() []string { return keys(s.balancing) }

// Clear empties both selections.
func (s *Selection) Clear() {
	clear(s.harvest)
	clear(s.balancing)
}

func (s *Selection) String() string {
	return "harvest=" + strings.Join(s.Harvest(), ",") + " balance=" + strings.Join(s.Balancing(), ",")
}

// NetGainIfHarvested returns the realized total after selling the selected
// positions: selected harvesting positions only count if at a loss, selected
// balancing positions only if at a gain. Unknown tickers are ignored.
func NetGainIfHarvested(totalRealized Money, positions map[string]Position, sel *Selection) Money {
	net := totalRealized
	if sel == nil {
		return net.canonical()
	}
	for _, ticker := range sel.Harvest() {
		if pos, ok := positions[ticker]; ok && pos.UnrealizedPL.IsNegative() {
			net = net.Add(pos.UnrealizedPL)
		}
	}
	for _, ticker := range sel.Balancing() {
		if pos, ok := positions[ticker]; ok && pos.UnrealizedPL.IsPositive() {
			net = net.Add(pos.UnrealizedPL)
		}
	}
	return net.canonical()
}
