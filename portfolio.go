package harvest

import (
	"slices"

	"github.com/etnz/harvest/date"
)

// Portfolio holds a transaction history, the prices known so far and the
// user's selection of opportunities.
//
// The ledger is computed once, when the portfolio is created. Everything
// else is recomputed on each Analyze call. A Portfolio is not safe for
// concurrent use.
type Portfolio struct {
	opts         []Option
	transactions []Transaction
	basis        *CostBasis
	prices       Prices
	selection    *Selection
}

// Report is the complete analysis of a portfolio at a target date.
type Report struct {
	Date      date.Date
	Positions []Position // sorted by ticker
	Summary   PortfolioSummary
	Harvest   []HarvestOpportunity
	Balancing []BalancingOpportunity
	Realized  []RealizedGainLoss
	Oversells []OversellWarning
	Unpriced  []string
	Selection *Selection
}

// NewPortfolio sorts a copy of txs chronologically and computes its lots.
//
// Prices are initially estimated from the last non zero transaction price of
// each ticker.
func NewPortfolio(txs []Transaction, opts ...Option) *Portfolio {
	sorted := slices.Clone(txs)
	SortTransactions(sorted)
	p := &Portfolio{
		opts:         opts,
		transactions: sorted,
		basis:        ComputeFIFO(sorted, opts...),
		selection:    NewSelection(),
	}
	p.prices = EstimatePrices(sorted)
	return p
}

// EstimatePrices returns, for each ticker, the price of its last transaction
// with a positive price.
func EstimatePrices(txs []Transaction) Prices {
	prices := make(Prices)
	for _, tx := range txs {
		if tx.Price.IsPositive() {
			prices[tx.Ticker] = tx.Price
		}
	}
	return prices
}

// Transactions returns the sorted transactions.
func (p *Portfolio) Transactions() []Transaction { return p.transactions }

// Holdings returns the open lots.
func (p *Portfolio) Holdings() Holdings { return p.basis.Holdings }

// Realized returns the realized gains and losses, in chronological order.
func (p *Portfolio) Realized() []RealizedGainLoss { return p.basis.Realized }

// Oversells returns the oversell warnings found while computing lots.
func (p *Portfolio) Oversells() []OversellWarning { return p.basis.Oversells }

// Prices returns a copy of the current prices.
func (p *Portfolio) Prices() Prices { return p.prices.Merge(nil) }

// Tickers returns the sorted tickers with open lots: the ones that need a price.
func (p *Portfolio) Tickers() []string { return p.basis.Holdings.Tickers() }

// UpdatePrices merges prices into the current ones; new prices win.
func (p *Portfolio) UpdatePrices(prices Prices) { p.prices = p.prices.Merge(prices) }

// Selection returns the current selection. It can be modified directly.
func (p *Portfolio) Selection() *Selection { return p.selection }

// ToggleHarvest selects or unselects a harvesting ticker.
func (p *Portfolio) ToggleHarvest(ticker string) { p.selection.ToggleHarvest(ticker) }

// ToggleBalancing selects or unselects a balancing ticker.
func (p *Portfolio) ToggleBalancing(ticker string) { p.selection.ToggleBalancing(ticker) }

// SelectAllHarvest selects every current harvesting opportunity, or clears
// the harvesting selection.
func (p *Portfolio) SelectAllHarvest(all bool) {
	if !all {
		p.selection.SetHarvest()
		return
	}
	v := Valuate(p.basis.Holdings, p.prices)
	p.selection.SetHarvest(HarvestTickers(FindHarvestingOpportunities(v.Positions, nil, date.Today()))...)
}

// SelectAllBalancing selects every current balancing opportunity, or clears
// the balancing selection.
func (p *Portfolio) SelectAllBalancing(all bool) {
	if !all {
		p.selection.SetBalancing()
		return
	}
	v := Valuate(p.basis.Holdings, p.prices)
	p.selection.SetBalancing(BalancingTickers(FindBalancingOpportunities(v.Positions))...)
}

// Reset empties the portfolio: transactions, lots, prices and selection.
func (p *Portfolio) Reset() {
	p.transactions = nil
	p.basis = ComputeFIFO(nil, p.opts...)
	p.prices = make(Prices)
	p.selection.Clear()
}

// Analyze values the portfolio at the current prices and looks for
// opportunities at the target date (today if zero).
func (p *Portfolio) Analyze(target date.Date) Report {
	if target.IsZero() {
		target = date.Today()
	}
	v := Valuate(p.basis.Holdings, p.prices)
	return Report{
		Date:      target,
		Positions: v.Sorted(),
		Summary:   NewSummary(p.basis.Realized, v, p.selection),
		Harvest:   FindHarvestingOpportunities(v.Positions, p.transactions, target, p.opts...),
		Balancing: FindBalancingOpportunities(v.Positions),
		Realized:  p.basis.Realized,
		Oversells: p.basis.Oversells,
		Unpriced:  v.Unpriced,
		Selection: p.selection,
	}
}
