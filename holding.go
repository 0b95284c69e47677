package harvest

import (
	"slices"
)

// Prices maps a ticker to its latest known price. It may be partial: a
// missing ticker is valued at zero.
type Prices map[string]Money

// Merge returns a copy of p updated with the entries of q (q wins).
func (p Prices) Merge(q Prices) Prices {
	m := make(Prices, len(p)+len(q))
	for t, v := range p {
		m[t] = v
	}
	for t, v := range q {
		m[t] = v
	}
	return m
}

// Position is the valuation of the open lots of one ticker.
type Position struct {
	Ticker              string
	Quantity            Quantity
	CostBasis           Money
	AvgCost             Money
	CurrentPrice        Money
	MarketValue         Money
	UnrealizedPL        Money
	UnrealizedPLPercent Percent
	// PriceMissing is true when the ticker had no price: the position is
	// valued at zero and its loss is not a market loss.
	PriceMissing bool
}

func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObject
	w.Append("ticker", p.Ticker)
	w.Append("quantity", p.Quantity)
	w.Append("costBasis", p.CostBasis)
	w.Append("avgCost", p.AvgCost)
	w.Append("currentPrice", p.CurrentPrice)
	w.Append("marketValue", p.MarketValue)
	w.Append("unrealizedPL", p.UnrealizedPL)
	w.Append("unrealizedPLPercent", p.UnrealizedPLPercent)
	w.Optional("priceMissing", p.PriceMissing)
	return w.MarshalJSON()
}

// UnrealizedSummary aggregates the unrealized profit and loss of positions.
type UnrealizedSummary struct {
	TotalUnrealizedGain Money // sum of positive P/L, >= 0
	TotalUnrealizedLoss Money // sum of negative P/L, <= 0
	NetUnrealizedPL     Money
	MaxHarvestableLoss  Money // equals TotalUnrealizedLoss
}

// Valuation is the result of valuing holdings at a set of prices.
type Valuation struct {
	Positions map[string]Position
	Summary   UnrealizedSummary
	Unpriced  []string // sorted tickers valued without a price
}

// Sorted returns the positions ordered by ticker.
func (v Valuation) Sorted() []Position {
	tickers := make([]string, 0, len(v.Positions))
	for t := range v.Positions {
		tickers = append(tickers, t)
	}
	slices.Sort(tickers)
	positions := make([]Position, 0, len(tickers))
	for _, t := range tickers {
		positions = append(positions, v.Positions[t])
	}
	return positions
}

// Valuate computes the position of every ticker with open lots, at the
// given prices. It does not modify its inputs and always recomputes
// everything, so identical inputs give identical results.
func Valuate(holdings Holdings, prices Prices) Valuation {
	v := Valuation{Positions: make(map[string]Position)}
	var gain, loss Money

	for _, ticker := range holdings.Tickers() {
		lots := holdings[ticker]
		quantity := lots.Quantity()
		if quantity.IsZero() {
			continue
		}
		costBasis := lots.Cost()

		price, ok := prices[ticker]
		if !ok {
			v.Unpriced = append(v.Unpriced, ticker)
		}
		marketValue := price.Mul(quantity)
		unrealized := marketValue.Sub(costBasis).canonical()

		if unrealized.IsPositive() {
			gain = gain.Add(unrealized)
		} else if unrealized.IsNegative() {
			loss = loss.Add(unrealized)
		}

		v.Positions[ticker] = Position{
			Ticker:              ticker,
			Quantity:            quantity,
			CostBasis:           costBasis,
			AvgCost:             costBasis.Div(quantity),
			CurrentPrice:        price,
			MarketValue:         marketValue,
			UnrealizedPL:        unrealized,
			UnrealizedPLPercent: unrealized.Ratio(costBasis),
			PriceMissing:        !ok,
		}
	}

	v.Summary = UnrealizedSummary{
		TotalUnrealizedGain: gain.canonical(),
		TotalUnrealizedLoss: loss.canonical(),
		NetUnrealizedPL:     gain.Add(loss).canonical(),
		MaxHarvestableLoss:  loss.canonical(),
	}
	return v
}
