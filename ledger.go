package harvest

import (
	"fmt"
	"slices"

	"github.com/etnz/harvest/date"
)

// Term is the holding period classification of a realized gain.
type Term string

const (
	ShortTerm Term = "SHORT"
	LongTerm  Term = "LONG"
)

// Holdings maps a ticker to its queue of open lots.
//
// A ticker whose lots have all been sold stays in the map with an empty
// queue; it must be read as a zero position.
type Holdings map[string]Lots

// Tickers returns the sorted tickers that have at least one open lot.
func (h Holdings) Tickers() []string {
	tickers := make([]string, 0, len(h))
	for ticker, lots := range h {
		if len(lots) > 0 {
			tickers = append(tickers, ticker)
		}
	}
	slices.Sort(tickers)
	return tickers
}

// Clone returns a copy of the holdings that shares no lot queue with h.
func (h Holdings) Clone() Holdings {
	c := make(Holdings, len(h))
	for ticker, lots := range h {
		c[ticker] = slices.Clone(lots)
	}
	return c
}

// RealizedGainLoss is the outcome of one sell transaction.
type RealizedGainLoss struct {
	Date         date.Date
	Ticker       string
	QuantitySold Quantity
	Proceeds     Money
	CostBasis    Money
	GainLoss     Money // Proceeds - CostBasis
	// Term is always ShortTerm: holding periods are not classified yet, even
	// though Consumed carries the acquisition dates needed to do it.
	Term      Term
	Consumed  Lots     // lot portions matched by this sale, oldest first
	Unmatched Quantity // quantity sold beyond the tracked holdings
}

func (r RealizedGainLoss) MarshalJSON() ([]byte, error) {
	var w jsonObject
	w.Append("date", r.Date)
	w.Append("ticker", r.Ticker)
	w.Append("quantitySold", r.QuantitySold)
	w.Append("proceeds", r.Proceeds)
	w.Append("costBasis", r.CostBasis)
	w.Append("gainLoss", r.GainLoss)
	w.Append("term", r.Term)
	if !r.Unmatched.IsZero() {
		w.Append("unmatched", r.Unmatched)
	}
	return w.MarshalJSON()
}

// OversellWarning reports a sell of more shares than the ledger holds.
//
// The unmatched shares are accounted with a zero cost basis. It usually
// means that a buy is missing from the export, or that a split was not
// applied.
type OversellWarning struct {
	Date        date.Date
	Ticker      string
	Attempted   Quantity
	Unsatisfied Quantity
}

func (w OversellWarning) String() string {
	return fmt.Sprintf("%s: sold more %s than held: attempted to sell %s, remaining unsold %s", w.Date, w.Ticker, w.Attempted, w.Unsatisfied)
}

// CostBasis is the result of processing a transaction history.
type CostBasis struct {
	Holdings  Holdings
	Realized  []RealizedGainLoss // in processing order
	Oversells []OversellWarning
	Skipped   []Transaction // transactions that are neither buys nor sells
}

// TotalRealized returns the sum of all realized gains and losses.
func (c *CostBasis) TotalRealized() Money {
	var total Money
	for _, r := range c.Realized {
		total = total.Add(r.GainLoss)
	}
	return total
}

// ComputeFIFO replays transactions, in the given order, and matches every
// sell against the oldest open lots of its ticker.
//
// Transactions are expected in chronological order (see SortTransactions).
// Data quality issues never fail the computation: oversells are recorded
// in CostBasis.Oversells and other kinds in CostBasis.Skipped, both are
// also logged.
func ComputeFIFO(txs []Transaction, opts ...Option) *CostBasis {
	o := newOptions(opts)
	result := &CostBasis{
		Holdings: make(Holdings),
		Realized: make([]RealizedGainLoss, 0),
	}

	for _, tx := range txs {
		lots, ok := result.Holdings[tx.Ticker]
		if !ok {
			lots = Lots{}
		}

		switch tx.Kind {
		case Buy:
			lots = lots.push(Lot{
				Date:      tx.Date,
				Quantity:  tx.Quantity,
				UnitCost:  tx.Price,
				TotalCost: tx.Amount.Abs(), // the settlement amount includes fees
			})
		case Sell:
			remaining, cost, consumed, unsatisfied := lots.fifoSell(tx.Quantity)
			lots = remaining
			if unsatisfied.IsPositive() {
				w := OversellWarning{Date: tx.Date, Ticker: tx.Ticker, Attempted: tx.Quantity, Unsatisfied: unsatisfied}
				result.Oversells = append(result.Oversells, w)
				o.logger.Warn().
					Str("ticker", tx.Ticker).
					Stringer("date", tx.Date).
					Stringer("attempted", tx.Quantity).
					Stringer("unsatisfied", unsatisfied).
					Msg("sold more than held: check the export for missing buys or stock splits")
			}
			result.Realized = append(result.Realized, RealizedGainLoss{
				Date:         tx.Date,
				Ticker:       tx.Ticker,
				QuantitySold: tx.Quantity,
				Proceeds:     tx.Amount,
				CostBasis:    cost,
				GainLoss:     tx.Amount.Sub(cost),
				Term:         ShortTerm,
				Consumed:     consumed,
				Unmatched:    unsatisfied,
			})
		default:
			result.Skipped = append(result.Skipped, tx)
			o.logger.Debug().Str("ticker", tx.Ticker).Stringer("date", tx.Date).Stringer("kind", tx.Kind).Msg("transaction skipped by the ledger")
			if !ok {
				continue
			}
		}
		result.Holdings[tx.Ticker] = lots
	}
	return result
}
