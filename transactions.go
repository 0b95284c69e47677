package harvest

import (
	"fmt"
	"sort"

	"github.com/etnz/harvest/date"
)

// Kind identifies what a Transaction does to a position.
type Kind int

const (
	// Other is any transaction that does not change lots. Normalizers drop
	// them, so they never reach the ledger.
	Other Kind = iota
	Buy
	Sell
)

func (k Kind) String() string {
	switch k {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "OTHER"
	}
}

// ParseKind parses "BUY" or "SELL" (case sensitive, as normalized codes are upper case).
func ParseKind(s string) (Kind, error) {
	switch s {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return Other, fmt.Errorf("unknown transaction kind: %q", s)
	}
}

func (k Kind) MarshalJSON() ([]byte, error) { return []byte(fmt.Sprintf("%q", k.String())), nil }
func (k Kind) MarshalCSV() (string, error)  { return k.String(), nil }

// Record is a raw brokerage record, keyed by column header.
type Record map[string]string

// Transaction is a normalized brokerage transaction.
//
// Quantity and Price are non negative. Amount is the signed settlement
// amount as reported by the broker (negative for a purchase, positive for
// a sale).
type Transaction struct {
	Date     date.Date // effective date
	Ticker   string
	Kind     Kind
	Quantity Quantity
	Price    Money
	Amount   Money
	Original Record // the raw record this transaction was built from.
}

// NewBuy creates a Buy transaction.
func NewBuy(on date.Date, ticker string, quantity Quantity, price, amount Money) Transaction {
	return Transaction{Date: on, Ticker: ticker, Kind: Buy, Quantity: quantity, Price: price, Amount: amount}
}

// NewSell creates a Sell transaction.
func NewSell(on date.Date, ticker string, quantity Quantity, price, amount Money) Transaction {
	return Transaction{Date: on, Ticker: ticker, Kind: Sell, Quantity: quantity, Price: price, Amount: amount}
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s (%s)", t.Date, t.Kind, t.Quantity, t.Ticker, t.Price, t.Amount)
}

// MarshalJSON writes the transaction in a stable field order. The raw record
// is not persisted.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObject
	w.Append("date", t.Date)
	w.Append("ticker", t.Ticker)
	w.Append("kind", t.Kind)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price)
	w.Append("amount", t.Amount)
	return w.MarshalJSON()
}

// SortTransactions sorts transactions chronologically in place. Transactions
// on the same date keep their relative order.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
}

// IsSorted reports whether transactions are in chronological order.
func IsSorted(txs []Transaction) bool {
	return sort.SliceIsSorted(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
}
