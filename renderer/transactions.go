package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/importer"
)

// Transaction renders a transaction to a sentence.
func Transaction(tx harvest.Transaction) string {
	switch tx.Kind {
	case harvest.Buy:
		return fmt.Sprintf("Bought %s of %s at %s for %s", tx.Quantity, tx.Ticker, tx.Price, tx.Amount.Abs())
	case harvest.Sell:
		return fmt.Sprintf("Sold %s of %s at %s for %s", tx.Quantity, tx.Ticker, tx.Price, tx.Amount)
	default:
		return fmt.Sprintf("%s %s of %s", tx.Kind, tx.Quantity, tx.Ticker)
	}
}

func writeTransactions(w io.Writer, txs []harvest.Transaction) {
	t := newTable(w, "lllrrr", "Date", "Ticker", "Kind", "Quantity", "Price", "Amount")
	for _, tx := range txs {
		t.Row(tx.Date.String(), tx.Ticker, tx.Kind.String(), tx.Quantity.String(), tx.Price.String(), tx.Amount.SignedString())
	}
}

// Transactions renders a list of transactions.
func Transactions(txs []harvest.Transaction) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Transactions\n\n")
	if len(txs) == 0 {
		fmt.Fprint(&b, "No transactions.\n")
		return b.String()
	}
	writeTransactions(&b, txs)
	return b.String()
}

// Import renders the result of an import: the transactions kept and the
// records discarded, ignored ones and invalid ones.
func Import(res *importer.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Import (%s)\n\n", res.Format)
	fmt.Fprintf(&b, "%d transactions imported, %d records ignored, %d invalid.\n\n",
		len(res.Transactions), len(res.Ignored), len(res.Invalid))

	section(&b, "Transactions", func(w io.Writer) bool {
		if len(res.Transactions) == 0 {
			return false
		}
		writeTransactions(w, res.Transactions)
		return true
	})

	section(&b, "Invalid Records", func(w io.Writer) bool {
		if len(res.Invalid) == 0 {
			return false
		}
		t := newTable(w, "rll", "Line", "Field", "Error")
		for _, e := range res.Invalid {
			t.Row(fmt.Sprint(e.Line), e.Field, e.Err.Error())
		}
		return true
	})

	section(&b, "Ignored Records", func(w io.Writer) bool {
		if len(res.Ignored) == 0 {
			return false
		}
		counts := make(map[string]int)
		var codes []string
		for _, ig := range res.Ignored {
			code := ig.Code
			if code == "" {
				code = "(none)"
			}
			if counts[code] == 0 {
				codes = append(codes, code)
			}
			counts[code]++
		}
		t := newTable(w, "lr", "Code", "Records")
		for _, code := range codes {
			t.Row(code, fmt.Sprint(counts[code]))
		}
		return true
	})

	return b.String()
}
