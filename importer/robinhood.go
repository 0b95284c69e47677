package importer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/date"
	"github.com/shopspring/decimal"
)

// Robinhood account activity columns.
const (
	rhActivityDate = "Activity Date"
	rhProcessDate  = "Process Date"
	rhSettleDate   = "Settle Date"
	rhInstrument   = "Instrument"
	rhTransCode    = "Trans Code"
	rhQuantity     = "Quantity"
	rhPrice        = "Price"
	rhAmount       = "Amount"
)

// rhIgnoredCodes are the non trade codes: dividends, splits, options,
// interests, transfers and other administrative records.
var rhIgnoredCodes = []string{"CDIV", "SLIP", "SPL", "OEXP", "BTO", "STO", "INT", "ACH", "GDBP", "GMPC", "GOLD", "MISC", "FUTSWP"}

// Robinhood normalizes the "Account activity" CSV report of Robinhood.
type Robinhood struct{}

func (Robinhood) Name() string { return "Robinhood CSV" }

// CanHandle requires the Activity Date, Process Date, Instrument and Trans Code columns.
func (Robinhood) CanHandle(header []string) bool {
	for _, col := range []string{rhActivityDate, rhProcessDate, rhInstrument, rhTransCode} {
		if !slices.Contains(header, col) {
			return false
		}
	}
	return true
}

// Code returns the upper cased transaction code of a record.
func (Robinhood) Code(rec harvest.Record) string {
	return strings.ToUpper(strings.TrimSpace(rec[rhTransCode]))
}

// Normalize keeps BUY and SELL records only. Any other code is discarded,
// known or not.
func (r Robinhood) Normalize(rec harvest.Record, currency string) (harvest.Transaction, bool, error) {
	code := r.Code(rec)
	if code == "" || slices.Contains(rhIgnoredCodes, code) {
		return harvest.Transaction{}, false, nil
	}
	kind, err := harvest.ParseKind(code)
	if err != nil {
		return harvest.Transaction{}, false, nil
	}

	on, err := rhDate(rec)
	if err != nil {
		return harvest.Transaction{}, false, err
	}

	ticker := strings.TrimSpace(rec[rhInstrument])
	if ticker == "" {
		return harvest.Transaction{}, false, &RecordError{Field: rhInstrument, Err: fmt.Errorf("missing ticker for a %s", kind)}
	}

	var numbers [3]decimal.Decimal
	for i, field := range []string{rhQuantity, rhPrice, rhAmount} {
		d, err := ParseNumber(rec[field])
		if err != nil {
			return harvest.Transaction{}, false, &RecordError{Field: field, Value: rec[field], Err: err}
		}
		numbers[i] = d
	}

	return harvest.Transaction{
		Date:     on,
		Ticker:   ticker,
		Kind:     kind,
		Quantity: harvest.Q(numbers[0].Abs()),
		Price:    harvest.M(numbers[1].Abs(), currency),
		Amount:   harvest.M(numbers[2], currency),
	}, true, nil
}

// rhDate returns the settlement date, or the activity date if the record
// has none.
func rhDate(rec harvest.Record) (date.Date, error) {
	field := rhSettleDate
	value := strings.TrimSpace(rec[field])
	if value == "" {
		field = rhActivityDate
		value = strings.TrimSpace(rec[field])
	}
	if value == "" {
		return date.Date{}, &RecordError{Field: rhActivityDate, Err: ErrMissingDate}
	}
	on, err := date.Parse(value)
	if err != nil {
		return date.Date{}, &RecordError{Field: field, Value: value, Err: err}
	}
	return on, nil
}
