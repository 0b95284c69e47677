package importer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/date"
	"github.com/shopspring/decimal"
)

const robinhoodExport = `"Activity Date","Process Date","Settle Date","Instrument","Description","Trans Code","Quantity","Price","Amount"
"3/4/2025","3/4/2025","3/5/2025","AAPL","Apple
CUSIP: 037833100","Buy","10","$100.00","($1,000.00)"
"1/2/2025","1/2/2025","1/3/2025","AAPL","Apple","BUY","5","$90.00","($450.00)"
"2/1/2025","2/1/2025","2/3/2025","AAPL","Cash Div: R/D 2025-01-27","CDIV","","","$1.20"
"2/10/2025","2/10/2025","","MSFT","Microsoft","SELL","2","$410.50","$821.00"
"not a date","2/11/2025","","MSFT","Microsoft","BUY","1","$400.00","($400.00)"
"2/12/2025","2/12/2025","2/13/2025","","ACH Deposit","ACH","","","$500.00"
"2/14/2025","2/14/2025","2/15/2025","TSLA","Tesla","REC","1","",""

""
"The data provided is for informational purposes only."
`

func TestRead_Robinhood(t *testing.T) {
	got, err := Read(strings.NewReader(robinhoodExport))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Format != "Robinhood CSV" {
		t.Errorf("Read().Format = %q, want %q", got.Format, "Robinhood CSV")
	}

	want := []struct {
		on     date.Date
		ticker string
		kind   harvest.Kind
		amount float64
	}{
		{date.New(2025, time.January, 3), "AAPL", harvest.Buy, -450},
		{date.New(2025, time.February, 10), "MSFT", harvest.Sell, 821},
		{date.New(2025, time.March, 5), "AAPL", harvest.Buy, -1000},
	}
	if len(got.Transactions) != len(want) {
		t.Fatalf("Read() = %d transactions, want %d: %v", len(got.Transactions), len(want), got.Transactions)
	}
	for i, w := range want {
		tx := got.Transactions[i]
		if tx.Date != w.on || tx.Ticker != w.ticker || tx.Kind != w.kind || !tx.Amount.Equal(harvest.M(w.amount, "USD")) {
			t.Errorf("Transactions[%d] = %v, want %v %v %s %v", i, tx, w.on, w.kind, w.ticker, w.amount)
		}
		if tx.Amount.Currency() != "USD" {
			t.Errorf("Transactions[%d].Amount.Currency() = %q, want USD", i, tx.Amount.Currency())
		}
		if tx.Original == nil {
			t.Errorf("Transactions[%d].Original is nil", i)
		}
	}
	if p := got.Transactions[1].Price; !p.Equal(harvest.M(410.5, "USD")) {
		t.Errorf("MSFT price = %v, want 410.50", p)
	}

	if len(got.Invalid) != 1 {
		t.Fatalf("Read().Invalid = %v, want 1 record", got.Invalid)
	}
	if inv := got.Invalid[0]; inv.Line != 7 || inv.Field != "Activity Date" || inv.Value != "not a date" {
		t.Errorf("Read().Invalid[0] = %v, want line 7 with an invalid Activity Date", inv)
	}

	var codes []string
	for _, ig := range got.Ignored {
		codes = append(codes, ig.Code)
	}
	if want := "CDIV,ACH,REC,"; strings.Join(codes, ",") != want {
		t.Errorf("Read().Ignored codes = %q, want %q", strings.Join(codes, ","), want)
	}
}

func TestRead_Strict(t *testing.T) {
	_, err := Read(strings.NewReader(robinhoodExport), WithMode(Strict))
	if err == nil {
		t.Fatalf("Read(Strict) succeeded, want an error")
	}
	var re *RecordError
	if !errors.As(err, &re) {
		t.Fatalf("Read(Strict) error = %v, want a *RecordError", err)
	}
	if re.Line != 7 {
		t.Errorf("RecordError.Line = %d, want 7", re.Line)
	}
}

func TestRead_UnknownFormat(t *testing.T) {
	_, err := Read(strings.NewReader("Date,Symbol,Action\n2025-01-01,AAPL,Buy\n"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Read() error = %v, want %v", err, ErrUnknownFormat)
	}
}

func TestRead_ByteOrderMark(t *testing.T) {
	export := "\ufeffActivity Date,Process Date,Settle Date,Instrument,Trans Code,Quantity,Price,Amount\n" +
		"2025-01-02,2025-01-02,,VTI,BUY,1.5,$250.00,($375.00)\n"
	got, err := Read(strings.NewReader(export))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got.Transactions) != 1 || !got.Transactions[0].Quantity.Equal(harvest.Q(1.5)) {
		t.Errorf("Read() = %v, want one purchase of 1.5 VTI", got.Transactions)
	}
}

func TestParse_MissingDate(t *testing.T) {
	records := []harvest.Record{
		{"Instrument": "AAPL", "Trans Code": "BUY", "Quantity": "1", "Price": "1", "Amount": "(1)"},
	}
	got, err := Parse(Robinhood{}, records)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Invalid) != 1 || !errors.Is(got.Invalid[0], ErrMissingDate) {
		t.Errorf("Parse().Invalid = %v, want a missing date", got.Invalid)
	}

	if _, err := Parse(Robinhood{}, records, WithMode(Strict)); !errors.Is(err, ErrMissingDate) {
		t.Errorf("Parse(Strict) error = %v, want %v", err, ErrMissingDate)
	}
}

func TestRobinhood_Normalize(t *testing.T) {
	base := func(code, quantity string) harvest.Record {
		return harvest.Record{"Activity Date": "1/2/2025", "Instrument": "KO", "Trans Code": code, "Quantity": quantity, "Price": "$60", "Amount": "$120"}
	}
	testCases := []struct {
		name    string
		rec     harvest.Record
		wantOK  bool
		wantErr bool
	}{
		{name: "sell", rec: base("SELL", "2"), wantOK: true},
		{name: "lower case code", rec: base("sell", "2"), wantOK: true},
		{name: "dividend", rec: base("CDIV", "")},
		{name: "stock split", rec: base("SPL", "2")},
		{name: "unknown code", rec: base("XYZ", "2")},
		{name: "no code", rec: base("", "2")},
		{name: "bad quantity", rec: base("SELL", "two"), wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok, err := Robinhood{}.Normalize(tc.rec, "USD")
			if (err != nil) != tc.wantErr {
				t.Fatalf("Normalize() error = %v, wantErr %v", err, tc.wantErr)
			}
			if ok != tc.wantOK {
				t.Errorf("Normalize() ok = %v, want %v", ok, tc.wantOK)
			}
		})
	}
}

func TestRobinhood_CanHandle(t *testing.T) {
	full := []string{"Activity Date", "Process Date", "Settle Date", "Instrument", "Description", "Trans Code", "Quantity", "Price", "Amount"}
	if !(Robinhood{}).CanHandle(full) {
		t.Errorf("CanHandle(%q) = false, want true", full)
	}
	partial := []string{"Activity Date", "Instrument", "Trans Code"}
	if (Robinhood{}).CanHandle(partial) {
		t.Errorf("CanHandle(%q) = true, want false", partial)
	}
}

func TestParseNumber(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "$1,234.50", want: "1234.5"},
		{in: "($1,234.50)", want: "-1234.5"},
		{in: "-12.75", want: "-12.75"},
		{in: "", want: "0"},
		{in: "  ", want: "0"},
		{in: "0.000123", want: "0.000123"},
		{in: "1.5S", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseNumber(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseNumber(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("ParseNumber(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": Lenient, "lenient": Lenient, "STRICT": Strict} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("loose"); err == nil {
		t.Errorf("ParseMode(\"loose\") succeeded, want an error")
	}
}
