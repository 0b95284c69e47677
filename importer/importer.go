// Package importer turns brokerage CSV exports into normalized transactions.
//
// The format of a file is detected from its header row: every registered
// Normalizer is asked, in order, whether it can handle it. The first one that
// does maps each record to a transaction or discards it.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/harvest"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownFormat is returned when no normalizer recognizes the header.
	ErrUnknownFormat = errors.New("unknown CSV format: no matching normalizer")
	// ErrMissingDate is the cause of a RecordError for a record without any date.
	ErrMissingDate = errors.New("missing date")
)

// Normalizer maps the records of one brokerage export format.
type Normalizer interface {
	// Name is a human readable name of the format.
	Name() string
	// CanHandle reports whether the header row belongs to this format.
	CanHandle(header []string) bool
	// Normalize maps one record. It returns false, and no error, for records
	// that are not trades and must be discarded.
	Normalize(rec harvest.Record, currency string) (harvest.Transaction, bool, error)
}

// coder is implemented by normalizers that can name the transaction code
// of a record, to report ignored records.
type coder interface {
	Code(rec harvest.Record) string
}

var registry = []Normalizer{Robinhood{}}

// Register adds a normalizer, tried after the ones already registered.
func Register(n Normalizer) { registry = append(registry, n) }

// Detect returns the first registered normalizer that can handle header.
func Detect(header []string) (Normalizer, error) {
	i := slices.IndexFunc(registry, func(n Normalizer) bool { return n.CanHandle(header) })
	if i < 0 {
		return nil, fmt.Errorf("%w (header %q)", ErrUnknownFormat, header)
	}
	return registry[i], nil
}

// Mode defines how invalid records are handled.
type Mode int

const (
	// Lenient discards invalid records and reports them in Result.Invalid.
	Lenient Mode = iota
	// Strict fails the whole parse on the first invalid record.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// ParseMode parses "lenient" or "strict".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	}
	return Lenient, fmt.Errorf("unknown mode %q, want lenient or strict", s)
}

// RecordError reports a record that could not be normalized.
type RecordError struct {
	Line  int    // line of the record in the file, 0 if unknown
	Field string // column in error
	Value string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Ignored is a record discarded because it is not a trade.
type Ignored struct {
	Line int
	Code string
}

// Result is the outcome of reading an export.
type Result struct {
	Format       string
	Header       []string
	Transactions []harvest.Transaction // sorted by date
	Ignored      []Ignored
	Invalid      []*RecordError // only in Lenient mode
}

// Option configures Read and Parse.
type Option func(*options)

type options struct {
	mode     Mode
	currency string
	logger   zerolog.Logger
}

// WithMode selects how invalid records are handled.
func WithMode(m Mode) Option { return func(o *options) { o.mode = m } }

// WithCurrency sets the currency of amounts in the file ("USD" by default).
func WithCurrency(currency string) Option { return func(o *options) { o.currency = currency } }

// WithLogger sets the logger that reports discarded records.
func WithLogger(logger zerolog.Logger) Option { return func(o *options) { o.logger = logger } }

func newOptions(opts []Option) options {
	o := options{mode: Lenient, currency: "USD", logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Read reads a CSV export, detects its format and normalizes its records.
func Read(r io.Reader, opts ...Option) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	n, err := Detect(header)
	if err != nil {
		return nil, err
	}

	var records []harvest.Record
	var lines []int
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV records: %w", err)
		}
		if isBlank(fields) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rec := make(harvest.Record, len(header))
		for i, h := range header {
			if i < len(fields) {
				rec[h] = fields[i]
			}
		}
		records = append(records, rec)
		lines = append(lines, line)
	}

	result, err := parse(n, records, lines, newOptions(opts))
	if err != nil {
		return nil, err
	}
	result.Header = header
	return result, nil
}

// Parse normalizes records already keyed by column with n.
func Parse(n Normalizer, records []harvest.Record, opts ...Option) (*Result, error) {
	return parse(n, records, nil, newOptions(opts))
}

func parse(n Normalizer, records []harvest.Record, lines []int, o options) (*Result, error) {
	result := &Result{Format: n.Name(), Transactions: make([]harvest.Transaction, 0, len(records))}
	for i, rec := range records {
		line := 0
		if i < len(lines) {
			line = lines[i]
		}
		tx, ok, err := n.Normalize(rec, o.currency)
		if err != nil {
			var re *RecordError
			if !errors.As(err, &re) {
				re = &RecordError{Err: err}
			}
			re.Line = line
			if o.mode == Strict {
				return nil, fmt.Errorf("%s export: %w", n.Name(), re)
			}
			o.logger.Warn().Err(re.Err).Int("line", line).Str("field", re.Field).Str("value", re.Value).Msg("record discarded")
			result.Invalid = append(result.Invalid, re)
			continue
		}
		if !ok {
			code := ""
			if c, ok := n.(coder); ok {
				code = c.Code(rec)
			}
			o.logger.Debug().Int("line", line).Str("code", code).Msg("record ignored")
			result.Ignored = append(result.Ignored, Ignored{Line: line, Code: code})
			continue
		}
		tx.Original = rec
		result.Transactions = append(result.Transactions, tx)
	}
	harvest.SortTransactions(result.Transactions)
	return result, nil
}

// isBlank reports rows with no content, such as trailing empty lines.
func isBlank(fields []string) bool {
	return !slices.ContainsFunc(fields, func(f string) bool { return strings.TrimSpace(f) != "" })
}

// ParseNumber parses a currency formatted number such as "$1,234.50" or
// "($1,234.50)". Parentheses mean a negative number and an empty string
// means zero.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.NewReplacer("$", "", ",", "", "(", "", ")", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
