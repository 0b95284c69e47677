// Package date provides a calendar date with day granularity, used for
// transaction effective dates and wash-sale windows.
package date

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateFormat is the ISO-8601 layout dates are written with.
const DateFormat = "2006-01-02"

const Day = 24 * time.Hour

// layouts are tried in order when parsing. The first one also accepts
// single digit months and days, like "2025-7-1". The others are found in
// brokerage exports.
var layouts = []string{
	"2006-1-2",
	"1/2/2006",
	"1/2/06",
	"01-02-2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// ErrEmpty is returned when parsing a blank string.
var ErrEmpty = errors.New("empty date")

// Date is a calendar day. Its zero value is used as "no date".
type Date struct {
	y int
	m time.Month
	d int
}

// New returns the Date of year, month and day, normalized: February 30th is
// March 2nd or 1st.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// Today returns the current date, in the local time zone.
func Today() Date { return New(time.Now().Date()) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// midnight, UTC, is the canonical instant of a day: two equal dates give
// equal instants.
func (d Date) midnight() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Before(x Date) bool { return d.midnight().Before(x.midnight()) }
func (d Date) After(x Date) bool  { return d.midnight().After(x.midnight()) }

// Add returns the date i days later (earlier if i is negative).
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// DaysSince returns the number of days from x to d, negative when d is before x.
func (d Date) DaysSince(x Date) int { return int(d.midnight().Sub(x.midnight()) / Day) }

func (d Date) String() string { return d.midnight().Format(DateFormat) }

// Parse parses a date in any of the supported layouts, ISO first.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrEmpty
	}
	for _, layout := range layouts {
		if on, err := time.Parse(layout, s); err == nil {
			return New(on.Date()), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or M/D/YYYY", s)
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	on, err := Parse(s)
	if err != nil {
		return err
	}
	*d = on
	return nil
}

// MarshalCSV writes the date in ISO format for gocsv.
func (d Date) MarshalCSV() (string, error) { return d.String(), nil }
