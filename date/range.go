package date

import "fmt"

// Range is a closed interval of days.
type Range struct{ From, To Date }

// Window returns the days days preceding end, and end itself.
//
// Window(d, 30) is [d-30, d]: 31 days.
func Window(end Date, days int) Range {
	return Range{From: end.Add(-days), To: end}
}

// Contains reports whether on is within the range, boundaries included.
func (r Range) Contains(on Date) bool { return !on.Before(r.From) && !on.After(r.To) }

// Days returns the number of days in the range.
func (r Range) Days() int { return r.To.DaysSince(r.From) + 1 }

func (r Range) String() string { return fmt.Sprintf("[%s, %s]", r.From, r.To) }
