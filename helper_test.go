package harvest

import (
	"time"

	"github.com/etnz/harvest/date"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for test to create money from const wit no currency set
func NO(v float64) Money { return M(v, "") }

// day returns a date in 2025.
func day(m time.Month, d int) date.Date { return date.New(2025, m, d) }

// buy is a buy with a settlement amount of exactly quantity × price.
func buy(on date.Date, ticker string, quantity, price float64) Transaction {
	return NewBuy(on, ticker, Q(quantity), USD(price), USD(-quantity*price))
}

// sell is a sell with proceeds of exactly quantity × price.
func sell(on date.Date, ticker string, quantity, price float64) Transaction {
	return NewSell(on, ticker, Q(quantity), USD(price), USD(quantity*price))
}
