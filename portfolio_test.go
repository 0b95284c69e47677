package harvest

import (
	"slices"
	"testing"
	"time"
)

func samplePortfolio() *Portfolio {
	// Given out of order on purpose.
	return NewPortfolio([]Transaction{
		buy(day(time.March, 1), "MSFT", 2, 400),
		buy(day(time.January, 10), "AAPL", 10, 100),
		sell(day(time.February, 1), "AAPL", 4, 130),
		buy(day(time.January, 15), "TSLA", 5, 200),
		buy(day(time.June, 20), "TSLA", 1, 150),
	})
}

func TestNewPortfolio(t *testing.T) {
	p := samplePortfolio()

	if !IsSorted(p.Transactions()) {
		t.Errorf("Transactions() are not sorted: %v", p.Transactions())
	}
	if got, want := p.Tickers(), []string{"AAPL", "MSFT", "TSLA"}; !slices.Equal(got, want) {
		t.Errorf("Tickers() = %v, want %v", got, want)
	}
	if len(p.Realized()) != 1 || !p.Realized()[0].GainLoss.Equal(USD(120)) {
		t.Errorf("Realized() = %v, want a single gain of 120", p.Realized())
	}

	// Estimated from the last transaction of each ticker.
	prices := p.Prices()
	for ticker, want := range map[string]Money{"AAPL": USD(130), "MSFT": USD(400), "TSLA": USD(150)} {
		if !prices[ticker].Equal(want) {
			t.Errorf("estimated price of %s = %v, want %v", ticker, prices[ticker], want)
		}
	}
}

func TestPortfolio_Analyze(t *testing.T) {
	p := samplePortfolio()
	p.UpdatePrices(Prices{"AAPL": USD(90), "MSFT": USD(450)})
	p.ToggleHarvest("AAPL")
	p.ToggleBalancing("MSFT")

	r := p.Analyze(day(time.July, 1))

	// AAPL 6 @ 100 now 90: -60. MSFT 2 @ 400 now 450: +100.
	// TSLA 5 @ 200 + 1 @ 150 now 150: -250.
	if got, want := HarvestTickers(r.Harvest), []string{"TSLA", "AAPL"}; !slices.Equal(got, want) {
		t.Errorf("Harvest = %v, want %v", got, want)
	}
	if got, want := BalancingTickers(r.Balancing), []string{"MSFT"}; !slices.Equal(got, want) {
		t.Errorf("Balancing = %v, want %v", got, want)
	}
	if !r.Harvest[0].WashSaleWarning || r.Harvest[0].RecentBuyDate != day(time.June, 20) {
		t.Errorf("TSLA opportunity = %+v, want a wash-sale warning for the June 20 buy", r.Harvest[0])
	}
	if r.Harvest[1].WashSaleWarning {
		t.Errorf("AAPL opportunity has a wash-sale warning, want none")
	}

	s := r.Summary
	checks := []struct {
		field     string
		got, want Money
	}{
		{"TotalUnrealizedGain", s.TotalUnrealizedGain, USD(100)},
		{"TotalUnrealizedLoss", s.TotalUnrealizedLoss, USD(-310)},
		{"NetUnrealizedPL", s.NetUnrealizedPL, USD(-210)},
		{"MaxHarvestableLoss", s.MaxHarvestableLoss, USD(-310)},
		{"TotalRealizedGain", s.TotalRealizedGain, USD(120)},
		{"NetGainIfHarvested", s.NetGainIfHarvested, USD(120 - 60 + 100)},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("Summary.%s = %v, want %v", c.field, c.got, c.want)
		}
	}
}

func TestPortfolio_SelectAll(t *testing.T) {
	p := samplePortfolio()
	p.UpdatePrices(Prices{"AAPL": USD(90), "MSFT": USD(450)})

	p.SelectAllHarvest(true)
	p.SelectAllBalancing(true)
	if got, want := p.Selection().Harvest(), []string{"AAPL", "TSLA"}; !slices.Equal(got, want) {
		t.Errorf("Selection().Harvest() = %v, want %v", got, want)
	}
	if got, want := p.Selection().Balancing(), []string{"MSFT"}; !slices.Equal(got, want) {
		t.Errorf("Selection().Balancing() = %v, want %v", got, want)
	}

	p.SelectAllHarvest(false)
	if got := p.Selection().Harvest(); len(got) != 0 {
		t.Errorf("Selection().Harvest() = %v after unselecting all, want none", got)
	}
}

func TestPortfolio_Reset(t *testing.T) {
	p := samplePortfolio()
	p.ToggleHarvest("AAPL")
	p.Reset()

	r := p.Analyze(day(time.July, 1))
	if len(r.Positions)+len(r.Harvest)+len(r.Balancing)+len(r.Realized) != 0 {
		t.Errorf("Analyze() after Reset() = %+v, want an empty report", r)
	}
	if len(p.Prices()) != 0 || len(p.Selection().Harvest()) != 0 {
		t.Errorf("Reset() kept prices %v or selection %v", p.Prices(), p.Selection())
	}
}
