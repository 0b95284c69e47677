package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/date"
	"github.com/gocarina/gocsv"
	"github.com/google/subcommands"
)

// lotRow is a CSV row of the lots export.
type lotRow struct {
	Ticker    string           `csv:"ticker"`
	Acquired  date.Date        `csv:"acquired"`
	Quantity  harvest.Quantity `csv:"quantity"`
	UnitCost  harvest.Money    `csv:"unit_cost"`
	TotalCost harvest.Money    `csv:"total_cost"`
}

// gainRow is a CSV row of the realized gains export.
type gainRow struct {
	Date      date.Date        `csv:"date"`
	Ticker    string           `csv:"ticker"`
	Quantity  harvest.Quantity `csv:"quantity"`
	Proceeds  harvest.Money    `csv:"proceeds"`
	CostBasis harvest.Money    `csv:"cost_basis"`
	GainLoss  harvest.Money    `csv:"gain_loss"`
	Term      string           `csv:"term"`
	Acquired  string           `csv:"acquired"` // dates of the lots sold, oldest first
	Unmatched harvest.Quantity `csv:"unmatched"`
}

// positionRow is a CSV row of the positions export.
type positionRow struct {
	Ticker       string           `csv:"ticker"`
	Quantity     harvest.Quantity `csv:"quantity"`
	AvgCost      harvest.Money    `csv:"avg_cost"`
	CostBasis    harvest.Money    `csv:"cost_basis"`
	Price        harvest.Money    `csv:"price"`
	MarketValue  harvest.Money    `csv:"market_value"`
	UnrealizedPL harvest.Money    `csv:"unrealized_pl"`
	Percent      harvest.Percent  `csv:"unrealized_pl_percent"`
	PriceMissing bool             `csv:"price_missing"`
}

// opportunityRow is a CSV row of the harvesting and balancing exports.
// The wash-sale columns are always empty for balancing opportunities.
type opportunityRow struct {
	Selected     bool             `csv:"selected"`
	Ticker       string           `csv:"ticker"`
	Quantity     harvest.Quantity `csv:"quantity"`
	CostBasis    harvest.Money    `csv:"cost_basis"`
	Price        harvest.Money    `csv:"price"`
	MarketValue  harvest.Money    `csv:"market_value"`
	UnrealizedPL harvest.Money    `csv:"unrealized_pl"`
	Percent      harvest.Percent  `csv:"unrealized_pl_percent"`
	WashSale     bool             `csv:"wash_sale_warning"`
	RecentBuy    string           `csv:"recent_buy_date"`
}

func newPositionRow(p harvest.Position) positionRow {
	return positionRow{
		Ticker:       p.Ticker,
		Quantity:     p.Quantity,
		AvgCost:      p.AvgCost,
		CostBasis:    p.CostBasis,
		Price:        p.CurrentPrice,
		MarketValue:  p.MarketValue,
		UnrealizedPL: p.UnrealizedPL,
		Percent:      p.UnrealizedPLPercent,
		PriceMissing: p.PriceMissing,
	}
}

func lotRows(h harvest.Holdings) []lotRow {
	rows := []lotRow{}
	for _, ticker := range h.Tickers() {
		for _, lot := range h[ticker] {
			rows = append(rows, lotRow{ticker, lot.Date, lot.Quantity, lot.UnitCost, lot.TotalCost})
		}
	}
	return rows
}

func gainRows(realized []harvest.RealizedGainLoss) []gainRow {
	rows := []gainRow{}
	for _, r := range realized {
		var acquired []string
		for _, lot := range r.Consumed {
			acquired = append(acquired, lot.Date.String())
		}
		rows = append(rows, gainRow{
			Date:      r.Date,
			Ticker:    r.Ticker,
			Quantity:  r.QuantitySold,
			Proceeds:  r.Proceeds,
			CostBasis: r.CostBasis,
			GainLoss:  r.GainLoss,
			Term:      string(r.Term),
			Acquired:  strings.Join(acquired, " "),
			Unmatched: r.Unmatched,
		})
	}
	return rows
}

func positionRows(positions []harvest.Position) []positionRow {
	rows := []positionRow{}
	for _, p := range positions {
		rows = append(rows, newPositionRow(p))
	}
	return rows
}

func newOpportunityRow(selected bool, p harvest.Position) opportunityRow {
	return opportunityRow{
		Selected:     selected,
		Ticker:       p.Ticker,
		Quantity:     p.Quantity,
		CostBasis:    p.CostBasis,
		Price:        p.CurrentPrice,
		MarketValue:  p.MarketValue,
		UnrealizedPL: p.UnrealizedPL,
		Percent:      p.UnrealizedPLPercent,
	}
}

func harvestRows(r harvest.Report) []opportunityRow {
	rows := []opportunityRow{}
	for _, h := range r.Harvest {
		row := newOpportunityRow(r.Selection.IsHarvest(h.Ticker), h.Position)
		row.WashSale = h.WashSaleWarning
		if h.HasRecentBuy() {
			row.RecentBuy = h.RecentBuyDate.String()
		}
		rows = append(rows, row)
	}
	return rows
}

func balanceRows(r harvest.Report) []opportunityRow {
	rows := []opportunityRow{}
	for _, b := range r.Balancing {
		rows = append(rows, newOpportunityRow(r.Selection.IsBalancing(b.Ticker), b.Position))
	}
	return rows
}

// exports are the values of the -what flag.
var exports = []string{"lots", "gains", "positions", "harvest", "balance"}

// exportCmd holds the flags for the 'export' subcommand.
type exportCmd struct {
	source  source
	what    string
	output  string
	date    string
	harvest tickerList
	balance tickerList
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export lots, gains, positions or opportunities as CSV" }
func (*exportCmd) Usage() string {
	return `tlh export -f <file.csv> -what lots|gains|positions|harvest|balance [-o <out.csv>]

  Writes the selected table as CSV, with full precision amounts, to the
  standard output or to the -o file.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.source.setFlags(f)
	c.source.setPriceFlags(f)
	f.StringVar(&c.what, "what", "positions", "What to export: "+strings.Join(exports, ", "))
	f.StringVar(&c.output, "o", "", "Output file. Defaults to the standard output")
	f.StringVar(&c.date, "d", "", "Target date of the wash-sale check. Defaults to today")
	f.Var(&c.harvest, "harvest", "Comma separated tickers marked as selected for harvesting")
	f.Var(&c.balance, "balance", "Comma separated tickers marked as selected for balancing")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	target, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	p, err := c.source.portfolio(ctx, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		return subcommands.ExitFailure
	}
	p.Selection().SetHarvest(c.harvest...)
	p.Selection().SetBalancing(c.balance...)

	var rows any
	switch c.what {
	case "lots":
		rows = lotRows(p.Holdings())
	case "gains":
		rows = gainRows(p.Realized())
	case "positions":
		rows = positionRows(p.Analyze(target).Positions)
	case "harvest":
		rows = harvestRows(p.Analyze(target))
	case "balance":
		rows = balanceRows(p.Analyze(target))
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown export %q, want one of %s\n", c.what, strings.Join(exports, ", "))
		return subcommands.ExitUsageError
	}

	var w io.Writer = stdout
	if c.output != "" {
		out, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
		w = out
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
