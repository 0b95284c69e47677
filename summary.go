package harvest

// PortfolioSummary aggregates the realized and unrealized results of a
// portfolio, and the effect of selling the selected opportunities.
type PortfolioSummary struct {
	TotalUnrealizedGain Money
	TotalUnrealizedLoss Money
	NetUnrealizedPL     Money
	MaxHarvestableLoss  Money
	TotalRealizedGain   Money
	NetGainIfHarvested  Money
}

// NewSummary combines realized gains, a valuation and a selection into a
// summary. A nil selection means nothing is selected.
func NewSummary(realized []RealizedGainLoss, v Valuation, sel *Selection) PortfolioSummary {
	var total Money
	for _, r := range realized {
		total = total.Add(r.GainLoss)
	}
	total = total.canonical()
	return PortfolioSummary{
		TotalUnrealizedGain: v.Summary.TotalUnrealizedGain,
		TotalUnrealizedLoss: v.Summary.TotalUnrealizedLoss,
		NetUnrealizedPL:     v.Summary.NetUnrealizedPL,
		MaxHarvestableLoss:  v.Summary.MaxHarvestableLoss,
		TotalRealizedGain:   total,
		NetGainIfHarvested:  NetGainIfHarvested(total, v.Positions, sel),
	}
}

func (s PortfolioSummary) MarshalJSON() ([]byte, error) {
	var w jsonObject
	w.Append("totalUnrealizedGain", s.TotalUnrealizedGain)
	w.Append("totalUnrealizedLoss", s.TotalUnrealizedLoss)
	w.Append("netUnrealizedPL", s.NetUnrealizedPL)
	w.Append("maxHarvestableLoss", s.MaxHarvestableLoss)
	w.Append("totalRealizedGain", s.TotalRealizedGain)
	w.Append("netGainIfHarvested", s.NetGainIfHarvested)
	return w.MarshalJSON()
}
