package services

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names of the frame built by HoldingsFrame.
const (
	FrameSymbol        = "Symbol"
	FrameName          = "Name"
	FrameQuantity      = "Quantity"
	FrameAverageCost   = "AverageCost"
	FrameCurrentPrice  = "CurrentPrice"
	FrameCurrentValue  = "CurrentValue"
	FrameCostValue     = "CostValue"
	FrameGainLoss      = "GainLoss"
	FramePercentChange = "PercentChange"
	FramePriceSource   = "PriceSource"
)

// HoldingsFrame lays the valued holdings out one row per position, largest
// current value first.
func HoldingsFrame(view *PortfolioView) dataframe.DataFrame {
	n := len(view.Holdings)
	var (
		symbols  = make([]string, n)
		names    = make([]string, n)
		sources  = make([]string, n)
		quantity = make([]float64, n)
		avgCost  = make([]float64, n)
		price    = make([]float64, n)
		value    = make([]float64, n)
		cost     = make([]float64, n)
		gain     = make([]float64, n)
		percent  = make([]float64, n)
	)
	for i, h := range view.Holdings {
		symbols[i] = h.Asset.Symbol
		names[i] = h.Asset.Name
		sources[i] = string(h.PriceSource)
		quantity[i] = h.Quantity
		avgCost[i] = h.AverageCost
		price[i] = h.CurrentPrice
		value[i] = h.CurrentValue
		cost[i] = h.CostValue
		gain[i] = h.GainLoss
		percent[i] = h.PercentChange
	}

	df := dataframe.New(
		series.New(symbols, series.String, FrameSymbol),
		series.New(names, series.String, FrameName),
		series.New(quantity, series.Float, FrameQuantity),
		series.New(avgCost, series.Float, FrameAverageCost),
		series.New(price, series.Float, FrameCurrentPrice),
		series.New(value, series.Float, FrameCurrentValue),
		series.New(cost, series.Float, FrameCostValue),
		series.New(gain, series.Float, FrameGainLoss),
		series.New(percent, series.Float, FramePercentChange),
		series.New(sources, series.String, FramePriceSource),
	)
	if n < 2 {
		return df
	}
	return df.Arrange(dataframe.RevSort(FrameCurrentValue))
}

// AllocationBySymbol sums the current value held per symbol.
func AllocationBySymbol(df dataframe.DataFrame) map[string]float64 {
	allocation := make(map[string]float64, df.Nrow())
	if df.Nrow() == 0 {
		return allocation
	}
	symbols := df.Col(FrameSymbol).Records()
	values := df.Col(FrameCurrentValue).Float()
	for i, symbol := range symbols {
		allocation[symbol] += values[i]
	}
	return allocation
}
