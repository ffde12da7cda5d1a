package indicators

import "math"

// VWMA, MFI and ATR are computed directly: their multi-input channel forms
// are easy to miswire silently, and the math is a handful of lines each.

func vwmaSeries(bars []Bar, period int) []Value {
	if len(bars) < period {
		return nil
	}
	out := make([]Value, 0, len(bars)-period+1)
	for i := period - 1; i < len(bars); i++ {
		var weighted, volume float64
		for j := i - period + 1; j <= i; j++ {
			weighted += bars[j].Close * bars[j].Volume
			volume += bars[j].Volume
		}
		value := 0.0
		if volume > 0 {
			value = weighted / volume
		}
		out = append(out, Value{Date: bars[i].Date, Value: value})
	}
	return out
}

func mfiSeries(bars []Bar, period int) []Value {
	if len(bars) < period+1 {
		return nil
	}

	positive := make([]float64, len(bars))
	negative := make([]float64, len(bars))
	prev := typicalPrice(bars[0])
	for i := 1; i < len(bars); i++ {
		tp := typicalPrice(bars[i])
		flow := tp * bars[i].Volume
		switch {
		case tp > prev:
			positive[i] = flow
		case tp < prev:
			negative[i] = flow
		}
		prev = tp
	}

	out := make([]Value, 0, len(bars)-period)
	for i := period; i < len(bars); i++ {
		var pos, neg float64
		for j := i - period + 1; j <= i; j++ {
			pos += positive[j]
			neg += negative[j]
		}
		// Flat window has no money flow either way.
		value := 50.0
		if pos+neg > 0 {
			value = 100 * pos / (pos + neg)
		}
		out = append(out, Value{Date: bars[i].Date, Value: value})
	}
	return out
}

func typicalPrice(bar Bar) float64 {
	return (bar.High + bar.Low + bar.Close) / 3
}

// atrSeries applies Wilder smoothing to the true range.
func atrSeries(bars []Bar, period int) []Value {
	if len(bars) < period+1 {
		return nil
	}

	trueRanges := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		highLow := bars[i].High - bars[i].Low
		highClose := math.Abs(bars[i].High - bars[i-1].Close)
		lowClose := math.Abs(bars[i].Low - bars[i-1].Close)
		trueRanges[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}

	var sum float64
	for i := 1; i <= period; i++ {
		sum += trueRanges[i]
	}
	atr := sum / float64(period)

	out := make([]Value, 0, len(bars)-period)
	out = append(out, Value{Date: bars[period].Date, Value: atr})
	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
		out = append(out, Value{Date: bars[i].Date, Value: atr})
	}
	return out
}
