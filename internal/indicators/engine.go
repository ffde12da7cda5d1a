// Package indicators computes the technical indicator catalog exposed to the
// market analyst from raw OHLCV bars.
package indicators

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volatility"
)

// Bar is a single daily OHLCV row. Date is formatted YYYY-MM-DD.
type Bar struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Value is one dated indicator reading.
type Value struct {
	Date  string
	Value float64
}

// ErrNotEnoughData signals that the series is too short to compute anything.
var ErrNotEnoughData = errors.New("not enough data to calculate the indicator")

// Series computes the named indicator over the bars and returns one dated
// value per bar for which the indicator is defined. Bars may arrive in any
// order; values come back in ascending date order, aligned to the newest bars.
func Series(name string, bars []Bar) ([]Value, error) {
	if !Supported(name) {
		return nil, fmt.Errorf("indicator %s is not supported. Please choose from: %s",
			name, strings.Join(Names(), ", "))
	}
	if len(bars) < 2 {
		return nil, ErrNotEnoughData
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	switch name {
	case "close_50_sma":
		return smaSeries(sorted, 50), nil
	case "close_200_sma":
		return smaSeries(sorted, 200), nil
	case "close_10_ema":
		return emaSeries(sorted, 10), nil
	case "vwma":
		return vwmaSeries(sorted, 20), nil
	case "macd":
		line, _, _ := macdSeries(sorted)
		return line, nil
	case "macds":
		_, signal, _ := macdSeries(sorted)
		return signal, nil
	case "macdh":
		_, _, hist := macdSeries(sorted)
		return hist, nil
	case "rsi":
		return rsiSeries(sorted, 14), nil
	case "mfi":
		return mfiSeries(sorted, 14), nil
	case "boll":
		_, middle, _ := bollingerSeries(sorted, 20)
		return middle, nil
	case "boll_ub":
		upper, _, _ := bollingerSeries(sorted, 20)
		return upper, nil
	case "boll_lb":
		_, _, lower := bollingerSeries(sorted, 20)
		return lower, nil
	case "atr":
		return atrSeries(sorted, 14), nil
	}
	return nil, fmt.Errorf("indicator %s is not supported", name)
}

func closings(bars []Bar) chan float64 {
	ch := make(chan float64, len(bars))
	for _, bar := range bars {
		ch <- bar.Close
	}
	close(ch)
	return ch
}

func drain(ch <-chan float64) []float64 {
	var out []float64
	for v := range ch {
		out = append(out, v)
	}
	return out
}

// alignTail pairs computed values with the newest bars. Streaming indicators
// emit one value per bar once warmed up, so the last value belongs to the
// last bar.
func alignTail(bars []Bar, vals []float64) []Value {
	if len(vals) > len(bars) {
		vals = vals[len(vals)-len(bars):]
	}
	offset := len(bars) - len(vals)
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = Value{Date: bars[offset+i].Date, Value: v}
	}
	return out
}

func smaSeries(bars []Bar, period int) []Value {
	sma := trend.NewSmaWithPeriod[float64](period)
	return alignTail(bars, drain(sma.Compute(closings(bars))))
}

func emaSeries(bars []Bar, period int) []Value {
	ema := trend.NewEmaWithPeriod[float64](period)
	return alignTail(bars, drain(ema.Compute(closings(bars))))
}

func rsiSeries(bars []Bar, period int) []Value {
	rsi := momentum.NewRsiWithPeriod[float64](period)
	return alignTail(bars, drain(rsi.Compute(closings(bars))))
}

func macdSeries(bars []Bar) (line, signal, hist []Value) {
	macd := trend.NewMacdWithPeriod[float64](12, 26, 9)
	macdChan, signalChan := macd.Compute(closings(bars))

	var lineVals, signalVals []float64
	for {
		m, mok := <-macdChan
		s, sok := <-signalChan
		if !mok || !sok {
			break
		}
		lineVals = append(lineVals, m)
		signalVals = append(signalVals, s)
	}

	histVals := make([]float64, len(lineVals))
	for i := range lineVals {
		histVals[i] = lineVals[i] - signalVals[i]
	}
	return alignTail(bars, lineVals), alignTail(bars, signalVals), alignTail(bars, histVals)
}

func bollingerSeries(bars []Bar, period int) (upper, middle, lower []Value) {
	bands := volatility.NewBollingerBandsWithPeriod[float64](period)
	upperChan, middleChan, lowerChan := bands.Compute(closings(bars))

	var upperVals, middleVals, lowerVals []float64
	for {
		u, uok := <-upperChan
		m, mok := <-middleChan
		l, lok := <-lowerChan
		if !uok || !mok || !lok {
			break
		}
		upperVals = append(upperVals, u)
		middleVals = append(middleVals, m)
		lowerVals = append(lowerVals, l)
	}
	return alignTail(bars, upperVals), alignTail(bars, middleVals), alignTail(bars, lowerVals)
}
