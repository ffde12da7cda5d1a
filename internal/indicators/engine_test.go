package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticBars(n int) []Bar {
	bars := make([]Bar, 0, n)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		closePrice := 100 + 10*math.Sin(float64(i)/7) + float64(i)*0.05
		bars = append(bars, Bar{
			Date:   day.Format("2006-01-02"),
			Open:   closePrice - 0.5,
			High:   closePrice + 1,
			Low:    closePrice - 1,
			Close:  closePrice,
			Volume: 1_000_000 + float64(i%7)*10_000,
		})
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

func TestClose200SMAMatchesArithmeticMean(t *testing.T) {
	bars := syntheticBars(260)

	values, err := Series("close_200_sma", bars)
	require.NoError(t, err)
	require.NotEmpty(t, values)

	var sum float64
	for _, bar := range bars[len(bars)-200:] {
		sum += bar.Close
	}
	want := sum / 200

	last := values[len(values)-1]
	assert.Equal(t, bars[len(bars)-1].Date, last.Date)
	assert.InDelta(t, want, last.Value, 1e-6)
}

func TestClose50SMAEmitsOneValuePerFullWindow(t *testing.T) {
	bars := syntheticBars(60)

	values, err := Series("close_50_sma", bars)
	require.NoError(t, err)
	require.Len(t, values, 11)
	assert.Equal(t, bars[49].Date, values[0].Date)
	assert.Equal(t, bars[59].Date, values[10].Date)
}

func TestSeriesSortsBarsBeforeComputing(t *testing.T) {
	bars := syntheticBars(60)
	reversed := make([]Bar, len(bars))
	for i, bar := range bars {
		reversed[len(bars)-1-i] = bar
	}

	values, err := Series("close_50_sma", reversed)
	require.NoError(t, err)
	require.NotEmpty(t, values)

	var sum float64
	for _, bar := range bars[len(bars)-50:] {
		sum += bar.Close
	}
	assert.InDelta(t, sum/50, values[len(values)-1].Value, 1e-6)
	assert.Equal(t, bars[len(bars)-1].Date, values[len(values)-1].Date)
}

func TestNotEnoughDataForEveryIndicator(t *testing.T) {
	bars := syntheticBars(1)
	for _, name := range Names() {
		_, err := Series(name, bars)
		require.ErrorIs(t, err, ErrNotEnoughData, "indicator %s", name)
	}
}

func TestUnsupportedIndicator(t *testing.T) {
	_, err := Series("adx", syntheticBars(30))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not supported. Please choose from:")
}

func TestBollingerBandOrdering(t *testing.T) {
	bars := syntheticBars(60)

	upper, err := Series("boll_ub", bars)
	require.NoError(t, err)
	middle, err := Series("boll", bars)
	require.NoError(t, err)
	lower, err := Series("boll_lb", bars)
	require.NoError(t, err)

	require.NotEmpty(t, middle)
	require.Len(t, upper, len(middle))
	require.Len(t, lower, len(middle))

	for i := range middle {
		assert.Equal(t, middle[i].Date, upper[i].Date)
		assert.Equal(t, middle[i].Date, lower[i].Date)
		assert.GreaterOrEqual(t, upper[i].Value, middle[i].Value)
		assert.GreaterOrEqual(t, middle[i].Value, lower[i].Value)
	}
}

func TestMACDHistogramIsLineMinusSignal(t *testing.T) {
	bars := syntheticBars(80)

	line, err := Series("macd", bars)
	require.NoError(t, err)
	signal, err := Series("macds", bars)
	require.NoError(t, err)
	hist, err := Series("macdh", bars)
	require.NoError(t, err)

	require.NotEmpty(t, line)
	require.Len(t, signal, len(line))
	require.Len(t, hist, len(line))
	assert.Equal(t, bars[len(bars)-1].Date, line[len(line)-1].Date)

	for i := range line {
		assert.InDelta(t, line[i].Value-signal[i].Value, hist[i].Value, 1e-9)
	}
}

func TestVWMAMatchesWeightedAverage(t *testing.T) {
	bars := syntheticBars(30)

	values, err := Series("vwma", bars)
	require.NoError(t, err)
	require.NotEmpty(t, values)

	var weighted, volume float64
	for _, bar := range bars[len(bars)-20:] {
		weighted += bar.Close * bar.Volume
		volume += bar.Volume
	}

	last := values[len(values)-1]
	assert.Equal(t, bars[len(bars)-1].Date, last.Date)
	assert.InDelta(t, weighted/volume, last.Value, 1e-6)
}

func TestATRConstantRange(t *testing.T) {
	bars := make([]Bar, 40)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = Bar{
			Date:   day.Format("2006-01-02"),
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100,
			Volume: 1_000_000,
		}
		day = day.AddDate(0, 0, 1)
	}

	values, err := Series("atr", bars)
	require.NoError(t, err)
	require.NotEmpty(t, values)
	for _, v := range values {
		assert.InDelta(t, 2.0, v.Value, 1e-9)
	}
}

func TestRSISaturatesOnMonotonicGains(t *testing.T) {
	bars := make([]Bar, 50)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		closePrice := 100 + float64(i)
		bars[i] = Bar{
			Date:   day.Format("2006-01-02"),
			Open:   closePrice,
			High:   closePrice + 1,
			Low:    closePrice - 1,
			Close:  closePrice,
			Volume: 1_000_000,
		}
		day = day.AddDate(0, 0, 1)
	}

	values, err := Series("rsi", bars)
	require.NoError(t, err)
	require.NotEmpty(t, values)
	assert.InDelta(t, 100.0, values[len(values)-1].Value, 1e-6)

	for _, v := range values {
		assert.GreaterOrEqual(t, v.Value, 0.0)
		assert.LessOrEqual(t, v.Value, 100.0)
	}
}

func TestMFIExtremes(t *testing.T) {
	up := make([]Bar, 30)
	down := make([]Bar, 30)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range up {
		rising := 100 + float64(i)
		falling := 200 - float64(i)
		up[i] = Bar{Date: day.Format("2006-01-02"), Open: rising, High: rising + 1, Low: rising - 1, Close: rising, Volume: 1_000_000}
		down[i] = Bar{Date: day.Format("2006-01-02"), Open: falling, High: falling + 1, Low: falling - 1, Close: falling, Volume: 1_000_000}
		day = day.AddDate(0, 0, 1)
	}

	values, err := Series("mfi", up)
	require.NoError(t, err)
	require.NotEmpty(t, values)
	for _, v := range values {
		assert.InDelta(t, 100.0, v.Value, 1e-9)
	}

	values, err = Series("mfi", down)
	require.NoError(t, err)
	require.NotEmpty(t, values)
	for _, v := range values {
		assert.InDelta(t, 0.0, v.Value, 1e-9)
	}
}

func TestCatalog(t *testing.T) {
	names := Names()
	require.Len(t, names, 13)
	assert.IsNonDecreasing(t, names)

	for _, name := range names {
		assert.True(t, Supported(name))
		assert.NotEqual(t, "No description available.", Describe(name))
		assert.NotEmpty(t, Describe(name))
	}

	assert.False(t, Supported("adx"))
	assert.Equal(t, "No description available.", Describe("adx"))
}
