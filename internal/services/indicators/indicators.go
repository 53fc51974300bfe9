package indicators

import (
	"errors"
	"math"

	"StockPulse/internal/domain/models"
)

// ErrNoData is returned when the bar sequence is empty or lacks OHLCV data.
// Downstream stages skip the ticker rather than scoring on garbage.
var ErrNoData = errors.New("indicators: no bar data")

// Series names in Set. Windows follow the screening setup: the EMA ribbon,
// ADX(13), Stoch(8,3), RSI(14), ATR(14), MACD(12,26), Bollinger(20,2),
// volume SMA(20).
const (
	SeriesEMA8     = "EMA_8"
	SeriesEMA13    = "EMA_13"
	SeriesEMA21    = "EMA_21"
	SeriesEMA34    = "EMA_34"
	SeriesEMA55    = "EMA_55"
	SeriesEMA89    = "EMA_89"
	SeriesADX      = "ADX_13"
	SeriesStochK   = "STOCH_K"
	SeriesStochD   = "STOCH_D"
	SeriesRSI      = "RSI_14"
	SeriesATR      = "ATR_14"
	SeriesMACD     = "MACD_12_26"
	SeriesBBUpper  = "BB_UPPER"
	SeriesBBLower  = "BB_LOWER"
	SeriesBBPos    = "BB_POSITION"
	SeriesVolSMA   = "VOLUME_SMA_20"
	SeriesVolRatio = "VOLUME_RATIO"
)

// Set maps indicator names to series aligned 1:1 with the input bars.
// Values inside a series warmup window are NaN, never an error.
type Set struct {
	Bars   []models.Bar
	Series map[string][]float64
}

// Last returns the latest value of a named series, or NaN when the series is
// missing or empty.
func (s *Set) Last(name string) float64 {
	ser, ok := s.Series[name]
	if !ok || len(ser) == 0 {
		return math.NaN()
	}
	return ser[len(ser)-1]
}

// At returns series[i], or NaN when out of range.
func (s *Set) At(name string, i int) float64 {
	ser, ok := s.Series[name]
	if !ok || i < 0 || i >= len(ser) {
		return math.NaN()
	}
	return ser[i]
}

// Compute derives the full indicator set from an ordered bar sequence.
// Pure and deterministic; the only failure mode is an empty input.
func Compute(bars []models.Bar) (*Set, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	vols := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		vols[i] = b.Volume
	}

	set := &Set{Bars: bars, Series: make(map[string][]float64, 17)}
	set.Series[SeriesEMA8] = EMA(closes, 8)
	set.Series[SeriesEMA13] = EMA(closes, 13)
	set.Series[SeriesEMA21] = EMA(closes, 21)
	set.Series[SeriesEMA34] = EMA(closes, 34)
	set.Series[SeriesEMA55] = EMA(closes, 55)
	set.Series[SeriesEMA89] = EMA(closes, 89)
	set.Series[SeriesRSI] = RSI(closes, 14)
	set.Series[SeriesATR] = ATR(highs, lows, closes, 14)
	set.Series[SeriesADX] = ADX(highs, lows, closes, 13)

	k, d := Stochastic(highs, lows, closes, 8, 3)
	set.Series[SeriesStochK] = k
	set.Series[SeriesStochD] = d

	macd := make([]float64, len(closes))
	e12 := EMA(closes, 12)
	e26 := EMA(closes, 26)
	for i := range closes {
		macd[i] = e12[i] - e26[i]
	}
	set.Series[SeriesMACD] = macd

	upper, lower, pos := Bollinger(closes, 20, 2)
	set.Series[SeriesBBUpper] = upper
	set.Series[SeriesBBLower] = lower
	set.Series[SeriesBBPos] = pos

	volSMA := SMA(vols, 20)
	ratio := make([]float64, len(vols))
	for i := range vols {
		if volSMA[i] > 0 {
			ratio[i] = vols[i] / volSMA[i]
		} else {
			ratio[i] = math.NaN()
		}
	}
	set.Series[SeriesVolSMA] = volSMA
	set.Series[SeriesVolRatio] = ratio

	return set, nil
}

// SMA computes a trailing simple moving average. The first window-1 values
// are NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA computes an exponential moving average with alpha = 2/(span+1),
// seeded with the SMA of the first span values.
func EMA(values []float64, span int) []float64 {
	out := nanSlice(len(values))
	if span <= 0 || len(values) < span {
		return out
	}
	alpha := 2.0 / float64(span+1)
	seed := 0.0
	for i := 0; i < span; i++ {
		seed += values[i]
	}
	out[span-1] = seed / float64(span)
	for i := span; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI computes Wilder's relative strength index. A window with zero average
// loss yields 100, not a division error.
func RSI(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if window <= 0 || len(closes) < window+1 {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)
	out[window] = rsiValue(avgGain, avgLoss)

	w := float64(window)
	for i := window + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*(w-1) + gain) / w
		avgLoss = (avgLoss*(w-1) + loss) / w
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// TrueRange computes max(h-l, |h-prevClose|, |l-prevClose|) per bar.
// The first bar's true range is h-l.
func TrueRange(highs, lows, closes []float64) []float64 {
	out := make([]float64, len(highs))
	for i := range highs {
		tr := highs[i] - lows[i]
		if i > 0 {
			if d := math.Abs(highs[i] - closes[i-1]); d > tr {
				tr = d
			}
			if d := math.Abs(lows[i] - closes[i-1]); d > tr {
				tr = d
			}
		}
		out[i] = tr
	}
	return out
}

// ATR computes Wilder's average true range.
func ATR(highs, lows, closes []float64, window int) []float64 {
	out := nanSlice(len(highs))
	if window <= 0 || len(highs) < window {
		return out
	}
	tr := TrueRange(highs, lows, closes)
	seed := 0.0
	for i := 0; i < window; i++ {
		seed += tr[i]
	}
	out[window-1] = seed / float64(window)
	w := float64(window)
	for i := window; i < len(tr); i++ {
		out[i] = (out[i-1]*(w-1) + tr[i]) / w
	}
	return out
}

// ADX computes Wilder's average directional index: smoothed +DM/-DM against
// ATR give the directional indicators, and ADX is the Wilder-smoothed DX.
func ADX(highs, lows, closes []float64, window int) []float64 {
	out := nanSlice(len(highs))
	if window <= 0 || len(highs) < 2*window {
		return out
	}

	plusDM := make([]float64, len(highs))
	minusDM := make([]float64, len(highs))
	for i := 1; i < len(highs); i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	tr := TrueRange(highs, lows, closes)
	w := float64(window)

	// Wilder-smoothed running sums, seeded over the first window bars.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= window; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := nanSlice(len(highs))
	dx[window] = dxValue(smPlus, smMinus, smTR)
	for i := window + 1; i < len(highs); i++ {
		smTR = smTR - smTR/w + tr[i]
		smPlus = smPlus - smPlus/w + plusDM[i]
		smMinus = smMinus - smMinus/w + minusDM[i]
		dx[i] = dxValue(smPlus, smMinus, smTR)
	}

	seed := 0.0
	for i := window; i < 2*window; i++ {
		seed += dx[i]
	}
	out[2*window-1] = seed / w
	for i := 2 * window; i < len(highs); i++ {
		out[i] = (out[i-1]*(w-1) + dx[i]) / w
	}
	return out
}

func dxValue(plus, minus, tr float64) float64 {
	if tr == 0 {
		return 0
	}
	pdi := 100 * plus / tr
	mdi := 100 * minus / tr
	if pdi+mdi == 0 {
		return 0
	}
	return 100 * math.Abs(pdi-mdi) / (pdi + mdi)
}

// Stochastic computes %K over the window and %D as its SMA smoothing.
// A flat window (high == low) yields %K = 50.
func Stochastic(highs, lows, closes []float64, window, smooth int) ([]float64, []float64) {
	k := nanSlice(len(closes))
	if window <= 0 || len(closes) < window {
		return k, nanSlice(len(closes))
	}
	for i := window - 1; i < len(closes); i++ {
		hi, lo := highs[i], lows[i]
		for j := i - window + 1; j < i; j++ {
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lo {
				lo = lows[j]
			}
		}
		if hi == lo {
			k[i] = 50
		} else {
			k[i] = 100 * (closes[i] - lo) / (hi - lo)
		}
	}
	d := smaSkipNaN(k, smooth)
	return k, d
}

// Bollinger computes 20-period bands at 2 standard deviations plus the
// position of the close between them (0 = lower band, 1 = upper band).
func Bollinger(closes []float64, window int, mult float64) (upper, lower, pos []float64) {
	upper = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	pos = nanSlice(len(closes))
	if window <= 1 || len(closes) < window {
		return upper, lower, pos
	}
	for i := window - 1; i < len(closes); i++ {
		var sum, sum2 float64
		for j := i - window + 1; j <= i; j++ {
			sum += closes[j]
			sum2 += closes[j] * closes[j]
		}
		n := float64(window)
		mean := sum / n
		variance := sum2/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		sd := math.Sqrt(variance)
		upper[i] = mean + mult*sd
		lower[i] = mean - mult*sd
		if upper[i] != lower[i] {
			pos[i] = (closes[i] - lower[i]) / (upper[i] - lower[i])
		}
	}
	return upper, lower, pos
}

func smaSkipNaN(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
