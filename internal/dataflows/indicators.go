package dataflows

import (
	"fmt"
	"strings"

	talib "github.com/markcheno/go-talib"

	"tradingagents/pkg/errors"
)

// minIndicatorBars is what the slowest indicator (MACD) needs to warm up.
const minIndicatorBars = 34

// IndicatorReport computes the standard technical-indicator set from daily
// bars and renders it as an analyst-readable report. Works identically on
// live and cached bars, which keeps the indicators tool mode-agnostic.
func IndicatorReport(ticker string, bars []Bar) (string, error) {
	if len(bars) < minIndicatorBars {
		return "", errors.Wrapf(errors.ErrInvalidInput,
			"need at least %d bars to compute indicators, got %d", minIndicatorBars, len(bars))
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i], _ = bar.Close.Float64()
		highs[i], _ = bar.High.Float64()
		lows[i], _ = bar.Low.Float64()
	}

	last := len(bars) - 1

	sma20 := talib.Sma(closes, 20)
	ema10 := talib.Ema(closes, 10)
	rsi14 := talib.Rsi(closes, 14)
	macd, macdSignal, macdHist := talib.Macd(closes, 12, 26, 9)
	upper, middle, lower := talib.BBands(closes, 20, 2.0, 2.0, talib.SMA)
	atr14 := talib.Atr(highs, lows, closes, 14)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Technical indicators for %s as of %s (close %.2f):\n", ticker, bars[last].Date, closes[last])
	fmt.Fprintf(&sb, "SMA(20): %.2f\n", sma20[last])
	fmt.Fprintf(&sb, "EMA(10): %.2f\n", ema10[last])
	fmt.Fprintf(&sb, "RSI(14): %.2f\n", rsi14[last])
	fmt.Fprintf(&sb, "MACD(12,26,9): %.4f signal %.4f hist %.4f\n", macd[last], macdSignal[last], macdHist[last])
	fmt.Fprintf(&sb, "Bollinger(20,2): upper %.2f middle %.2f lower %.2f\n", upper[last], middle[last], lower[last])
	fmt.Fprintf(&sb, "ATR(14): %.2f\n", atr14[last])

	return sb.String(), nil
}
