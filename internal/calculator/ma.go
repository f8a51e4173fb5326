package calculator

import "SignalWatch/internal/model"

// MovingAverage returns the simple moving average of closes for every bar.
// Entries before the first full window hold 0.
func MovingAverage(bars []model.PriceBar, period int) []float64 {
	result := make([]float64, len(bars))
	if period <= 0 {
		return result
	}
	closes := extractCloses(bars)
	for i := period - 1; i < len(closes); i++ {
		sum := 0.0
		for j := 0; j < period; j++ {
			sum += closes[i-j]
		}
		result[i] = sum / float64(period)
	}
	return result
}

// GoldenCross reports whether short crossed above long on the last element.
func GoldenCross(short, long []float64) bool {
	if len(short) < 2 || len(long) < 2 {
		return false
	}
	cur, prev := len(short)-1, len(short)-2
	lcur, lprev := len(long)-1, len(long)-2
	return short[prev] <= long[lprev] && short[cur] > long[lcur]
}

// DeadCross reports whether short crossed below long on the last element.
func DeadCross(short, long []float64) bool {
	if len(short) < 2 || len(long) < 2 {
		return false
	}
	cur, prev := len(short)-1, len(short)-2
	lcur, lprev := len(long)-1, len(long)-2
	return short[prev] >= long[lprev] && short[cur] < long[lcur]
}

func extractCloses(bars []model.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
