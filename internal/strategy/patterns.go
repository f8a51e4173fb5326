package strategy

import (
	"SignalWatch/internal/calculator"
	"SignalWatch/internal/model"
)

const (
	reboundWindow = 5
	peakWindow    = 10

	// peakGain is the minimum rise over peakWindow for a rally to count as sharp.
	peakGain = 0.10
	// stallStep is the largest single-day rise still treated as a stall.
	stallStep = 1.01
)

// isRebounding: bars 1 and 2 of the window both closed lower, bars 3 and 4 both higher.
// Only those two down transitions are checked.
func isRebounding(bars []model.PriceBar) bool {
	if len(bars) < reboundWindow {
		return false
	}
	w := calculator.Tail(bars, reboundWindow)
	downDays := 0
	for i := 1; i < 3; i++ {
		if w[i].Close < w[i-1].Close {
			downDays++
		}
	}
	return downDays >= 2 &&
		w[3].Close > w[2].Close &&
		w[4].Close > w[3].Close
}

// isPeaking: more than 10% gain across the window, then the last two steps
// each rose by at most 1%.
func isPeaking(bars []model.PriceBar) bool {
	if len(bars) < peakWindow {
		return false
	}
	w := calculator.Tail(bars, peakWindow)
	first := w[0].Close
	if first <= 0 {
		return false
	}
	gain := (w[peakWindow-1].Close - first) / first

	last3 := w[peakWindow-3:]
	stalled := last3[1].Close <= last3[0].Close*stallStep &&
		last3[2].Close <= last3[1].Close*stallStep

	return gain > peakGain && stalled
}
