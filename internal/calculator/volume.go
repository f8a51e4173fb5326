package calculator

import "SignalWatch/internal/model"

// VolumeWindow is the number of trailing bars the volume detectors compare.
const VolumeWindow = 5

const (
	volumeSurgeRatio = 1.5
	volumeFadeRatio  = 0.7
)

// VolumeIncreasing reports whether the mean volume of the last two bars of
// the window exceeds 1.5x the mean of its first two bars.
func VolumeIncreasing(bars []model.PriceBar) bool {
	before, after, ok := volumeHalves(bars)
	return ok && after > before*volumeSurgeRatio
}

// VolumeDecreasing reports whether the mean volume of the last two bars of
// the window is below 0.7x the mean of its first two bars.
func VolumeDecreasing(bars []model.PriceBar) bool {
	before, after, ok := volumeHalves(bars)
	return ok && after < before*volumeFadeRatio
}

// AverageVolume returns the mean volume of the last n bars.
func AverageVolume(bars []model.PriceBar, n int) float64 {
	recent := Tail(bars, n)
	if len(recent) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range recent {
		sum += b.Volume
	}
	return sum / float64(len(recent))
}

func volumeHalves(bars []model.PriceBar) (before, after float64, ok bool) {
	if len(bars) < VolumeWindow {
		return 0, 0, false
	}
	w := Tail(bars, VolumeWindow)
	before = (w[0].Volume + w[1].Volume) / 2
	after = (w[3].Volume + w[4].Volume) / 2
	return before, after, true
}
