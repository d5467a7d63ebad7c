package standings

import (
	"math"

	"github.com/shopspring/decimal"
)

// WinPercentage returns 100*wins/(wins+losses), or exactly 0 when no games were
// played. Negative counts are treated as 0.
func WinPercentage(wins, losses int) float64 {
	wins, losses = max(wins, 0), max(losses, 0)
	total := wins + losses
	if total <= 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// RoundPct rounds a percentage to one decimal place for display. Non-finite
// input rounds to 0.
func RoundPct(pct float64) float64 {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return decimal.NewFromFloat(pct).Round(1).InexactFloat64()
}

// clampPct bounds a value to the [0,100] bar width
func clampPct(pct float64) float64 {
	if math.IsNaN(pct) || pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
