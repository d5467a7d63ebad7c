package intake

import (
	"fmt"
	"math"
	"time"
)

// dateLayout matches the unpadded Y-M-D key component
const dateLayout = "2006-1-2"

// DateKey returns the storage key for a day's ledger: "<namespace>_<YYYY-M-D>".
// Components come from t's own location and are not zero-padded, so two callers on the
// same UTC instant in different zones can get different keys.
func DateKey(namespace string, t time.Time) string {
	return fmt.Sprintf("%s_%s", namespace, t.Format(dateLayout))
}

// GoalKey returns the storage key for the daily goal, shared by all days
func GoalKey(namespace string) string {
	return namespace + "_goal"
}

// ParseDate parses a "YYYY-M-D" (padding optional) date in local time
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", value, err)
	}
	return t, nil
}

// Percentage is the ring-fill percentage, capped at 100 for display.
// The raw total may exceed the goal; only the presentation clips.
func Percentage(totalMl, goalMl int) int {
	if goalMl <= 0 || totalMl <= 0 {
		return 0
	}
	pct := int(math.Round(float64(totalMl) * 100 / float64(goalMl)))
	if pct > 100 {
		return 100
	}
	return pct
}
