// Package format renders nutrition values for terminal output.
package format

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alnah/go-fatsecret/internal/model"
)

// Missing is printed for values the API did not report.
const Missing = "-"

// Number formats v with at most two decimals and no trailing zeros.
// Examples: 105 -> "105", 1.290 -> "1.29", 0.333 -> "0.33"
func Number(v float64) string {
	return strconv.FormatFloat(roundTo(v, 2), 'f', -1, 64)
}

// Quantity formats an optional amount with its unit, or Missing.
// Examples: (105, "kcal") -> "105 kcal", (1.29, "g") -> "1.29 g"
func Quantity(f model.Float, unit string) string {
	if !f.Valid {
		return Missing
	}
	if unit == "" {
		return Number(f.Value)
	}
	return Number(f.Value) + " " + unit
}

// Minutes formats an optional number of minutes for human display.
// Examples: 15 -> "15m", 90 -> "1h30m", 0 -> "0m"
func Minutes(n model.Int) string {
	if !n.Valid || n.Value < 0 {
		return Missing
	}
	if n.Value == 0 {
		return "0m"
	}
	return DurationHuman(time.Duration(n.Value) * time.Minute)
}

// DurationHuman formats a duration for human display.
// Examples: "2h", "30m", "1h30m", "45s"
func DurationHuman(d time.Duration) string {
	if d >= time.Hour {
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes > 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return fmt.Sprintf("%ds", d/time.Second)
}

// Rating formats an optional rating out of five.
func Rating(f model.Float) string {
	if !f.Valid {
		return Missing
	}
	return Number(f.Value) + "/5"
}

func roundTo(v float64, decimals int) float64 {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return v
	}
	return r
}
