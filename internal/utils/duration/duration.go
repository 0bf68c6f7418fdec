// Package duration converts between free-text giveaway durations ("1h30m", "2d")
// and time.Duration.
package duration

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const Day = 24 * time.Hour

var units = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': Day,
}

// Parse sums every <integer><unit> token found in text. Characters outside tokens
// are ignored, so "1h 30m", "1h30m" and "in 1h, 30m" are equivalent. A zero result
// means nothing usable was found and must be treated as invalid input.
func Parse(text string) time.Duration {
	var total time.Duration
	for i := 0; i < len(text); {
		if !isDigit(text[i]) {
			i++
			continue
		}

		start := i
		for i < len(text) && isDigit(text[i]) {
			i++
		}
		if i >= len(text) {
			break
		}
		unit, ok := units[text[i]]
		if !ok {
			continue
		}
		i++

		value, err := strconv.ParseInt(text[start:i-1], 10, 64)
		if err != nil || value > int64(math.MaxInt64/unit) {
			continue
		}
		step := time.Duration(value) * unit
		if total > math.MaxInt64-step {
			continue
		}
		total += step
	}
	return total
}

// Format renders d as descending non-zero components, e.g. "1d 2h 5s".
// Sub-second precision is dropped; zero or negative durations render as "0s".
func Format(d time.Duration) string {
	return FormatOr(d, "0s")
}

// FormatOr is Format with a caller-chosen rendering for the zero case.
func FormatOr(d time.Duration, zero string) string {
	if d < time.Second {
		return zero
	}

	parts := make([]string, 0, 4)
	for _, u := range []struct {
		size   time.Duration
		suffix string
	}{
		{Day, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
	} {
		n := d / u.size
		d -= n * u.size
		if n > 0 {
			parts = append(parts, strconv.FormatInt(int64(n), 10)+u.suffix)
		}
	}
	return strings.Join(parts, " ")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
