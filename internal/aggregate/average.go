package aggregate

import (
	"math"
	"strconv"
)

// maxScore is the top of the scorecard range; larger values are malformed
const maxScore = 100

// Avg is the mean of finite values <= 100, rounded to one decimal. Zeros count.
// Returns 0 for an empty (post-filter) sequence.
func Avg(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v > maxScore || !finite(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n))
}

// AvgNonzero is Avg that also skips values <= 0, where zero means "no signal"
func AvgNonzero(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v <= 0 || v > maxScore || !finite(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n))
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// round1 rounds to one decimal, exact halves to even ("12.25" -> 12.2)
func round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

// FormatNumber renders a one-decimal metric the way report details show it ("60.0", "12.5")
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		s += ".0"
	}
	return s
}
