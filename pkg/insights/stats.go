package insights

import (
	"fmt"
	"math"
	"strings"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev is the sample standard deviation (n-1 denominator).
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

// sampleConfidence maps observation count to a fixed confidence ladder.
func sampleConfidence(n int) float64 {
	switch {
	case n < 10:
		return 0.4
	case n < minSampleSize:
		return 0.6
	case n < 100:
		return 0.8
	}
	return 0.9
}

// formatNumber renders a value compactly with K/M suffixes.
func formatNumber(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	case abs < 1:
		return fmt.Sprintf("%.3f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// formatLabel turns snake_case column names into title-cased labels.
func formatLabel(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
