package main

import (
	"errors"
	"fmt"
	"strings"
)

func matchesScope(name, pattern string) bool {
	return strings.Contains(name, pattern)
}

func truncate(n, top int) int {
	if top > 0 && top < n {
		return top
	}
	return n
}

// millis converts microseconds to milliseconds for display.
func millis(us int64) float64 {
	return float64(us) / 1000.0
}

var errZeroDivisor = errors.New("cannot compute percentage of a zero duration")

// percent returns part as a percentage of whole. A zero whole is an error
// rather than NaN or Inf in the output.
func percent(part, whole int64, what string) (float64, error) {
	if whole == 0 {
		return 0, fmt.Errorf("%w: %s", errZeroDivisor, what)
	}
	return 100.0 * float64(part) / float64(whole), nil
}
