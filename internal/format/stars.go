// Package format maps ratings to their display form.
package format

import (
	"strconv"
	"strings"
)

const (
	Star      = "⭐"
	MaxRating = 5
)

// Clamp bounds a rating to [0, MaxRating].
func Clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxRating {
		return MaxRating
	}
	return n
}

// Stars repeats the star token Clamp(n) times.
func Stars(n int) string {
	return strings.Repeat(Star, Clamp(n))
}

// Fraction shows the stored rating unclamped, e.g. "(4/5)".
func Fraction(n int) string {
	return "(" + strconv.Itoa(n) + "/" + strconv.Itoa(MaxRating) + ")"
}
