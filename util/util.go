package util

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/exp/constraints"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func GetKeysSorted[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func Max[A constraints.Integer | constraints.Float](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

// Millis rounds seconds to the nearest whole millisecond.
func Millis(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}

func Seconds(millis int64) float64 {
	return float64(millis) / 1000
}

// ReplaceWhitespace swaps every whitespace rune for an underscore.
func ReplaceWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, s)
}
