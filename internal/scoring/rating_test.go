package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveRating(t *testing.T) {
	tests := []struct {
		name     string
		labels   []int
		expected int
	}{
		{"single negative label", []int{-1}, 1},
		{"single neutral label", []int{0}, 3},
		{"single positive label", []int{1}, 5},
		{"mixed labels floor the mean", []int{-1, 0}, 2},
		{"positive and neutral", []int{1, 0}, 4},
		{"out-of-domain labels clamp high", []int{1, 2}, 5},
		{"out-of-domain labels clamp low", []int{-3, -3}, 1},
		{"empty labels yield no rating", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveRating(tt.labels))
		})
	}
}

func TestDeriveRatingAlwaysInRange(t *testing.T) {
	// Exhaustive over the model's observed label domain, up to 4 labels.
	domain := []int{-1, 0, 1}
	var walk func(labels []int, depth int)
	walk = func(labels []int, depth int) {
		if len(labels) > 0 {
			rating := DeriveRating(labels)
			assert.GreaterOrEqual(t, rating, 1, "labels %v", labels)
			assert.LessOrEqual(t, rating, 5, "labels %v", labels)
		}
		if depth == 0 {
			return
		}
		for _, l := range domain {
			walk(append(labels, l), depth-1)
		}
	}
	walk(nil, 4)
}

func TestDeriveRatingWithDivisor(t *testing.T) {
	// The bias rating divides by the sentiment label count, so the divisor
	// can differ from len(labels).
	labels := []int{0, 1, 1} // star sum 13
	assert.Equal(t, 4, DeriveRatingWithDivisor(labels, 3))
	assert.Equal(t, 5, DeriveRatingWithDivisor(labels, 2))

	assert.Equal(t, 0, DeriveRatingWithDivisor(labels, 0))
	assert.Equal(t, 0, DeriveRatingWithDivisor(labels, -1))
	assert.Equal(t, 0, DeriveRatingWithDivisor(nil, 2))
}

func TestIsBiased(t *testing.T) {
	expected := map[int]bool{1: false, 2: false, 3: true, 4: true, 5: true}
	for rating, biased := range expected {
		assert.Equal(t, biased, IsBiased(rating), "bias rating %d", rating)
	}
}
