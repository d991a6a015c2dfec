package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 2.0, mean([]float64{1, 2, 3}))
	assert.Equal(t, 2.5, mean([]float64{1, 2, 3, 4}))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, median(nil))
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 5.0, median([]float64{5}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, stddev(nil, 0))
	assert.Equal(t, 0.0, stddev([]float64{4, 4, 4}, 4))

	// Population stddev of {2,4,4,4,5,5,7,9} around mean 5 is exactly 2.
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 2.0, stddev(values, mean(values)))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, percentage(5, 0), "zero denominator must yield 0")
	assert.Equal(t, 50.0, percentage(1, 2))
	assert.Equal(t, 33.33, percentage(1, 3))
	assert.Equal(t, 66.67, percentage(2, 3))
	assert.Equal(t, 100.0, percentage(10, 10))
}

func TestPercentageBounds(t *testing.T) {
	// part <= whole with non-negative inputs stays within [0, 100]
	cases := [][2]float64{{0, 1}, {1, 7}, {3, 7}, {7, 7}, {99, 100}, {1, 3000}}
	for _, c := range cases {
		got := percentage(c[0], c[1])
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, round2(33.333333))
	assert.Equal(t, 33.34, round2(33.335))
	assert.Equal(t, -20.0, round2(-20.0))
}

func TestMinMax(t *testing.T) {
	min, max := minMax(nil)
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 0.0, max)

	min, max = minMax([]float64{4, 2, 9, 3})
	assert.Equal(t, 2.0, min)
	assert.Equal(t, 9.0, max)
}
