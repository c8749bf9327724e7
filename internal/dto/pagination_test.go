package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNumbersSmallTotals(t *testing.T) {
	assert.Nil(t, PageNumbers(1, 0))
	assert.Equal(t, []int{1}, PageNumbers(1, 1))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, PageNumbers(3, 7))
}

func TestPageNumbersNearStart(t *testing.T) {
	for current := 1; current <= 4; current++ {
		assert.Equal(t, []int{1, 2, 3, 4, 5, PageGap, 20}, PageNumbers(current, 20), "current %d", current)
	}
}

func TestPageNumbersNearEnd(t *testing.T) {
	for current := 17; current <= 20; current++ {
		assert.Equal(t, []int{1, PageGap, 16, 17, 18, 19, 20}, PageNumbers(current, 20), "current %d", current)
	}
}

func TestPageNumbersMiddle(t *testing.T) {
	assert.Equal(t, []int{1, PageGap, 9, 10, 11, PageGap, 20}, PageNumbers(10, 20))
	assert.Equal(t, []int{1, PageGap, 4, 5, 6, PageGap, 20}, PageNumbers(5, 20))
	assert.Equal(t, []int{1, PageGap, 15, 16, 17, PageGap, 20}, PageNumbers(16, 20))
}

func TestPageNumbersClampsCurrent(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5, PageGap, 20}, PageNumbers(0, 20))
	assert.Equal(t, []int{1, PageGap, 16, 17, 18, 19, 20}, PageNumbers(99, 20))
}
