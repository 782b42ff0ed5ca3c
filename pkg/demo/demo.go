// Package demo generates a synthetic posting history so the analyzer
// can be exercised without scraping anything. The hour and day weights
// mimic a typical account: quiet overnight, building through the
// workday, peaking in the evening, lighter on weekends.
package demo

import (
	"math/rand/v2"
	"time"
)

var hourWeights = [24]int{
	1, 1, 1, 1, 1, 2, 3, 5, 8, 10, 12, 14,
	15, 14, 13, 14, 16, 18, 20, 22, 18, 12, 6, 3,
}

var dayWeights = [7]int{18, 20, 22, 20, 18, 12, 10}

const (
	minPosts = 150
	maxPosts = 300
)

// Timestamps returns between 150 and 300 synthetic UTC timestamps
// drawn from the weighted distributions. The same seed always yields
// the same sequence, which keeps demo output stable across reloads.
func Timestamps(seed uint64) []time.Time {
	rng := rand.New(rand.NewPCG(seed, seed))
	n := minPosts + rng.IntN(maxPosts-minPosts+1)

	// Anchor on a Monday so day index 0 really is Monday.
	base := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

	times := make([]time.Time, 0, n)
	for range n {
		day := weightedPick(rng, dayWeights[:])
		hour := weightedPick(rng, hourWeights[:])
		minute := rng.IntN(60)
		times = append(times, base.AddDate(0, 0, day).Add(
			time.Duration(hour)*time.Hour+time.Duration(minute)*time.Minute))
	}
	return times
}

func weightedPick(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := rng.IntN(total)
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}
