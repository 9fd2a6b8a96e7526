package dataset

import "math/rand"

// TrainTestSplit shuffles row indices with the given seed and partitions them
// into train and test sets. Invalid ratios fall back to 0.2.
func TrainTestSplit(n int, testRatio float64, seed int64) (trainIdx, testIdx []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)

	split := n - int(float64(n)*testRatio)
	for i, idx := range indices {
		if i < split {
			trainIdx = append(trainIdx, idx)
		} else {
			testIdx = append(testIdx, idx)
		}
	}
	return trainIdx, testIdx
}
