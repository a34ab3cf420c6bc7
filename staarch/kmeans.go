package staarch

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// kmeans clusters samples (each a fixed-length feature vector) into k clusters,
// running up to maxIter Lloyd iterations per restart and keeping the restart with
// the lowest total within-cluster squared distance. Initialization is deterministic
// farthest-point seeding rather than probabilistic k-means++, so that a prediction
// over the same inputs always produces the same clustering (documented in
// DESIGN.md). Distance/centroid math uses gonum.org/v1/gonum/floats.
func kmeans(samples [][]float64, k, maxIter, restarts int) (assignments []int, centroids [][]float64) {
	if len(samples) == 0 || k <= 0 {
		return make([]int, len(samples)), nil
	}
	if k > len(samples) {
		k = len(samples)
	}
	dim := len(samples[0])

	var bestAssign []int
	var bestCentroids [][]float64
	bestCost := math.Inf(1)

	for r := 0; r < restarts; r++ {
		start := (r * len(samples)) / restarts
		c := seedFarthestPoint(samples, k, start)
		assign := make([]int, len(samples))
		for iter := 0; iter < maxIter; iter++ {
			changed := false
			for i, s := range samples {
				best, bestD := 0, math.Inf(1)
				for ci, centroid := range c {
					d := floats.Distance(s, centroid, 2)
					if d < bestD {
						bestD, best = d, ci
					}
				}
				if assign[i] != best {
					changed = true
				}
				assign[i] = best
			}
			nc := make([][]float64, k)
			counts := make([]int, k)
			for ci := range nc {
				nc[ci] = make([]float64, dim)
			}
			for i, s := range samples {
				ci := assign[i]
				floats.Add(nc[ci], s)
				counts[ci]++
			}
			for ci := range nc {
				if counts[ci] == 0 {
					nc[ci] = c[ci] // empty cluster keeps its previous centroid
					continue
				}
				floats.Scale(1/float64(counts[ci]), nc[ci])
			}
			c = nc
			if !changed && iter > 0 {
				break
			}
		}
		cost := 0.0
		for i, s := range samples {
			cost += floats.Distance(s, c[assign[i]], 2)
		}
		if cost < bestCost {
			bestCost, bestAssign, bestCentroids = cost, assign, c
		}
	}
	return bestAssign, bestCentroids
}

// seedFarthestPoint picks k centroids: the sample at `start`, then repeatedly the
// sample maximizing its distance to the nearest already-chosen centroid.
func seedFarthestPoint(samples [][]float64, k, start int) [][]float64 {
	dim := len(samples[0])
	chosen := make([]int, 0, k)
	chosen = append(chosen, start%len(samples))
	for len(chosen) < k {
		bestIdx, bestD := -1, -1.0
		for i, s := range samples {
			minD := math.Inf(1)
			for _, ci := range chosen {
				d := floats.Distance(s, samples[ci], 2)
				if d < minD {
					minD = d
				}
			}
			if minD > bestD {
				bestD, bestIdx = minD, i
			}
		}
		chosen = append(chosen, bestIdx)
	}
	out := make([][]float64, k)
	for i, ci := range chosen {
		out[i] = append(make([]float64, 0, dim), samples[ci]...)
	}
	return out
}
