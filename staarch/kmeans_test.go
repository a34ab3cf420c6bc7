package staarch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKMeansSeparatesTwoWellSeparatedClusters(t *testing.T) {
	samples := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{10, 10}, {10.1, 10}, {10, 10.1},
	}
	assignments, centroids := kmeans(samples, 2, 25, 3)
	require.Len(t, centroids, 2)
	require.Equal(t, assignments[0], assignments[1])
	require.Equal(t, assignments[1], assignments[2])
	require.Equal(t, assignments[3], assignments[4])
	require.Equal(t, assignments[4], assignments[5])
	require.NotEqual(t, assignments[0], assignments[3])
}

func TestKMeansIsDeterministic(t *testing.T) {
	samples := [][]float64{{0, 0}, {1, 1}, {5, 5}, {6, 6}, {9, 9}}
	a1, _ := kmeans(samples, 3, 25, 3)
	a2, _ := kmeans(samples, 3, 25, 3)
	require.Equal(t, a1, a2)
}
