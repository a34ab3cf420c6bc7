package pixel

import (
	"math"
	"sort"

	"github.com/airbusgeo/imagefusion/internal/ferr"
)

// Point is a pixel location.
type Point struct{ X, Y int }

// MinMaxResult holds the per-channel extrema of an Image.MinMaxLocations call.
type MinMaxResult struct {
	Min    []float64
	Max    []float64
	MinLoc []Point
	MaxLoc []Point
}

func (img *Image) checkMask(mask *Image) error {
	if mask == nil {
		return nil
	}
	if mask.width != img.width || mask.height != img.height {
		return ferr.NewSize("mask size mismatch")
	}
	if mask.dtype != U8 {
		return ferr.NewImageType("mask must be base u8, got %s", mask.dtype)
	}
	if mask.channels != 1 && mask.channels != img.channels {
		return ferr.NewImageType("mask channel count %d incompatible with %d", mask.channels, img.channels)
	}
	return nil
}

// CheckMask validates that mask is a usable per-pixel (or per-channel) mask for img:
// same width/height, base type U8, and either single-channel or matching img's
// channel count. A nil mask is always valid and means "every pixel allowed".
// Fusors use this to validate any auxiliary mask-shaped argument (e.g. a prediction
// mask) before indexing it, the same way the mask-taking methods (Mean,
// MinMaxLocations, ...) validate their mask internally.
func (img *Image) CheckMask(mask *Image) error {
	return img.checkMask(mask)
}

// MinMaxLocations returns, per channel, the minimum and maximum sample value and
// their first occurrence in raster order (ascending row, then column), restricted to
// locations where mask is non-zero (nil mask means every pixel).
func (img *Image) MinMaxLocations(mask *Image) (*MinMaxResult, error) {
	if err := img.checkMask(mask); err != nil {
		return nil, err
	}
	res := &MinMaxResult{
		Min:    make([]float64, img.channels),
		Max:    make([]float64, img.channels),
		MinLoc: make([]Point, img.channels),
		MaxLoc: make([]Point, img.channels),
	}
	found := make([]bool, img.channels)
	for c := 0; c < img.channels; c++ {
		res.Min[c] = math.Inf(1)
		res.Max[c] = math.Inf(-1)
	}
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			for c := 0; c < img.channels; c++ {
				if !maskAllows(mask, x, y, c) {
					continue
				}
				v := img.At(x, y, c)
				if !found[c] || v < res.Min[c] {
					res.Min[c] = v
					res.MinLoc[c] = Point{x, y}
				}
				if !found[c] || v > res.Max[c] {
					res.Max[c] = v
					res.MaxLoc[c] = Point{x, y}
				}
				found[c] = true
			}
		}
	}
	return res, nil
}

// Mean returns the per-channel mean over pixels where mask is non-zero (nil mask
// means every pixel).
func (img *Image) Mean(mask *Image) ([]float64, error) {
	if err := img.checkMask(mask); err != nil {
		return nil, err
	}
	sums := make([]float64, img.channels)
	counts := make([]int, img.channels)
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			for c := 0; c < img.channels; c++ {
				if !maskAllows(mask, x, y, c) {
					continue
				}
				sums[c] += img.At(x, y, c)
				counts[c]++
			}
		}
	}
	out := make([]float64, img.channels)
	for c := range out {
		if counts[c] > 0 {
			out[c] = sums[c] / float64(counts[c])
		}
	}
	return out, nil
}

// MeanStdDev returns the per-channel mean and standard deviation over pixels where
// mask is non-zero. When sampleCorrection is true and a channel has n>1 valid
// samples, the reported sigma is the population sigma scaled by sqrt(n/(n-1)); for
// n<=1 the population sigma (zero, for n==1) is returned unscaled.
func (img *Image) MeanStdDev(mask *Image, sampleCorrection bool) (mean, std []float64, err error) {
	if err := img.checkMask(mask); err != nil {
		return nil, nil, err
	}
	mean, err = img.Mean(mask)
	if err != nil {
		return nil, nil, err
	}
	sumSq := make([]float64, img.channels)
	counts := make([]int, img.channels)
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			for c := 0; c < img.channels; c++ {
				if !maskAllows(mask, x, y, c) {
					continue
				}
				d := img.At(x, y, c) - mean[c]
				sumSq[c] += d * d
				counts[c]++
			}
		}
	}
	std = make([]float64, img.channels)
	for c := range std {
		if counts[c] == 0 {
			continue
		}
		pop := math.Sqrt(sumSq[c] / float64(counts[c]))
		if sampleCorrection && counts[c] > 1 {
			pop *= math.Sqrt(float64(counts[c]) / float64(counts[c]-1))
		}
		std[c] = pop
	}
	return mean, std, nil
}

// Unique returns, per channel, the sorted set of distinct sample values present
// where mask is non-zero.
func (img *Image) Unique(mask *Image) ([][]float64, error) {
	withCount, err := img.UniqueWithCount(mask)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(withCount))
	for c, entries := range withCount {
		vals := make([]float64, len(entries))
		for i, e := range entries {
			vals[i] = e.Value
		}
		out[c] = vals
	}
	return out, nil
}

// ValueCount pairs a distinct sample value with its occurrence count.
type ValueCount struct {
	Value float64
	Count int
}

// UniqueWithCount returns, per channel, the sorted set of distinct sample values
// present where mask is non-zero, each paired with its occurrence count.
func (img *Image) UniqueWithCount(mask *Image) ([][]ValueCount, error) {
	if err := img.checkMask(mask); err != nil {
		return nil, err
	}
	counts := make([]map[float64]int, img.channels)
	for c := range counts {
		counts[c] = make(map[float64]int)
	}
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			for c := 0; c < img.channels; c++ {
				if !maskAllows(mask, x, y, c) {
					continue
				}
				counts[c][img.At(x, y, c)]++
			}
		}
	}
	out := make([][]ValueCount, img.channels)
	for c := range counts {
		entries := make([]ValueCount, 0, len(counts[c]))
		for v, n := range counts[c] {
			entries = append(entries, ValueCount{Value: v, Count: n})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Value < entries[j].Value })
		out[c] = entries
	}
	return out, nil
}
