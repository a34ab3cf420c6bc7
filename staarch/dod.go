package staarch

import (
	"math"

	"github.com/airbusgeo/imagefusion/pixel"
)

// DoDSentinel marks a pixel outside the change mask, or one whose standardized DI
// never crosses the disturbance threshold within the interval.
const DoDSentinel = math.MaxInt32

func standardizeGlobal(img *pixel.Image, validMask *pixel.Image) (*pixel.Image, error) {
	mean, std, err := img.MeanStdDev(validMask, true)
	if err != nil {
		return nil, err
	}
	out, err := pixel.New(img.Width(), img.Height(), img.Channels(), img.DataType())
	if err != nil {
		return nil, err
	}
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			for c := 0; c < img.Channels(); c++ {
				sigma := std[c]
				if sigma == 0 {
					sigma = 1
				}
				out.Set(x, y, c, (img.At(x, y, c)-mean[c])/sigma)
			}
		}
	}
	return out, nil
}

// movingAverageWindow returns the inclusive index range [lo,hi] (clipped to
// [0,n-1]) of the averaging window for position i among n time-ordered samples.
func movingAverageWindow(i, n, width int, align MovingAverageAlign) (lo, hi int) {
	switch align {
	case AlignLeft:
		lo, hi = i-width+1, i
	case AlignRight:
		lo, hi = i, i+width-1
	default: // AlignCenter
		if width == 2 {
			// no even window centers on a single sample; treat as a no-op rather than
			// picking an arbitrary neighbor to lean on.
			lo, hi = i, i
			break
		}
		offLeft := (width - 1) / 2
		offRight := width - 1 - offLeft
		lo, hi = i-offLeft, i+offRight
	}
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

func movingAverage(dis []*pixel.Image, width int, align MovingAverageAlign) []*pixel.Image {
	n := len(dis)
	out := make([]*pixel.Image, n)
	w, h := dis[0].Width(), dis[0].Height()
	for i := 0; i < n; i++ {
		lo, hi := movingAverageWindow(i, n, width, align)
		avg, _ := pixel.New(w, h, 1, pixel.F32)
		count := float64(hi - lo + 1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var sum float64
				for t := lo; t <= hi; t++ {
					sum += dis[t].At(x, y, 0)
				}
				avg.Set(x, y, 0, sum/count)
			}
		}
		out[i] = avg
	}
	return out
}

// assignDoD thresholds the time-averaged standardized DI series against a per-pixel
// min/max-derived threshold, assigning each changeMask
// pixel the first date its averaged DI exceeds the threshold. Pixels outside
// changeMask, or never exceeding the threshold, keep DoDSentinel.
func assignDoD(avgDI []*pixel.Image, dates []int64, changeMask [][]bool, ratio float64) [][]int32 {
	n := len(avgDI)
	w, h := avgDI[0].Width(), avgDI[0].Height()
	dod := make([][]int32, h)
	for y := range dod {
		dod[y] = make([]int32, w)
		for x := range dod[y] {
			dod[y][x] = DoDSentinel
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !changeMask[y][x] {
				continue
			}
			lo, hi := math.Inf(1), math.Inf(-1)
			for t := 0; t < n; t++ {
				v := avgDI[t].At(x, y, 0)
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			threshold := lo + (hi-lo)*ratio
			for t := 0; t < n; t++ {
				if avgDI[t].At(x, y, 0) > threshold {
					dod[y][x] = int32(dates[t])
					break
				}
			}
		}
	}
	return dod
}
