// Package fitfc implements the regression + residual + spatial-filter spatiotemporal
// fusor: a single-pair predictor using a local linear regression of pair-date
// low-to-target dynamics, applied to the high-res pair, then a residual correction
// upsampled and blended by a k-nearest spatial filter.
package fitfc

import (
	"context"
	"math"
	"sort"

	"github.com/airbusgeo/imagefusion/internal/diag"
	"github.com/airbusgeo/imagefusion/internal/ferr"
	"github.com/airbusgeo/imagefusion/internal/workpool"
	"github.com/airbusgeo/imagefusion/multires"
	"github.com/airbusgeo/imagefusion/pixel"
)

// Fusor is a FitFC predictor bound to a MultiResImage and a validated Options record.
type Fusor struct {
	images    *multires.Container
	opts      Options
	processed bool
}

// New binds opts to images. Call ProcessOptions before Predict.
func New(images *multires.Container, opts Options) *Fusor {
	return &Fusor{images: images, opts: opts}
}

// ProcessOptions validates the bound options record.
func (f *Fusor) ProcessOptions() error {
	if f.images == nil {
		return ferr.NewLogic("fitfc: fusor constructed without a MultiResImage")
	}
	if err := f.opts.ProcessOptions(); err != nil {
		return err
	}
	if f.opts.NumberNeighbors > f.opts.WinSize*f.opts.WinSize {
		diag.Warnf("fitfc: number_neighbors clamped to win_size^2", "requested", f.opts.NumberNeighbors, "winSize2", f.opts.WinSize*f.opts.WinSize)
		f.opts.NumberNeighbors = f.opts.WinSize * f.opts.WinSize
	}
	f.processed = true
	return nil
}

func maskAllowsAt(mask *pixel.Image, x, y, c int) bool {
	if mask == nil {
		return true
	}
	if mask.Channels() == 1 {
		return mask.At(x, y, 0) != 0
	}
	return mask.At(x, y, c) != 0
}

func clampRound(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}

// prefixTable is a 2-D inclusive-exclusive summed-area table used to answer
// arbitrary window sums in O(1): sliding sums over the win_size×win_size
// neighborhood for the regression's Σx, Σy, Σxx, Σxy, n terms.
type prefixTable struct {
	w, h int
	sum  []float64 // (w+1)*(h+1)
}

func buildPrefix(w, h int, values []float64) *prefixTable {
	t := &prefixTable{w: w, h: h, sum: make([]float64, (w+1)*(h+1))}
	for y := 0; y < h; y++ {
		rowSum := 0.0
		for x := 0; x < w; x++ {
			rowSum += values[y*w+x]
			t.sum[(y+1)*(w+1)+(x+1)] = t.sum[y*(w+1)+(x+1)] + rowSum
		}
	}
	return t
}

// rectSum returns the sum over [x0,x1) x [y0,y1), clipped to the table's extent.
func (t *prefixTable) rectSum(x0, y0, x1, y1 int) float64 {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > t.w {
		x1 = t.w
	}
	if y1 > t.h {
		y1 = t.h
	}
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	W := t.w + 1
	return t.sum[y1*W+x1] - t.sum[y0*W+x1] - t.sum[y1*W+x0] + t.sum[y0*W+x0]
}

// Predict implements fusor.Fusor.
func (f *Fusor) Predict(ctx context.Context, targetDate int64, mask, predictMask *pixel.Image) (*pixel.Image, error) {
	if !f.processed {
		return nil, ferr.NewLogic("fitfc: Predict called before a successful ProcessOptions")
	}
	o := f.opts

	h1, err := f.images.Get(o.HighTag, o.PairDate)
	if err != nil {
		return nil, err
	}
	l1, err := f.images.Get(o.LowTag, o.PairDate)
	if err != nil {
		return nil, err
	}
	lt, err := f.images.Get(o.LowTag, targetDate)
	if err != nil {
		return nil, err
	}
	if !h1.SameGeometry(l1) || !h1.SameGeometry(lt) {
		return nil, ferr.NewSize("fitfc: high/low/target geometries must match")
	}
	if !h1.SameType(l1) || !h1.SameType(lt) {
		return nil, ferr.NewImageType("fitfc: high/low/target base types must match")
	}
	if h1.Width() < o.ResolutionFactor || h1.Height() < o.ResolutionFactor {
		return nil, ferr.NewSize("fitfc: image %dx%d smaller than resolution_factor %d", h1.Width(), h1.Height(), o.ResolutionFactor)
	}
	if err := h1.CheckMask(predictMask); err != nil {
		return nil, err
	}
	channels := h1.Channels()

	predArea := o.PredictionArea
	if predArea.Empty() {
		predArea = pixel.Rect{X: 0, Y: 0, W: h1.Width(), H: h1.Height()}
	}
	half := o.WinSize / 2
	full := pixel.Rect{X: 0, Y: 0, W: h1.Width(), H: h1.Height()}
	sampleArea := predArea.Dilate(o.WinSize).Intersect(full)
	if sampleArea.Empty() {
		return pixel.New(0, 0, channels, h1.DataType())
	}

	h1c, _ := h1.CloneRect(sampleArea)
	l1c, _ := l1.CloneRect(sampleArea)
	ltc, _ := lt.CloneRect(sampleArea)
	var maskc *pixel.Image
	if mask != nil {
		if maskc, err = mask.CloneRect(sampleArea); err != nil {
			return nil, err
		}
	}
	sw, sh := sampleArea.W, sampleArea.H

	lo, hi := h1.DataType().Bounds()
	frm := make([][]float64, channels)   // saturated a*h1+b, per channel, sample-area sized
	residual := make([][]float64, channels) // f64 residual, per channel, possibly resolution-upsampled
	for c := 0; c < channels; c++ {
		x := make([]float64, sw*sh)
		y := make([]float64, sw*sh)
		xx := make([]float64, sw*sh)
		xy := make([]float64, sw*sh)
		valid := make([]float64, sw*sh)
		for py := 0; py < sh; py++ {
			for px := 0; px < sw; px++ {
				i := py*sw + px
				if !maskAllowsAt(maskc, px, py, c) {
					continue
				}
				xv := l1c.At(px, py, c)
				yv := ltc.At(px, py, c)
				x[i] = xv
				y[i] = yv
				xx[i] = xv * xv
				xy[i] = xv * yv
				valid[i] = 1
			}
		}
		tx, ty, txx, txy, tn := buildPrefix(sw, sh, x), buildPrefix(sw, sh, y), buildPrefix(sw, sh, xx), buildPrefix(sw, sh, xy), buildPrefix(sw, sh, valid)

		frm[c] = make([]float64, sw*sh)
		residual[c] = make([]float64, sw*sh)
		for py := 0; py < sh; py++ {
			for px := 0; px < sw; px++ {
				x0, y0, x1, y1 := px-half, py-half, px+half+1, py+half+1
				n := tn.rectSum(x0, y0, x1, y1)
				sx := tx.rectSum(x0, y0, x1, y1)
				sy := ty.rectSum(x0, y0, x1, y1)
				sxx := txx.rectSum(x0, y0, x1, y1)
				sxy := txy.rectSum(x0, y0, x1, y1)
				det := n*sxx - sx*sx

				var a, b float64
				xi, yi := l1c.At(px, py, c), ltc.At(px, py, c)
				if math.Abs(det) < 1e-14 {
					a, b = 1, 0
				} else {
					a = (n*sxy - sx*sy) / det
					b = (sxx*sy - sx*sxy) / det
				}
				hv := h1c.At(px, py, c)
				i := py*sw + px
				frm[c][i] = clampRound(a*hv+b, lo, hi)
				residual[c][i] = yi - (a*xi + b)
			}
		}

		if o.ResolutionFactor > 1 {
			dw, dh, down := areaAverageDownscale(sw, sh, residual[c], o.ResolutionFactor)
			rlo, rhi := minMax(down)
			residual[c] = bicubicUpscale(dw, dh, down, sw, sh, rlo, rhi)
		}
	}

	winSize := o.WinSize
	dw := make([][]float64, winSize)
	for wy := 0; wy < winSize; wy++ {
		dw[wy] = make([]float64, winSize)
		for wx := 0; wx < winSize; wx++ {
			fx, fy := float64(wx-half), float64(wy-half)
			dw[wy][wx] = 1 / (1 + 2*math.Sqrt(fx*fx+fy*fy)/float64(winSize))
		}
	}

	sx0, sy0 := predArea.X-sampleArea.X, predArea.Y-sampleArea.Y
	out, err := pixel.New(predArea.W, predArea.H, channels, h1.DataType())
	if err != nil {
		return nil, err
	}

	type neighbor struct {
		x, y int
		d2   float64
		wx, wy int
	}

	err = workpool.Rows(ctx, predArea.H, func(row int) error {
		y := row
		cy := sy0 + y
		for x := 0; x < predArea.W; x++ {
			cx := sx0 + x
			if predictMask != nil && !maskAllowsAt(predictMask, predArea.X+x, predArea.Y+y, 0) {
				continue
			}
			var candidates []neighbor
			for wy := 0; wy < winSize; wy++ {
				wyAbs := cy + wy - half
				if wyAbs < 0 || wyAbs >= sh {
					continue
				}
				for wx := 0; wx < winSize; wx++ {
					wxAbs := cx + wx - half
					if wxAbs < 0 || wxAbs >= sw {
						continue
					}
					if !maskAllowsAt(maskc, wxAbs, wyAbs, 0) {
						continue
					}
					var d2 float64
					for c := 0; c < channels; c++ {
						d := h1c.At(cx, cy, c) - h1c.At(wxAbs, wyAbs, c)
						d2 += d * d
					}
					candidates = append(candidates, neighbor{x: wxAbs, y: wyAbs, d2: d2, wx: wx, wy: wy})
				}
			}
			sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].d2 < candidates[j].d2 })
			k := o.NumberNeighbors
			if k > len(candidates) {
				k = len(candidates)
			}
			candidates = candidates[:k]

			for c := 0; c < channels; c++ {
				var sumW, sumWV float64
				for _, n := range candidates {
					i := n.y*sw + n.x
					weight := dw[n.wy][n.wx]
					sumW += weight
					sumWV += weight * (frm[c][i] + residual[c][i])
				}
				if sumW == 0 {
					continue
				}
				out.Set(x, y, c, sumWV/sumW)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func minMax(vs []float64) (lo, hi float64) {
	if len(vs) == 0 {
		return 0, 1
	}
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
