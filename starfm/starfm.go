// Package starfm implements the moving-window weighted-voting spatiotemporal fusor:
// given one or two (high-res, low-res) pair dates and a target-date low-res image,
// it predicts the high-res image at the target date.
package starfm

import (
	"context"
	"math"

	"github.com/airbusgeo/imagefusion/internal/ferr"
	"github.com/airbusgeo/imagefusion/internal/workpool"
	"github.com/airbusgeo/imagefusion/multires"
	"github.com/airbusgeo/imagefusion/pixel"
)

// Fusor is a STARFM predictor bound to a MultiResImage and a validated Options
// record. staarch.Driver builds three independent Fusors per prediction, one per
// side selection; each computes its own per-pair data and tolerances, and nothing
// is shared between them.
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
		return ferr.NewLogic("starfm: fusor constructed without a MultiResImage")
	}
	if err := f.opts.ProcessOptions(); err != nil {
		return err
	}
	f.processed = true
	return nil
}

// pairData holds one pair date's precomputed spectral/temporal diffs and local
// prediction, all sized to the sample area.
type pairData struct {
	high, low, target *pixel.Image // cropped to sample area, original base type
	ds, dt            []float64    // [ (y*w+x)*channels + c ]
	lv                *pixel.Image // h_k + (l_t - l_k), saturated to high's base type
	tol               []float64    // per-channel same-class tolerance, from the full image
	w, h, c           int
}

func (pd *pairData) at(s []float64, x, y, c int) float64 {
	return s[(y*pd.w+x)*pd.c+c]
}

func computePair(high, low, target *pixel.Image, tol []float64) (*pairData, error) {
	w, h, c := high.Width(), high.Height(), high.Channels()
	lv, err := pixel.New(w, h, c, high.DataType())
	if err != nil {
		return nil, err
	}
	pd := &pairData{high: high, low: low, target: target, tol: tol, w: w, h: h, c: c}
	pd.ds = make([]float64, w*h*c)
	pd.dt = make([]float64, w*h*c)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				hv := high.At(x, y, ch)
				lkv := low.At(x, y, ch)
				ltv := target.At(x, y, ch)
				idx := (y*w+x)*c + ch
				pd.ds[idx] = math.Abs(lkv - hv)
				pd.dt[idx] = math.Abs(lkv - ltv)
				lv.Set(x, y, ch, hv+(ltv-lkv))
			}
		}
	}
	pd.lv = lv
	return pd, nil
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

func tolerance(img *pixel.Image, mask *pixel.Image, numberClasses int) ([]float64, error) {
	_, sigma, err := img.MeanStdDev(mask, true)
	if err != nil {
		return nil, err
	}
	tol := make([]float64, len(sigma))
	for c := range tol {
		tol[c] = 2 * sigma[c] / float64(numberClasses)
	}
	return tol, nil
}

// Predict implements fusor.Fusor.
func (f *Fusor) Predict(ctx context.Context, targetDate int64, mask, predictMask *pixel.Image) (*pixel.Image, error) {
	if !f.processed {
		return nil, ferr.NewLogic("starfm: Predict called before a successful ProcessOptions")
	}
	o := f.opts

	h1, err := f.images.Get(o.HighTag, o.Date1)
	if err != nil {
		return nil, err
	}
	l1, err := f.images.Get(o.LowTag, o.Date1)
	if err != nil {
		return nil, err
	}
	lt, err := f.images.Get(o.LowTag, targetDate)
	if err != nil {
		return nil, err
	}
	var h3, l3 *pixel.Image
	double := o.doublePair()
	if double {
		if h3, err = f.images.Get(o.HighTag, *o.Date3); err != nil {
			return nil, err
		}
		if l3, err = f.images.Get(o.LowTag, *o.Date3); err != nil {
			return nil, err
		}
	}
	if !h1.SameGeometry(l1) || !h1.SameGeometry(lt) || (double && (!h1.SameGeometry(h3) || !h1.SameGeometry(l3))) {
		return nil, ferr.NewSize("starfm: high/low/target geometries must match")
	}
	if !h1.SameType(l1) || !h1.SameType(lt) || (double && (!h1.SameType(h3) || !h1.SameType(l3))) {
		return nil, ferr.NewImageType("starfm: high/low/target base types must match")
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
	sampleArea := predArea.Dilate(half).Intersect(full)
	if sampleArea.Empty() {
		return pixel.New(0, 0, channels, h1.DataType())
	}

	h1c, _ := h1.CloneRect(sampleArea)
	l1c, _ := l1.CloneRect(sampleArea)
	ltc, _ := lt.CloneRect(sampleArea)
	var h3c, l3c *pixel.Image
	if double {
		h3c, _ = h3.CloneRect(sampleArea)
		l3c, _ = l3.CloneRect(sampleArea)
	}
	var maskc *pixel.Image
	if mask != nil {
		maskc, err = mask.CloneRect(sampleArea)
		if err != nil {
			return nil, err
		}
	}

	tol1, err := tolerance(h1, mask, o.NumberClasses)
	if err != nil {
		return nil, err
	}
	p1, err := computePair(h1c, l1c, ltc, tol1)
	if err != nil {
		return nil, err
	}
	var p3 *pairData
	if double {
		tol3, err := tolerance(h3, mask, o.NumberClasses)
		if err != nil {
			return nil, err
		}
		if p3, err = computePair(h3c, l3c, ltc, tol3); err != nil {
			return nil, err
		}
	}

	dw := make([][]float64, o.WinSize)
	for wy := 0; wy < o.WinSize; wy++ {
		dw[wy] = make([]float64, o.WinSize)
		for wx := 0; wx < o.WinSize; wx++ {
			fx, fy := float64(wx-half), float64(wy-half)
			dw[wy][wx] = 1 + 2*math.Sqrt(fx*fx+fy*fy)/float64(o.WinSize)
		}
	}

	sigmaDt := o.TemporalUncertainty * math.Sqrt2
	sigmaDs := math.Sqrt(o.TemporalUncertainty*o.TemporalUncertainty + o.SpectralUncertainty*o.SpectralUncertainty)
	sigmaComb := math.Sqrt(sigmaDt*sigmaDt + sigmaDs*sigmaDs)

	sx0, sy0 := predArea.X-sampleArea.X, predArea.Y-sampleArea.Y

	out, err := pixel.New(predArea.W, predArea.H, channels, h1.DataType())
	if err != nil {
		return nil, err
	}

	weightDtZeroed := o.UseTempDiffForWeights == TempDiffDisable ||
		(o.UseTempDiffForWeights == TempDiffOnDoublePair && !double)

	err = workpool.Rows(ctx, predArea.H, func(row int) error {
		y := row
		cy := sy0 + y
		for x := 0; x < predArea.W; x++ {
			cx := sx0 + x
			if predictMask != nil && !maskAllowsAt(predictMask, predArea.X+x, predArea.Y+y, 0) {
				continue
			}
			for c := 0; c < channels; c++ {
				v, ok := f.predictPixel(p1, p3, double, cx, cy, c, half, o.WinSize, dw, maskc,
					sigmaDt, sigmaDs, sigmaComb, weightDtZeroed, o)
				if !ok {
					continue
				}
				out.Set(x, y, c, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// predictPixel implements one (pixel,channel) of the §4.2 step-4 algorithm, including
// the do_copy_on_zero_diff shortcut from step 3. ok is false only when nothing should
// be written (never the case here; kept for symmetry with callers that skip pixels).
func (f *Fusor) predictPixel(p1, p3 *pairData, double bool, cx, cy, c, half, winSize int,
	dw [][]float64, maskc *pixel.Image,
	sigmaDt, sigmaDs, sigmaComb float64, weightDtZeroed bool, o Options) (float64, bool) {

	if o.DoCopyOnZeroDiff {
		if v, ok := f.zeroDiffShortcut(p1, p3, double, cx, cy, c); ok {
			return v, true
		}
	}

	dtCenter := p1.at(p1.dt, cx, cy, c)
	dsCenter := p1.at(p1.ds, cx, cy, c)
	if double {
		dtCenter = math.Min(dtCenter, p3.at(p3.dt, cx, cy, c))
		dsCenter = math.Min(dsCenter, p3.at(p3.ds, cx, cy, c))
	}
	dtCenter += sigmaDt
	dsCenter += sigmaDs

	var sumW, sumWLv float64
	pairs := []*pairData{p1}
	if double {
		pairs = append(pairs, p3)
	}
	for _, pd := range pairs {
		for wy := 0; wy < winSize; wy++ {
			y := cy + wy - half
			if y < 0 || y >= pd.h {
				continue
			}
			for wx := 0; wx < winSize; wx++ {
				x := cx + wx - half
				if x < 0 || x >= pd.w {
					continue
				}
				if !maskAllowsAt(maskc, x, y, c) {
					continue
				}
				sameClass := math.Abs(pd.high.At(cx, cy, c)-pd.high.At(x, y, c)) < pd.tol[c]
				if !sameClass {
					continue
				}
				ds := pd.at(pd.ds, x, y, c)
				dt := pd.at(pd.dt, x, y, c)
				var accept bool
				if o.UseStrictFiltering {
					accept = dt < dtCenter && ds < dsCenter
				} else {
					accept = dt < dtCenter || ds < dsCenter
				}
				if !accept {
					continue
				}
				weightDt := dt
				if weightDtZeroed {
					weightDt = 0
				}
				var weight float64
				if o.LogScaleFactor > 0 {
					k := o.LogScaleFactor
					weight = 1 / (math.Log(2+weightDt*k) * math.Log(2+ds*k) * dw[wy][wx])
				} else if (1+weightDt)*(1+ds) < sigmaComb {
					weight = 1
				} else {
					weight = 1 / (dw[wy][wx] * (1 + weightDt) * (1 + ds))
				}
				sumW += weight
				sumWLv += weight * pd.lv.At(x, y, c)
			}
		}
	}
	if sumW == 0 {
		if double {
			return 0.5 * (p1.lv.At(cx, cy, c) + p3.lv.At(cx, cy, c)), true
		}
		return p1.lv.At(cx, cy, c), true
	}
	return sumWLv / sumW, true
}

// zeroDiffShortcut implements the do_copy_on_zero_diff bypass. In
// double-pair mode it prioritizes the both-dt-zero average, then falls through to
// either pair's ds==0/dt==0 condition in pair order — an explicit, documented
// resolution of the source's otherwise unspecified tie order (DESIGN.md).
func (f *Fusor) zeroDiffShortcut(p1, p3 *pairData, double bool, cx, cy, c int) (float64, bool) {
	if double && p1.at(p1.dt, cx, cy, c) == 0 && p3.at(p3.dt, cx, cy, c) == 0 {
		return 0.5 * (p1.high.At(cx, cy, c) + p3.high.At(cx, cy, c)), true
	}
	for _, pd := range pairOrder(p1, p3, double) {
		if pd.at(pd.ds, cx, cy, c) == 0 {
			return pd.target.At(cx, cy, c), true
		}
	}
	for _, pd := range pairOrder(p1, p3, double) {
		if pd.at(pd.dt, cx, cy, c) == 0 {
			return pd.high.At(cx, cy, c), true
		}
	}
	return 0, false
}

func pairOrder(p1, p3 *pairData, double bool) []*pairData {
	if double {
		return []*pairData{p1, p3}
	}
	return []*pairData{p1}
}
