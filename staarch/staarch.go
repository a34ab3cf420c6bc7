// Package staarch implements the change-detection driver described at the top of
// options.go: it derives a per-pixel date-of-disturbance map from a high-res pair
// bracketing the interval plus a low-res time series spanning it, then predicts each
// output pixel with the STARFM pairing appropriate to which side of its own
// disturbance date the target date falls on.
package staarch

import (
	"context"

	"github.com/airbusgeo/imagefusion/internal/ferr"
	"github.com/airbusgeo/imagefusion/multires"
	"github.com/airbusgeo/imagefusion/pixel"
	"github.com/airbusgeo/imagefusion/starfm"
)

// Driver is a STAARCH predictor bound to a MultiResImage and a validated Options
// record.
type Driver struct {
	images    *multires.Container
	opts      Options
	processed bool
}

// New binds opts to images. Call ProcessOptions before Predict.
func New(images *multires.Container, opts Options) *Driver {
	return &Driver{images: images, opts: opts}
}

// ProcessOptions validates the bound options record.
func (d *Driver) ProcessOptions() error {
	if d.images == nil {
		return ferr.NewLogic("staarch: driver constructed without a MultiResImage")
	}
	if err := d.opts.ProcessOptions(); err != nil {
		return err
	}
	d.processed = true
	return nil
}

func lowMask(images *multires.Container, tag string, date int64) *pixel.Image {
	if tag == "" {
		return nil
	}
	m, err := images.Get(tag, date)
	if err != nil {
		return nil
	}
	return m
}

// buildChangeMask computes the high-res change mask: tasseled-cap DI at
// both bracketing dates, per-land-class standardization, 4-/8-connected disturbance
// scoring on each side, and NDVI/brightness/greenness/wetness gating. Gating reads
// the right-date (post-interval) high-res image, an explicit design choice recorded
// in DESIGN.md: the spectral state at date_right is the one a human analyst would
// trust to say whether the class of land cover at a pixel is physically capable of
// being "disturbed vegetation" at all.
func (d *Driver) buildChangeMask(hLeft, hRight *pixel.Image) ([][]bool, error) {
	o := d.opts

	tcLeft, diLeft, err := tasseledCapDI(hLeft, o.HighResSensor, o.HighSourceChannels)
	if err != nil {
		return nil, err
	}
	tcRight, diRight, err := tasseledCapDI(hRight, o.HighResSensor, o.HighSourceChannels)
	if err != nil {
		return nil, err
	}

	classID := o.ClusterImage
	if classID == nil {
		classID, err = d.clusterClasses(tcRight)
		if err != nil {
			return nil, err
		}
	}

	stdLeft, err := standardizePerClass(diLeft, classID, o.NumberLandClasses, nil)
	if err != nil {
		return nil, err
	}
	stdRight, err := standardizePerClass(diRight, classID, o.NumberLandClasses, nil)
	if err != nil {
		return nil, err
	}

	disturbedLeft := connectedDisturbance(rangeMatch(stdLeft, o.HighResDIRange), o.NeighborShape)
	disturbedRight := connectedDisturbance(rangeMatch(stdRight, o.HighResDIRange), o.NeighborShape)

	red, nir := o.highRedNIR()
	ndvi, err := hRight.ConvertColor(pixel.NDI, pixel.F32, nir, red) // NDI(Pos,Neg) = (nir-red)/(nir+red)
	if err != nil {
		return nil, err
	}
	ndviMatch := rangeMatch(ndvi, o.NDVIRange)
	brightnessMatch := rangeMatch(sliceChannel(tcRight, 0), o.BrightnessRange)
	greenessMatch := rangeMatch(sliceChannel(tcRight, 1), o.GreenessRange)
	wetnessMatch := rangeMatch(sliceChannel(tcRight, 2), o.WetnessRange)

	h, w := hRight.Height(), hRight.Width()
	mask := make([][]bool, h)
	for y := 0; y < h; y++ {
		mask[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			mask[y][x] = !disturbedLeft[y][x] && disturbedRight[y][x] &&
				ndviMatch[y][x] && brightnessMatch[y][x] && greenessMatch[y][x] && wetnessMatch[y][x]
		}
	}
	return mask, nil
}

func sliceChannel(img *pixel.Image, c int) *pixel.Image {
	planes, err := img.Split(c)
	if err != nil {
		return img
	}
	return planes[0]
}

// clusterClasses runs k-means over tc's per-pixel (brightness,greenness,wetness)
// vectors and rasterizes the assignment back into an i32 classID image.
func (d *Driver) clusterClasses(tc *pixel.Image) (*pixel.Image, error) {
	w, h := tc.Width(), tc.Height()
	samples := make([][]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			samples = append(samples, []float64{tc.At(x, y, 0), tc.At(x, y, 1), tc.At(x, y, 2)})
		}
	}
	assignments, _ := kmeans(samples, d.opts.NumberLandClasses, 100, 3)
	classID, err := pixel.New(w, h, 1, pixel.I32)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			classID.Set(x, y, 0, float64(assignments[y*w+x]))
		}
	}
	return classID, nil
}

// computeDoD computes the date-of-disturbance map: standardized DI for every available
// low-res image in [DateLeft,DateRight], moving-averaged over time, thresholded
// per-pixel at min+(max-min)*LowResDIRatio, with the first exceeding date assigned.
func (d *Driver) computeDoD(changeMask [][]bool) ([][]int32, error) {
	o := d.opts
	var dates []int64
	for _, date := range d.images.Dates(o.LowTag) {
		if date >= o.DateLeft && date <= o.DateRight {
			dates = append(dates, date)
		}
	}
	if len(dates) == 0 {
		return nil, ferr.NewNotFound("staarch: no low-res images in [%d,%d]", o.DateLeft, o.DateRight)
	}

	dis := make([]*pixel.Image, len(dates))
	for i, date := range dates {
		img, err := d.images.Get(o.LowTag, date)
		if err != nil {
			return nil, err
		}
		_, di, err := tasseledCapDI(img, o.LowResSensor, o.LowSourceChannels)
		if err != nil {
			return nil, err
		}
		std, err := standardizeGlobal(di, lowMask(d.images, o.LowMaskTag, date))
		if err != nil {
			return nil, err
		}
		dis[i] = std
	}

	avg := movingAverage(dis, o.NumberImagesForAveraging, o.DIMovingAverageWindow)
	return assignDoD(avg, dates, changeMask, o.LowResDIRatio), nil
}

// Predict implements fusor.Fusor: it derives the change mask and DoD map from the
// bound container's images at date_left/date_right and the low-res series between
// them, then predicts every output pixel with whichever STARFM pairing matches the
// side of its own disturbance date targetDate falls on.
func (d *Driver) Predict(ctx context.Context, targetDate int64, mask, predictMask *pixel.Image) (*pixel.Image, error) {
	if !d.processed {
		return nil, ferr.NewLogic("staarch: Predict called before a successful ProcessOptions")
	}
	o := d.opts

	hLeft, err := d.images.Get(o.HighTag, o.DateLeft)
	if err != nil {
		return nil, err
	}
	hRight, err := d.images.Get(o.HighTag, o.DateRight)
	if err != nil {
		return nil, err
	}
	if !hLeft.SameGeometry(hRight) {
		return nil, ferr.NewSize("staarch: high-res images at date_left/date_right must share geometry")
	}

	changeMask, err := d.buildChangeMask(hLeft, hRight)
	if err != nil {
		return nil, err
	}
	dod, err := d.computeDoD(changeMask)
	if err != nil {
		return nil, err
	}

	w, h := hLeft.Width(), hLeft.Height()
	neverMask, err := pixel.New(w, h, 1, pixel.U8)
	if err != nil {
		return nil, err
	}
	leftMask, err := pixel.New(w, h, 1, pixel.U8)
	if err != nil {
		return nil, err
	}
	rightMask, err := pixel.New(w, h, 1, pixel.U8)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if predictMask != nil && predictMask.At(x, y, 0) == 0 {
				continue
			}
			switch {
			case dod[y][x] == DoDSentinel:
				neverMask.Set(x, y, 0, 1)
			case targetDate < int64(dod[y][x]):
				leftMask.Set(x, y, 0, 1)
			default:
				rightMask.Set(x, y, 0, 1)
			}
		}
	}

	out, err := pixel.New(w, h, hLeft.Channels(), hLeft.DataType())
	if err != nil {
		return nil, err
	}

	type part struct {
		opts starfm.Options
		m    *pixel.Image
	}
	dateRight := o.DateRight
	parts := []part{
		{opts: d.sideOptions(&o.DateLeft, &dateRight), m: neverMask},
		{opts: d.sideOptions(&o.DateLeft, nil), m: leftMask},
		{opts: d.sideOptions(&o.DateRight, nil), m: rightMask},
	}
	for _, p := range parts {
		fz := starfm.New(d.images, p.opts)
		if err := fz.ProcessOptions(); err != nil {
			return nil, err
		}
		predicted, err := fz.Predict(ctx, targetDate, mask, p.m)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if p.m.At(x, y, 0) == 0 {
					continue
				}
				for c := 0; c < out.Channels(); c++ {
					out.Set(x, y, c, predicted.At(x, y, c))
				}
			}
		}
	}
	return out, nil
}

func (d *Driver) sideOptions(date1 *int64, date3 *int64) starfm.Options {
	so := d.opts.STARFM
	so.HighTag, so.LowTag = d.opts.HighTag, d.opts.LowTag
	so.Date1 = *date1
	so.Date3 = date3
	return so
}
