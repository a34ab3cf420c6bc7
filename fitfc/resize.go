package fitfc

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// grayResidual adapts a per-channel f64 residual plane to image.Image/draw.Image so
// golang.org/x/image/draw's Catmull-Rom kernel (its bicubic convolution) can perform
// the bicubic upsample of the residual plane back to high resolution. Values are
// affinely mapped into the 16-bit range the draw package's internal color.RGBA64
// pipeline operates in and mapped back on read; resolution_factor=1 never touches
// this file.
type grayResidual struct {
	w, h         int
	data         []float64
	lo, hi       float64 // affine mapping bounds; hi>lo
}

func newGrayResidual(w, h int, data []float64, lo, hi float64) *grayResidual {
	if hi <= lo {
		hi = lo + 1
	}
	return &grayResidual{w: w, h: h, data: data, lo: lo, hi: hi}
}

func (g *grayResidual) ColorModel() color.Model { return color.Gray16Model }
func (g *grayResidual) Bounds() image.Rectangle { return image.Rect(0, 0, g.w, g.h) }

func (g *grayResidual) encode(v float64) uint16 {
	t := (v - g.lo) / (g.hi - g.lo)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return uint16(t * 65535)
}

func (g *grayResidual) decode(y uint16) float64 {
	return g.lo + (g.hi-g.lo)*float64(y)/65535
}

func (g *grayResidual) At(x, y int) color.Color {
	return color.Gray16{Y: g.encode(g.data[y*g.w+x])}
}

func (g *grayResidual) Set(x, y int, c color.Color) {
	gr := color.Gray16Model.Convert(c).(color.Gray16)
	g.data[y*g.w+x] = g.decode(gr.Y)
}

// areaAverageDownscale downscales a w*h plane by an integer factor using box-filter
// averaging.
func areaAverageDownscale(w, h int, data []float64, factor int) (dw, dh int, out []float64) {
	dw, dh = w/factor, h/factor
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	out = make([]float64, dw*dh)
	for dy := 0; dy < dh; dy++ {
		for dx := 0; dx < dw; dx++ {
			var sum float64
			var n int
			for sy := dy * factor; sy < min(h, (dy+1)*factor); sy++ {
				for sx := dx * factor; sx < min(w, (dx+1)*factor); sx++ {
					sum += data[sy*w+sx]
					n++
				}
			}
			if n > 0 {
				out[dy*dw+dx] = sum / float64(n)
			}
		}
	}
	return dw, dh, out
}

// bicubicUpscale upsamples a dw*dh plane back to w*h with Catmull-Rom interpolation.
func bicubicUpscale(dw, dh int, down []float64, w, h int, lo, hi float64) []float64 {
	src := newGrayResidual(dw, dh, down, lo, hi)
	out := make([]float64, w*h)
	dst := newGrayResidual(w, h, out, lo, hi)
	draw.CatmullRom.Scale(dst, image.Rect(0, 0, w, h), src, src.Bounds(), draw.Over, nil)
	return out
}
