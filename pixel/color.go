package pixel

import (
	"math"

	"github.com/airbusgeo/imagefusion/internal/ferr"
	"gonum.org/v1/gonum/mat"
)

// ColorMapping selects one of the fixed color-space or spectral-index conversions
// implemented by ConvertColor. Every mapping with a published coefficient matrix
// (YCbCr, XYZ, the linear leg of Lab/Luv, and both tasseled-cap transforms) is
// applied per-pixel as a gonum mat.Dense multiply.
type ColorMapping int

const (
	// RGBToGray applies Rec. 601 luma weighting; output is 1 channel.
	RGBToGray ColorMapping = iota
	// GrayToRGB replicates a 1-channel input to 3 channels.
	GrayToRGB
	// RGBToYCbCr converts 3-channel RGB to YCbCr (ITU-R BT.601).
	RGBToYCbCr
	// YCbCrToRGB is the inverse of RGBToYCbCr.
	YCbCrToRGB
	// RGBToXYZ converts sRGB (D65) to CIE XYZ.
	RGBToXYZ
	// XYZToRGB is the inverse of RGBToXYZ.
	XYZToRGB
	// RGBToLab converts sRGB to CIE L*a*b* via XYZ.
	RGBToLab
	// LabToRGB is the inverse of RGBToLab.
	LabToRGB
	// RGBToLuv converts sRGB to CIE L*u*v* via XYZ.
	RGBToLuv
	// LuvToRGB is the inverse of RGBToLuv.
	LuvToRGB
	// RGBToHSV converts sRGB to Hue/Saturation/Value.
	RGBToHSV
	// HSVToRGB is the inverse of RGBToHSV.
	HSVToRGB
	// RGBToHLS converts sRGB to Hue/Lightness/Saturation.
	RGBToHLS
	// HLSToRGB is the inverse of RGBToHLS.
	HLSToRGB
	// NDI computes a normalized difference index from a 2-channel (Pos,Neg) input.
	NDI
	// BU computes the build-up index from a 3-channel (Red,NIR,SWIR) input.
	BU
	// LandsatTasseledCap converts a 6-band Landsat reflectance image to
	// (brightness, greenness, wetness).
	LandsatTasseledCap
	// MODISTasseledCap converts a 7-band MODIS reflectance image to
	// (brightness, greenness, wetness).
	MODISTasseledCap
)

// sRGB D65 <-> XYZ, Rec. 601 RGB<->YCbCr and the two published tasseled-cap
// coefficient matrices, row-major, applied as out = M * in.
var (
	rgbToXYZCoeffs = []float64{
		0.4124564, 0.3575761, 0.1804375,
		0.2126729, 0.7151522, 0.0721750,
		0.0193339, 0.1191920, 0.9503041,
	}
	xyzToRGBCoeffs = []float64{
		3.2404542, -1.5371385, -0.4985314,
		-0.9692660, 1.8760108, 0.0415560,
		0.0556434, -0.2040259, 1.0572252,
	}
	rgbToYCbCrCoeffs = []float64{
		0.299, 0.587, 0.114,
		-0.168736, -0.331264, 0.5,
		0.5, -0.418688, -0.081312,
	}
	yCbCrToRGBCoeffs = []float64{
		1, 0, 1.402,
		1, -0.344136, -0.714136,
		1, 1.772, 0,
	}
	// Crist (1985) TM-reflectance tasseled cap coefficients (brightness, greenness,
	// wetness), over 6 Landsat TM/ETM+ bands (1,2,3,4,5,7) in reflectance units.
	// Source scaling assumption documented in DESIGN.md.
	landsatTasseledCapCoeffs = []float64{
		0.3037, 0.2793, 0.4743, 0.5585, 0.5082, 0.1863,
		-0.2848, -0.2435, -0.5436, 0.7243, 0.0840, -0.1800,
		0.1509, 0.1973, 0.3279, 0.3406, -0.7112, -0.4572,
	}
	// Lobser & Cohen (2007) MODIS nadir-BRDF-adjusted reflectance tasseled cap
	// coefficients, over 7 MODIS bands.
	modisTasseledCapCoeffs = []float64{
		0.4395, 0.5945, 0.2460, 0.3918, 0.3506, 0.2136, 0.2678,
		-0.4064, 0.5129, -0.2744, -0.2893, 0.4882, -0.0036, -0.4169,
		0.1147, 0.2489, 0.2408, 0.3132, -0.3122, -0.6416, -0.5087,
	}
)

func mapMatrix(coeffs []float64, rows, cols int, in []float64) []float64 {
	m := mat.NewDense(rows, cols, coeffs)
	v := mat.NewVecDense(cols, in)
	var out mat.VecDense
	out.MulVec(m, v)
	res := make([]float64, rows)
	for i := range res {
		res[i] = out.AtVec(i)
	}
	return res
}

func channelCount(mapping ColorMapping, explicit int) (in, out int) {
	switch mapping {
	case RGBToGray:
		return 3, 1
	case GrayToRGB:
		return 1, 3
	case RGBToYCbCr, YCbCrToRGB, RGBToXYZ, XYZToRGB, RGBToLab, LabToRGB, RGBToLuv, LuvToRGB, RGBToHSV, HSVToRGB, RGBToHLS, HLSToRGB:
		return 3, 3
	case NDI:
		return 2, 1
	case BU:
		return 3, 1
	case LandsatTasseledCap:
		return 6, 3
	case MODISTasseledCap:
		return 7, 3
	default:
		if explicit > 0 {
			return explicit, explicit
		}
		return 0, 0
	}
}

// ConvertColor applies mapping to every pixel of img, producing an image of
// resultType. sourceChannels optionally overrides the expected source channel order
// (e.g. supplying the index of Red/NIR/SWIR within a wider stack); when omitted the
// mapping's natural channel order (0..n-1) is used.
func (img *Image) ConvertColor(mapping ColorMapping, resultType DataType, sourceChannels ...int) (*Image, error) {
	wantIn, wantOut := channelCount(mapping, img.channels)
	if wantIn == 0 {
		return nil, ferr.NewInvalidArgument("unsupported color mapping %d", mapping)
	}
	if len(sourceChannels) == 0 {
		sourceChannels = make([]int, wantIn)
		for i := range sourceChannels {
			sourceChannels[i] = i
		}
	}
	if len(sourceChannels) != wantIn {
		return nil, ferr.NewInvalidArgument("mapping requires %d source channels, got %d", wantIn, len(sourceChannels))
	}
	for _, c := range sourceChannels {
		if c < 0 || c >= img.channels {
			return nil, ferr.NewInvalidArgument("source channel %d out of range [0,%d)", c, img.channels)
		}
	}
	out, _ := New(img.width, img.height, wantOut, resultType)
	signed := resultType == I8 || resultType == I16 || resultType == I32 || resultType == F32 || resultType == F64
	in := make([]float64, wantIn)
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			for i, c := range sourceChannels {
				in[i] = img.At(x, y, c)
			}
			res, err := convertPixel(mapping, in, signed)
			if err != nil {
				return nil, err
			}
			for c, v := range res {
				out.Set(x, y, c, v)
			}
		}
	}
	return out, nil
}

func convertPixel(mapping ColorMapping, in []float64, signedOut bool) ([]float64, error) {
	switch mapping {
	case RGBToGray:
		return []float64{0.299*in[0] + 0.587*in[1] + 0.114*in[2]}, nil
	case GrayToRGB:
		return []float64{in[0], in[0], in[0]}, nil
	case RGBToYCbCr:
		return mapMatrix(rgbToYCbCrCoeffs, 3, 3, in), nil
	case YCbCrToRGB:
		return mapMatrix(yCbCrToRGBCoeffs, 3, 3, in), nil
	case RGBToXYZ:
		return mapMatrix(rgbToXYZCoeffs, 3, 3, in), nil
	case XYZToRGB:
		return mapMatrix(xyzToRGBCoeffs, 3, 3, in), nil
	case RGBToLab:
		xyz := mapMatrix(rgbToXYZCoeffs, 3, 3, in)
		return xyzToLab(xyz), nil
	case LabToRGB:
		xyz := labToXYZ(in)
		return mapMatrix(xyzToRGBCoeffs, 3, 3, xyz), nil
	case RGBToLuv:
		xyz := mapMatrix(rgbToXYZCoeffs, 3, 3, in)
		return xyzToLuv(xyz), nil
	case LuvToRGB:
		xyz := luvToXYZ(in)
		return mapMatrix(xyzToRGBCoeffs, 3, 3, xyz), nil
	case RGBToHSV:
		return rgbToHSV(in), nil
	case HSVToRGB:
		return hsvToRGB(in), nil
	case RGBToHLS:
		return rgbToHLS(in), nil
	case HLSToRGB:
		return hlsToRGB(in), nil
	case NDI:
		return []float64{centered(in[0], in[1], signedOut)}, nil
	case BU:
		red, nir, swir := in[0], in[1], in[2]
		swirNDI := centered(swir, nir, true)
		redNDI := centered(nir, red, true)
		v := swirNDI - redNDI
		if !signedOut {
			v = (v + 2) / 4 // BU ranges -2..2; rescale to 0..1 for unsigned output
		}
		return []float64{v}, nil
	case LandsatTasseledCap:
		return mapMatrix(landsatTasseledCapCoeffs, 3, 6, in), nil
	case MODISTasseledCap:
		return mapMatrix(modisTasseledCapCoeffs, 3, 7, in), nil
	default:
		return nil, ferr.NewInvalidArgument("unsupported color mapping %d", mapping)
	}
}

// centered computes (pos-neg)/(pos+neg), scaled to [0,1] for unsigned output types
// or left in [-1,1] for signed ones.
func centered(pos, neg float64, signedOut bool) float64 {
	denom := pos + neg
	var v float64
	if denom == 0 {
		v = 0
	} else {
		v = (pos - neg) / denom
	}
	if !signedOut {
		v = (v + 1) / 2
	}
	return v
}

const labEpsilon = 216.0 / 24389.0
const labKappa = 24389.0 / 27.0

// D65 reference white.
const (
	whiteX = 0.95047
	whiteY = 1.0
	whiteZ = 1.08883
)

func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return (labKappa*t + 16) / 116
}

func labFInv(t float64) float64 {
	if t*t*t > labEpsilon {
		return t * t * t
	}
	return (116*t - 16) / labKappa
}

func xyzToLab(xyz []float64) []float64 {
	fx := labF(xyz[0] / whiteX)
	fy := labF(xyz[1] / whiteY)
	fz := labF(xyz[2] / whiteZ)
	l := 116*fy - 16
	a := 500 * (fx - fy)
	b := 200 * (fy - fz)
	return []float64{l, a, b}
}

func labToXYZ(lab []float64) []float64 {
	l, a, b := lab[0], lab[1], lab[2]
	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200
	return []float64{labFInv(fx) * whiteX, labFInv(fy) * whiteY, labFInv(fz) * whiteZ}
}

func uvPrime(x, y, z float64) (u, v float64) {
	denom := x + 15*y + 3*z
	if denom == 0 {
		return 0, 0
	}
	return 4 * x / denom, 9 * y / denom
}

func xyzToLuv(xyz []float64) []float64 {
	un, vn := uvPrime(whiteX, whiteY, whiteZ)
	yr := xyz[1] / whiteY
	var l float64
	if yr > labEpsilon {
		l = 116*math.Cbrt(yr) - 16
	} else {
		l = labKappa * yr
	}
	u, v := uvPrime(xyz[0], xyz[1], xyz[2])
	return []float64{l, 13 * l * (u - un), 13 * l * (v - vn)}
}

func luvToXYZ(luv []float64) []float64 {
	l, u, v := luv[0], luv[1], luv[2]
	if l == 0 {
		return []float64{0, 0, 0}
	}
	un, vn := uvPrime(whiteX, whiteY, whiteZ)
	up := u/(13*l) + un
	vp := v/(13*l) + vn
	var y float64
	if l > labKappa*labEpsilon {
		y = math.Pow((l+16)/116, 3)
	} else {
		y = l / labKappa
	}
	y *= whiteY
	x := y * 9 * up / (4 * vp)
	z := y * (12 - 3*up - 20*vp) / (4 * vp)
	return []float64{x, y, z}
}

func rgbToHSV(rgb []float64) []float64 {
	r, g, b := rgb[0], rgb[1], rgb[2]
	maxv := math.Max(r, math.Max(g, b))
	minv := math.Min(r, math.Min(g, b))
	delta := maxv - minv
	var h float64
	switch {
	case delta == 0:
		h = 0
	case maxv == r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case maxv == g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	var s float64
	if maxv != 0 {
		s = delta / maxv
	}
	return []float64{h, s, maxv}
}

func hsvToRGB(hsv []float64) []float64 {
	h, s, v := hsv[0], hsv[1], hsv[2]
	c := v * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := v - c
	return []float64{r + m, g + m, b + m}
}

func rgbToHLS(rgb []float64) []float64 {
	r, g, b := rgb[0], rgb[1], rgb[2]
	maxv := math.Max(r, math.Max(g, b))
	minv := math.Min(r, math.Min(g, b))
	l := (maxv + minv) / 2
	delta := maxv - minv
	var h, s float64
	if delta != 0 {
		if l <= 0.5 {
			s = delta / (maxv + minv)
		} else {
			s = delta / (2 - maxv - minv)
		}
		switch {
		case maxv == r:
			h = 60 * math.Mod((g-b)/delta, 6)
		case maxv == g:
			h = 60 * ((b-r)/delta + 2)
		default:
			h = 60 * ((r-g)/delta + 4)
		}
		if h < 0 {
			h += 360
		}
	}
	return []float64{h, l, s}
}

func hueToRGBComponent(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func hlsToRGB(hls []float64) []float64 {
	h, l, s := hls[0]/360, hls[1], hls[2]
	if s == 0 {
		return []float64{l, l, l}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	r := hueToRGBComponent(p, q, h+1.0/3)
	g := hueToRGBComponent(p, q, h)
	b := hueToRGBComponent(p, q, h-1.0/3)
	return []float64{r, g, b}
}
