package staarch

import (
	"github.com/airbusgeo/imagefusion/interval"
	"github.com/airbusgeo/imagefusion/pixel"
)

// tasseledCapDI runs the tasseled-cap transform on img, returning (brightness,
// greenness, wetness) f32 planes plus DI = brightness-greenness-wetness.
func tasseledCapDI(img *pixel.Image, sensor Sensor, sourceChannels []int) (tc *pixel.Image, di *pixel.Image, err error) {
	tc, err = img.ConvertColor(sensor.mapping(), pixel.F32, sourceChannels...)
	if err != nil {
		return nil, nil, err
	}
	planes, err := tc.Split()
	if err != nil {
		return nil, nil, err
	}
	brightness, greenness, wetness := planes[0], planes[1], planes[2]
	bg, err := pixel.Subtract(brightness, greenness)
	if err != nil {
		return nil, nil, err
	}
	di, err = pixel.Subtract(bg, wetness)
	if err != nil {
		return nil, nil, err
	}
	return tc, di, nil
}

// standardizePerClass replaces each pixel of img with (v-mean_class)/sigma_class;
// sigma=0 maps to a divisor of 1. classID is a per-pixel cluster assignment (i32,
// same geometry as img); validMask gates which pixels participate (nil means every
// pixel).
func standardizePerClass(img *pixel.Image, classID *pixel.Image, numClasses int, validMask *pixel.Image) (*pixel.Image, error) {
	out, err := pixel.New(img.Width(), img.Height(), img.Channels(), img.DataType())
	if err != nil {
		return nil, err
	}
	for class := 0; class < numClasses; class++ {
		mask, err := classMask(classID, class, validMask)
		if err != nil {
			return nil, err
		}
		mean, std, err := img.MeanStdDev(mask, true)
		if err != nil {
			return nil, err
		}
		for y := 0; y < img.Height(); y++ {
			for x := 0; x < img.Width(); x++ {
				if mask.At(x, y, 0) == 0 {
					continue
				}
				for c := 0; c < img.Channels(); c++ {
					sigma := std[c]
					if sigma == 0 {
						sigma = 1
					}
					out.Set(x, y, c, (img.At(x, y, c)-mean[c])/sigma)
				}
			}
		}
	}
	return out, nil
}

// classMask builds a u8 mask selecting pixels assigned to class, gated by validMask.
func classMask(classID *pixel.Image, class int, validMask *pixel.Image) (*pixel.Image, error) {
	mask, err := pixel.New(classID.Width(), classID.Height(), 1, pixel.U8)
	if err != nil {
		return nil, err
	}
	for y := 0; y < classID.Height(); y++ {
		for x := 0; x < classID.Width(); x++ {
			if validMask != nil && validMask.At(x, y, 0) == 0 {
				continue
			}
			if int(classID.At(x, y, 0)) == class {
				mask.Set(x, y, 0, 1)
			}
		}
	}
	return mask, nil
}

// rangeMatch reports, per pixel, whether img's single channel falls within r.
func rangeMatch(img *pixel.Image, rg interval.Interval) [][]bool {
	out := make([][]bool, img.Height())
	for y := range out {
		out[y] = make([]bool, img.Width())
		for x := range out[y] {
			out[y][x] = rg.Contains(img.At(x, y, 0))
		}
	}
	return out
}

// connectedDisturbance scores a pixel as disturbed when its DI falls in diRange
// (contributing +10) and at least one 4- or 8-connected
// neighbor also falls in diRange (each contributing +1); the acceptance threshold is
// a score >10, i.e. at least one matching neighbor is required regardless of shape.
func connectedDisturbance(match [][]bool, shape NeighborShape) [][]bool {
	h := len(match)
	if h == 0 {
		return nil
	}
	w := len(match[0])
	offsets := shape.offsets()
	out := make([][]bool, h)
	for y := 0; y < h; y++ {
		out[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			if !match[y][x] {
				continue
			}
			score := 10
			for _, off := range offsets {
				ny, nx := y+off[1], x+off[0]
				if ny < 0 || ny >= h || nx < 0 || nx >= w {
					continue
				}
				if match[ny][nx] {
					score++
				}
			}
			out[y][x] = score > 10
		}
	}
	return out
}
