package pixel

import "github.com/airbusgeo/imagefusion/internal/ferr"

// Split decomposes img into one single-channel Image per requested channel index
// (or every channel, in order, when none are requested).
func (img *Image) Split(channels ...int) ([]*Image, error) {
	idxs := channels
	if len(idxs) == 0 {
		idxs = make([]int, img.channels)
		for i := range idxs {
			idxs[i] = i
		}
	}
	out := make([]*Image, len(idxs))
	for i, c := range idxs {
		if c < 0 || c >= img.channels {
			return nil, ferr.NewInvalidArgument("channel index %d out of range [0,%d)", c, img.channels)
		}
		single, _ := New(img.width, img.height, 1, img.dtype)
		for y := 0; y < img.height; y++ {
			for x := 0; x < img.width; x++ {
				single.Set(x, y, 0, img.At(x, y, c))
			}
		}
		out[i] = single
	}
	return out, nil
}

// Merge combines single-channel images of matching size and type into one
// multi-channel Image, in the order given.
func Merge(images []*Image) (*Image, error) {
	if len(images) == 0 {
		return nil, ferr.NewInvalidArgument("merge requires at least one image")
	}
	if len(images) > 4 {
		return nil, ferr.NewInvalidArgument("merge of %d channels exceeds the maximum of 4", len(images))
	}
	w, h, dt := images[0].width, images[0].height, images[0].dtype
	for _, im := range images {
		if im.channels != 1 {
			return nil, ferr.NewInvalidArgument("merge requires single-channel inputs, got %d channels", im.channels)
		}
		if im.width != w || im.height != h {
			return nil, ferr.NewSize("merge requires matching geometry")
		}
		if im.dtype != dt {
			return nil, ferr.NewImageType("merge requires matching type, got %s and %s", dt, im.dtype)
		}
	}
	out, _ := New(w, h, len(images), dt)
	for c, im := range images {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Set(x, y, c, im.At(x, y, 0))
			}
		}
	}
	return out, nil
}

// CopyValuesFrom copies src's samples into img wherever mask is non-zero (nil mask
// means every pixel). src and img must share geometry and base type.
func (img *Image) CopyValuesFrom(src *Image, mask *Image) error {
	if !img.SameGeometry(src) {
		return ferr.NewSize("copy_values_from requires matching geometry")
	}
	if !img.SameType(src) {
		return ferr.NewImageType("copy_values_from requires matching type, got %s and %s", img.dtype, src.dtype)
	}
	if err := img.checkMask(mask); err != nil {
		return err
	}
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			for c := 0; c < img.channels; c++ {
				if maskAllows(mask, x, y, c) {
					img.Set(x, y, c, src.At(x, y, c))
				}
			}
		}
	}
	return nil
}

// SetValue fills img with value (one entry per channel, broadcasting a single entry)
// wherever mask is non-zero (nil mask means every pixel).
func (img *Image) SetValue(value OneOrPerChannel[float64], mask *Image) error {
	if err := value.checkChannels(img.channels); err != nil {
		return err
	}
	if err := img.checkMask(mask); err != nil {
		return err
	}
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			for c := 0; c < img.channels; c++ {
				if maskAllows(mask, x, y, c) {
					img.Set(x, y, c, value.At(c))
				}
			}
		}
	}
	return nil
}
