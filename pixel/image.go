package pixel

import (
	"github.com/airbusgeo/imagefusion/internal/ferr"
)

// Rect is an integer rectangle in image pixel coordinates, X/Y being the top-left
// corner and W/H the width/height.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) empty() bool { return r.W <= 0 || r.H <= 0 }

// Empty reports whether r has non-positive width or height, the sentinel fusors use
// for "prediction_area omitted, default to the full image".
func (r Rect) Empty() bool { return r.empty() }

// Intersect returns the largest rect contained in both r and other. If they do not
// overlap, the result has zero width and height.
func (r Rect) Intersect(other Rect) Rect {
	x0, y0 := max(r.X, other.X), max(r.Y, other.Y)
	x1, y1 := min(r.X+r.W, other.X+other.W), min(r.Y+r.H, other.Y+other.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Dilate grows r by n pixels on every side.
func (r Rect) Dilate(n int) Rect {
	return Rect{X: r.X - n, Y: r.Y - n, W: r.W + 2*n, H: r.H + 2*n}
}

// Image is a dense 2-D buffer of pixels with a typed element: base type times
// channel count. A crop is a zero-copy view sharing storage with its parent; Clone
// always allocates independently. An empty image has zero width and height.
type Image struct {
	buf      *buffer
	dtype    DataType
	channels int
	width    int
	height   int
	x0, y0   int // offset of this view within buf's backing extent
	backW    int
	backH    int
}

// New allocates a fresh, zero-valued owning Image of the given size and type.
func New(width, height, channels int, dtype DataType) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, ferr.NewSize("negative image dimensions %dx%d", width, height)
	}
	if channels < 1 || channels > 4 {
		return nil, ferr.NewInvalidArgument("channel count %d outside [1,4]", channels)
	}
	return &Image{
		buf:      newBuffer(dtype, width*height*channels),
		dtype:    dtype,
		channels: channels,
		width:    width,
		height:   height,
		backW:    width,
		backH:    height,
	}, nil
}

// Width returns the image's width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image's height in pixels.
func (img *Image) Height() int { return img.height }

// Channels returns the image's channel count.
func (img *Image) Channels() int { return img.channels }

// DataType returns the image's base element type.
func (img *Image) DataType() DataType { return img.dtype }

// Empty reports whether the image has zero width or height.
func (img *Image) Empty() bool { return img.width == 0 || img.height == 0 }

// SameGeometry reports whether img and other share width, height and channel count.
func (img *Image) SameGeometry(other *Image) bool {
	return img.width == other.width && img.height == other.height && img.channels == other.channels
}

// SameType reports whether img and other share the same base type.
func (img *Image) SameType(other *Image) bool {
	return img.dtype == other.dtype
}

func (img *Image) idx(x, y, c int) int {
	return ((y+img.y0)*img.backW+(x+img.x0))*img.channels + c
}

// At returns the value at (x,y,channel) widened to float64.
func (img *Image) At(x, y, c int) float64 {
	return img.buf.getf(img.idx(x, y, c))
}

// Set writes v (saturating to the base type) at (x,y,channel).
func (img *Image) Set(x, y, c int, v float64) {
	img.buf.setf(img.idx(x, y, c), v)
}

// checkGeometry validates that a caller-supplied rect fits within the image.
func (img *Image) checkGeometry(r Rect) error {
	if r.W < 0 || r.H < 0 {
		return ferr.NewSize("negative rect %+v", r)
	}
	if r.X < 0 || r.Y < 0 || r.X+r.W > img.width || r.Y+r.H > img.height {
		return ferr.NewSize("rect %+v out of bounds for image %dx%d", r, img.width, img.height)
	}
	return nil
}

// Crop returns a non-owning view of img restricted to r. Mutations through the crop
// mutate the parent's storage; the crop itself holds no independent allocation.
func (img *Image) Crop(r Rect) (*Image, error) {
	if err := img.checkGeometry(r); err != nil {
		return nil, err
	}
	return &Image{
		buf:      img.buf,
		dtype:    img.dtype,
		channels: img.channels,
		width:    r.W,
		height:   r.H,
		x0:       img.x0 + r.X,
		y0:       img.y0 + r.Y,
		backW:    img.backW,
		backH:    img.backH,
	}, nil
}

// Uncrop returns a view over the full backing extent that img was cropped from,
// sharing the same storage.
func (img *Image) Uncrop() *Image {
	return &Image{
		buf:      img.buf,
		dtype:    img.dtype,
		channels: img.channels,
		width:    img.backW,
		height:   img.backH,
		backW:    img.backW,
		backH:    img.backH,
	}
}

// AdjustCropBorders grows (positive) or shrinks (negative) the current view on each
// side, bounded by the parent's full backing extent. A result with zero or negative
// size fails with a SizeError.
func (img *Image) AdjustCropBorders(top, bottom, left, right int) (*Image, error) {
	nx0 := img.x0 - left
	ny0 := img.y0 - top
	nw := img.width + left + right
	nh := img.height + top + bottom
	if nw <= 0 || nh <= 0 {
		return nil, ferr.NewSize("adjust_crop_borders produced non-positive size %dx%d", nw, nh)
	}
	if nx0 < 0 || ny0 < 0 || nx0+nw > img.backW || ny0+nh > img.backH {
		return nil, ferr.NewSize("adjust_crop_borders(%d,%d,%d,%d) exceeds parent extent", top, bottom, left, right)
	}
	return &Image{
		buf:      img.buf,
		dtype:    img.dtype,
		channels: img.channels,
		width:    nw,
		height:   nh,
		x0:       nx0,
		y0:       ny0,
		backW:    img.backW,
		backH:    img.backH,
	}, nil
}

// Clone allocates an independent copy of the full image.
func (img *Image) Clone() *Image {
	out, _ := New(img.width, img.height, img.channels, img.dtype)
	copyRect(out, 0, 0, img, 0, 0, img.width, img.height)
	return out
}

// CloneRect allocates an independent copy of the sub-rectangle r of img. r extending
// past img's extent fails with a SizeError.
func (img *Image) CloneRect(r Rect) (*Image, error) {
	if err := img.checkGeometry(r); err != nil {
		return nil, err
	}
	out, _ := New(r.W, r.H, img.channels, img.dtype)
	copyRect(out, 0, 0, img, r.X, r.Y, r.W, r.H)
	return out, nil
}

// CloneAt allocates an independent copy of a size-shaped window whose top-left
// corner is at (topLeftX, topLeftY) in img's coordinate space. When both offsets are
// integral, this is equivalent to CloneRect; otherwise it bilinearly interpolates.
func (img *Image) CloneAt(topLeftX, topLeftY float64, width, height int) (*Image, error) {
	ix, iy := int(topLeftX), int(topLeftY)
	fx, fy := topLeftX-float64(ix), topLeftY-float64(iy)
	if fx == 0 && fy == 0 {
		return img.CloneRect(Rect{X: ix, Y: iy, W: width, H: height})
	}
	if ix < 0 || iy < 0 || ix+width+1 > img.width || iy+height+1 > img.height {
		return nil, ferr.NewSize("bilinear clone window out of bounds")
	}
	out, _ := New(width, height, img.channels, img.dtype)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < img.channels; c++ {
				v00 := img.At(ix+x, iy+y, c)
				v10 := img.At(ix+x+1, iy+y, c)
				v01 := img.At(ix+x, iy+y+1, c)
				v11 := img.At(ix+x+1, iy+y+1, c)
				v0 := v00*(1-fx) + v10*fx
				v1 := v01*(1-fx) + v11*fx
				out.Set(x, y, c, v0*(1-fy)+v1*fy)
			}
		}
	}
	return out, nil
}

// copyRect copies a srcW x srcH block from src at (srcX,srcY) into dst at (dstX,dstY),
// across every channel, widening through float64 and saturating on write — this is a
// no-op precision-wise whenever src and dst share a base type.
func copyRect(dst *Image, dstX, dstY int, src *Image, srcX, srcY, w, h int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < src.channels; c++ {
				dst.Set(dstX+x, dstY+y, c, src.At(srcX+x, srcY+y, c))
			}
		}
	}
}

// ConvertTo returns a new Image with every sample cast (saturating) to dtype.
func (img *Image) ConvertTo(dtype DataType) *Image {
	out, _ := New(img.width, img.height, img.channels, dtype)
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			for c := 0; c < img.channels; c++ {
				out.Set(x, y, c, img.At(x, y, c))
			}
		}
	}
	return out
}
