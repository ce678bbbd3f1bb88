package savestate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/user-none/gamebridge/host"
)

// Thumbnail bounds.
const (
	ThumbnailWidth  = 320
	ThumbnailHeight = 240
)

// FrameToImage converts a raw video frame to an RGBA image. Rows are
// tightly packed.
func FrameToImage(data []byte, width, height int, format host.PixelFormat) (*image.RGBA, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("unsupported pixel format %s", format)
	}
	if width <= 0 || height <= 0 || len(data) < width*height*bpp {
		return nil, fmt.Errorf("frame of %d bytes too small for %dx%d %s", len(data), width, height, format)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * bpp
			var c color.RGBA
			switch format {
			case host.PixelFormatXRGB8888:
				v := binary.NativeEndian.Uint32(data[off:])
				c = color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
			case host.PixelFormatRGB565:
				v := binary.NativeEndian.Uint16(data[off:])
				c = color.RGBA{R: expand5(v >> 11), G: expand6(v >> 5), B: expand5(v), A: 0xFF}
			case host.PixelFormatRGB555:
				v := binary.NativeEndian.Uint16(data[off:])
				c = color.RGBA{R: expand5(v >> 10), G: expand5(v >> 5), B: expand5(v), A: 0xFF}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

func expand5(v uint16) uint8 {
	v &= 0x1F
	return uint8(v<<3 | v>>2)
}

func expand6(v uint16) uint8 {
	v &= 0x3F
	return uint8(v<<2 | v>>4)
}

// Thumbnail scales src to fit within maxW x maxH keeping its aspect ratio.
// Images already within bounds are returned at their own size.
func Thumbnail(src image.Image, maxW, maxH int) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h), 1)
	dw := max(1, int(math.Round(float64(w)*scale)))
	dh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
