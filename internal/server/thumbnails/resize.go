package thumbnails

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 85

// errTooLarge rejects images whose header declares more than the allowed
// number of pixels, before any pixel buffer is allocated.
var errTooLarge = errors.New("image too large")

// decode returns the image and the name of its format ("png", "jpeg", ...).
// maxPixels <= 0 disables the size check.
func decode(data []byte, maxPixels int64) (image.Image, string, error) {
	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decode error: %w", err)
		}
		if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
			return nil, "", fmt.Errorf("%w: %dx%d", errTooLarge, cfg.Width, cfg.Height)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode error: %w", err)
	}
	return img, format, nil
}

// resize scales src to width keeping the aspect ratio.
func resize(src image.Image, width int) image.Image {
	b := src.Bounds()
	height := 1
	if b.Dx() > 0 {
		height = (b.Dy()*width + b.Dx()/2) / b.Dx()
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// encode writes JPEG sources back as JPEG and everything else as PNG.
func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	var err error
	if format == "jpeg" {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode error: %w", err)
	}

	return buf.Bytes(), nil
}
