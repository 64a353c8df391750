package dispatch

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/wb-go/wbf/zlog"

	// Formats the general-purpose stage can sniff.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUndecodable is returned when every decoder in the chain failed.
var ErrUndecodable = errors.New("image not decodable by any decoder")

// Decoder decodes image bytes into interleaved 8-bit RGBA with opaque alpha.
type Decoder interface {
	Name() string
	Decode(data []byte) (*image.RGBA, error)
}

// Chain tries decoders in order until one succeeds.
type Chain []Decoder

// DefaultChain is the photo decode strategy: the baseline JPEG decoder first
// (the companion device sends JPEG in the common case), then the
// general-purpose decoder covering the other registered formats.
func DefaultChain() Chain {
	return Chain{jpegDecoder{}, imageDecoder{}}
}

// Decode runs the chain and returns the pixels plus the name of the decoder
// that produced them.
func (c Chain) Decode(data []byte) (*image.RGBA, string, error) {
	for i, dec := range c {
		img, err := dec.Decode(data)
		if err == nil {
			return img, dec.Name(), nil
		}

		if i < len(c)-1 {
			zlog.Logger.Warn().Err(err).
				Str("decoder", dec.Name()).
				Msg("decode failed, falling back")
		}
	}

	return nil, "", ErrUndecodable
}

// jpegDecoder handles baseline JPEG only.
type jpegDecoder struct{}

func (jpegDecoder) Name() string { return "jpeg" }

func (jpegDecoder) Decode(data []byte) (*image.RGBA, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("jpeg decode: %w", err)
	}
	return toRGBA(img), nil
}

// imageDecoder sniffs the format and decodes any registered image type.
type imageDecoder struct{}

func (imageDecoder) Name() string { return "image" }

func (imageDecoder) Decode(data []byte) (*image.RGBA, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode: %w", err)
	}

	zlog.Logger.Debug().Str("format", format).Msg("decoded by fallback decoder")
	return toRGBA(img), nil
}

// toRGBA normalizes any decoded image to the fixed pixel layout the clipboard
// expects: interleaved RGBA, 8 bits per channel. Sources without an alpha
// channel come out fully opaque.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
