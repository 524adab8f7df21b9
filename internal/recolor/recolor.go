package recolor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"flipquiz/internal/dataurl"

	xdraw "golang.org/x/image/draw"
)

const DefaultThreshold = 100

var (
	CorrectBackground   = color.NRGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff}
	IncorrectBackground = color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}
	ink                 = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

type Options struct {
	// Threshold is exclusive: a channel equal to it is not ink.
	Threshold uint8
}

func (o Options) threshold() uint8 {
	if o.Threshold == 0 {
		return DefaultThreshold
	}
	return o.Threshold
}

// Render paints a width x height card in the correctness color and draws the
// ink of src on it in white. src is scaled to the card first; fully
// transparent pixels count as paper.
func Render(src image.Image, correct bool, width, height int, opts Options) (*image.NRGBA, error) {
	if src == nil {
		return nil, errors.New("source image is nil")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("target dimensions must be positive")
	}
	bounds := image.Rect(0, 0, width, height)

	scaled := image.NewNRGBA(bounds)
	if src.Bounds().Size() == bounds.Size() {
		xdraw.Draw(scaled, bounds, src, src.Bounds().Min, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(scaled, bounds, src, src.Bounds(), xdraw.Src, nil)
	}

	overlay := Mask(scaled, opts)

	background := IncorrectBackground
	if correct {
		background = CorrectBackground
	}
	card := image.NewNRGBA(bounds)
	xdraw.Draw(card, bounds, image.NewUniform(background), image.Point{}, xdraw.Src)
	xdraw.Draw(card, bounds, overlay, image.Point{}, xdraw.Over)
	return card, nil
}

// Mask classifies every pixel of img: ink (all of R, G, B under the
// threshold, alpha ignored unless zero) becomes opaque white, everything
// else fully transparent.
func Mask(img image.Image, opts Options) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	limit := opts.threshold()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A > 0 && c.R < limit && c.G < limit && c.B < limit {
				out.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, ink)
			}
		}
	}
	return out
}

// RenderDataURL decodes an encoded drawing, renders its card and returns it
// as a PNG data URL.
func RenderDataURL(data string, correct bool, width, height int, opts Options) (string, error) {
	encoded, err := RenderPNG(data, correct, width, height, opts)
	if err != nil {
		return "", err
	}
	return dataurl.EncodePNG(encoded), nil
}

func RenderPNG(data string, correct bool, width, height int, opts Options) ([]byte, error) {
	raw, _, err := dataurl.Decode(data)
	if err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	card, err := Render(src, correct, width, height, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, card); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
