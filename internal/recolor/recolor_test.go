package recolor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"flipquiz/internal/dataurl"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestMaskThreshold(t *testing.T) {
	cases := []struct {
		name  string
		in    color.NRGBA
		white bool
	}{
		{"black", color.NRGBA{0, 0, 0, 255}, true},
		{"dark blue", color.NRGBA{20, 30, 99, 255}, true},
		{"one channel at threshold", color.NRGBA{10, 10, 100, 255}, false},
		{"red stroke", color.NRGBA{200, 0, 0, 255}, false},
		{"white paper", color.NRGBA{255, 255, 255, 255}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Mask(solid(1, 1, tc.in), Options{})
			got := out.NRGBAAt(0, 0)
			if tc.white && got != (color.NRGBA{255, 255, 255, 255}) {
				t.Fatalf("expected opaque white, got %#v", got)
			}
			if !tc.white && got.A != 0 {
				t.Fatalf("expected transparent, got %#v", got)
			}
		})
	}
}

func TestMaskCustomThreshold(t *testing.T) {
	out := Mask(solid(1, 1, color.NRGBA{150, 150, 150, 255}), Options{Threshold: 200})
	if out.NRGBAAt(0, 0).A != 255 {
		t.Fatalf("expected ink under custom threshold")
	}
}

func TestRenderBackgroundAndInk(t *testing.T) {
	src := solid(4, 4, color.NRGBA{255, 255, 255, 255})
	src.SetNRGBA(1, 1, color.NRGBA{0, 0, 0, 255})

	card, err := Render(src, true, 4, 4, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := card.NRGBAAt(1, 1); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("expected white ink, got %#v", got)
	}
	if got := card.NRGBAAt(3, 3); got != CorrectBackground {
		t.Fatalf("expected correct background, got %#v", got)
	}

	wrong, err := Render(src, false, 4, 4, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := wrong.NRGBAAt(0, 0); got != IncorrectBackground {
		t.Fatalf("expected incorrect background, got %#v", got)
	}
}

func TestRenderMatchesTargetSize(t *testing.T) {
	src := solid(10, 5, color.NRGBA{0, 0, 0, 255})
	for _, size := range [][2]int{{600, 400}, {3, 7}, {10, 5}} {
		card, err := Render(src, false, size[0], size[1], Options{})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if card.Bounds().Dx() != size[0] || card.Bounds().Dy() != size[1] {
			t.Fatalf("expected %dx%d, got %v", size[0], size[1], card.Bounds())
		}
	}
	if _, err := Render(src, false, 0, 5, Options{}); err == nil {
		t.Fatalf("expected error for empty target")
	}
}

func TestRenderTreatsTransparentAsPaper(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	card, err := Render(src, true, 2, 2, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := card.NRGBAAt(0, 0); got != CorrectBackground {
		t.Fatalf("expected transparent source to show background, got %#v", got)
	}
}

func TestRenderKeepsTranslucentInk(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	src.SetNRGBA(0, 0, color.NRGBA{30, 30, 30, 128})
	src.SetNRGBA(1, 0, color.NRGBA{200, 200, 200, 128})
	card, err := Render(src, false, 3, 1, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := card.NRGBAAt(0, 0); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("expected translucent dark edge to be ink, got %#v", got)
	}
	if got := card.NRGBAAt(1, 0); got != IncorrectBackground {
		t.Fatalf("expected translucent light pixel to be paper, got %#v", got)
	}
	if got := card.NRGBAAt(2, 0); got != IncorrectBackground {
		t.Fatalf("expected transparent pixel to be paper, got %#v", got)
	}
}

func TestRenderDataURL(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(2, 2, color.NRGBA{0, 0, 0, 255})); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := RenderDataURL(dataurl.EncodePNG(buf.Bytes()), true, 8, 6, Options{})
	if err != nil {
		t.Fatalf("render data url: %v", err)
	}
	raw, _, err := dataurl.Decode(out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	if _, err := RenderDataURL("data:image/png;base64,AAAA", true, 8, 6, Options{}); err == nil {
		t.Fatalf("expected decode failure for garbage image")
	}
}
