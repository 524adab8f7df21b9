package canvas

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"
	"sync"

	"flipquiz/internal/dataurl"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

const (
	DefaultLineWidth = 4.0
	circleSegments   = 24
)

var (
	Background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	DefaultInk = color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Surface is a freehand raster editor. Every completed stroke, clear or undo
// appends to or pops from a bounded history of raster snapshots.
type Surface struct {
	mu         sync.Mutex
	width      int
	height     int
	img        *image.RGBA
	history    []*image.RGBA
	undoLimit  int
	ink        color.RGBA
	lineWidth  float64
	stroking   bool
	last       Point
	moved      bool
	rasterizer *vector.Rasterizer
	onChange   func(dataURL string)
}

func NewSurface(width, height, undoLimit int) *Surface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	if undoLimit < 1 {
		undoLimit = 1
	}
	s := &Surface{
		width:      width,
		height:     height,
		img:        blank(width, height),
		undoLimit:  undoLimit,
		ink:        DefaultInk,
		lineWidth:  DefaultLineWidth,
		rasterizer: vector.NewRasterizer(width, height),
	}
	s.history = []*image.RGBA{cloneRGBA(s.img)}
	return s
}

func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// OnChange registers fn to receive the exported raster after each change.
func (s *Surface) OnChange(fn func(dataURL string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Surface) SetBrush(ink color.Color, lineWidth float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ink = color.RGBAModel.Convert(ink).(color.RGBA)
	if lineWidth > 0 {
		s.lineWidth = lineWidth
	}
}

// Scale maps a pointer position on the displayed element to backing-store
// coordinates. A non-positive display size is treated as unscaled.
func (s *Surface) Scale(p Point, displayW, displayH float64) Point {
	out := p
	if displayW > 0 {
		out.X = p.X * float64(s.width) / displayW
	}
	if displayH > 0 {
		out.Y = p.Y * float64(s.height) / displayH
	}
	return out
}

func (s *Surface) BeginStroke(p Point, displayW, displayH float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stroking = true
	s.moved = false
	s.last = s.Scale(p, displayW, displayH)
}

func (s *Surface) ExtendStroke(p Point, displayW, displayH float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stroking {
		return
	}
	next := s.Scale(p, displayW, displayH)
	s.drawSegment(s.last, next)
	s.last = next
	s.moved = true
}

// EndStroke finishes the stroke in progress and records a snapshot. A stroke
// that never moved leaves a dot.
func (s *Surface) EndStroke() (string, error) {
	s.mu.Lock()
	if !s.stroking {
		s.mu.Unlock()
		return "", errors.New("no stroke in progress")
	}
	if !s.moved {
		s.drawDisc(s.last, s.lineWidth/2)
	}
	s.stroking = false
	s.pushSnapshot()
	return s.exportAndNotify()
}

func (s *Surface) Clear() (string, error) {
	s.mu.Lock()
	s.stroking = false
	s.img = blank(s.width, s.height)
	s.pushSnapshot()
	return s.exportAndNotify()
}

// Undo restores the previous snapshot. At the oldest retained snapshot it
// leaves the raster unchanged.
func (s *Surface) Undo() (string, error) {
	s.mu.Lock()
	s.stroking = false
	if len(s.history) > 1 {
		s.history = s.history[:len(s.history)-1]
	}
	s.img = cloneRGBA(s.history[len(s.history)-1])
	return s.exportAndNotify()
}

func (s *Surface) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) > 1
}

func (s *Surface) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

func (s *Surface) DataURL() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return encodePNG(s.img)
}

// Image returns a copy of the current raster.
func (s *Surface) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRGBA(s.img)
}

// Load replaces the raster with an encoded image scaled to the surface and
// resets the history to it.
func (s *Surface) Load(data string) error {
	if strings.TrimSpace(data) == "" {
		return dataurl.ErrEmpty
	}
	raw, _, err := dataurl.Decode(data)
	if err != nil {
		return err
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	dst := blank(s.width, s.height)
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stroking = false
	s.img = dst
	s.history = []*image.RGBA{cloneRGBA(dst)}
	return nil
}

func (s *Surface) pushSnapshot() {
	s.history = append(s.history, cloneRGBA(s.img))
	if overflow := len(s.history) - s.undoLimit; overflow > 0 {
		s.history = append([]*image.RGBA(nil), s.history[overflow:]...)
	}
}

// exportAndNotify must be called with s.mu held; it releases the lock
// before invoking the change callback.
func (s *Surface) exportAndNotify() (string, error) {
	encoded, err := encodePNG(s.img)
	fn := s.onChange
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	if fn != nil {
		fn(encoded)
	}
	return encoded, nil
}

func (s *Surface) drawSegment(a, b Point) {
	half := s.lineWidth / 2
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length > 0 {
		nx, ny := -dy/length*half, dx/length*half
		s.rasterizer.Reset(s.width, s.height)
		s.rasterizer.MoveTo(float32(a.X+nx), float32(a.Y+ny))
		s.rasterizer.LineTo(float32(b.X+nx), float32(b.Y+ny))
		s.rasterizer.LineTo(float32(b.X-nx), float32(b.Y-ny))
		s.rasterizer.LineTo(float32(a.X-nx), float32(a.Y-ny))
		s.rasterizer.ClosePath()
		s.fill()
	}
	s.drawDisc(a, half)
	s.drawDisc(b, half)
}

func (s *Surface) drawDisc(center Point, radius float64) {
	if radius <= 0 {
		return
	}
	s.rasterizer.Reset(s.width, s.height)
	for i := 0; i < circleSegments; i++ {
		angle := 2 * math.Pi * float64(i) / circleSegments
		x := float32(center.X + radius*math.Cos(angle))
		y := float32(center.Y + radius*math.Sin(angle))
		if i == 0 {
			s.rasterizer.MoveTo(x, y)
			continue
		}
		s.rasterizer.LineTo(x, y)
	}
	s.rasterizer.ClosePath()
	s.fill()
}

func (s *Surface) fill() {
	s.rasterizer.DrawOp = xdraw.Over
	s.rasterizer.Draw(s.img, s.img.Bounds(), image.NewUniform(s.ink), image.Point{})
}

func blank(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, xdraw.Src)
	return img
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return dataurl.EncodePNG(buf.Bytes()), nil
}
