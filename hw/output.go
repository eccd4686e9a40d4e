package hw

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

const (
	ScreenWidth  = 256
	ScreenHeight = 240
)

// A Frame is a picture produced by the PPU: one system palette index (0-63)
// per pixel.
type Frame struct {
	Pix [ScreenWidth * ScreenHeight]uint8
}

// At returns the palette index of the pixel at (x, y).
func (f *Frame) At(x, y int) uint8 {
	return f.Pix[y*ScreenWidth+x]
}

// RGBA converts the frame using the NTSC system palette.
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	f.DrawRGBA(img.Pix)
	return img
}

// DrawRGBA converts the frame into pix, a RGBA buffer of at least
// 4*ScreenWidth*ScreenHeight bytes.
func (f *Frame) DrawRGBA(pix []byte) {
	for i, idx := range f.Pix {
		c := SystemPalette[idx&0x3F]
		pix[i*4+0] = c.R
		pix[i*4+1] = c.G
		pix[i*4+2] = c.B
		pix[i*4+3] = 0xFF
	}
}

// SaveAsPNG writes f to a PNG file at path.
func SaveAsPNG(f *Frame, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, f.RGBA()); err != nil {
		out.Close()
		return fmt.Errorf("screenshot: %w", err)
	}
	return out.Close()
}

// SystemPalette maps the 64 palette indices to RGB colors.
var SystemPalette [64]color.RGBA

func init() {
	colors := [64]uint32{
		0x666666, 0x002A88, 0x1412A7, 0x3B00A4, 0x5C007E, 0x6E0040, 0x6C0600, 0x561D00,
		0x333500, 0x0B4800, 0x005200, 0x004F08, 0x00404D, 0x000000, 0x000000, 0x000000,
		0xADADAD, 0x155FD9, 0x4240FF, 0x7527FE, 0xA01ACC, 0xB71E7B, 0xB53120, 0x994E00,
		0x6B6D00, 0x388700, 0x0C9300, 0x008F32, 0x007C8D, 0x000000, 0x000000, 0x000000,
		0xFFFEFF, 0x64B0FF, 0x9290FF, 0xC676FF, 0xF36AFF, 0xFE6ECC, 0xFE8170, 0xEA9E22,
		0xBCBE00, 0x88D800, 0x5CE430, 0x45E082, 0x48CDDE, 0x4F4F4F, 0x000000, 0x000000,
		0xFFFEFF, 0xC0DFFF, 0xD3D2FF, 0xE8C8FF, 0xFBC2FF, 0xFEC4EA, 0xFECCC5, 0xF7D8A5,
		0xE4E594, 0xCFEF96, 0xBDF4AB, 0xB3F3CC, 0xB5EBF2, 0xB8B8B8, 0x000000, 0x000000,
	}
	for i, c := range colors {
		SystemPalette[i] = color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xFF}
	}
}

type OutputConfig struct {
	NumVideoBuffers int

	// FrameOutCh receives the converted frames. If nil, frames are
	// discarded.
	FrameOutCh chan *image.RGBA
}

// Output converts the frames produced by the PPU and hands them to a
// consumer, in a separate goroutine, so that a slow consumer doesn't slow
// down emulation more than NumVideoBuffers frames.
type Output struct {
	framebufidx int
	framebuf    []*image.RGBA

	framecounter int
	framech      chan *image.RGBA
	done         chan struct{}

	cfg OutputConfig
}

func NewOutput(cfg OutputConfig) *Output {
	if cfg.NumVideoBuffers < 2 {
		cfg.NumVideoBuffers = 2
	}
	vb := make([]*image.RGBA, cfg.NumVideoBuffers)
	for i := range vb {
		vb[i] = image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	}
	o := &Output{
		framebuf: vb,
		cfg:      cfg,
		framech:  make(chan *image.RGBA, cfg.NumVideoBuffers-1),
		done:     make(chan struct{}),
	}
	go o.render()
	return o
}

// EndFrame hands a completed frame to the output.
func (o *Output) EndFrame(f *Frame) {
	o.framebufidx++
	if o.framebufidx == o.cfg.NumVideoBuffers {
		o.framebufidx = 0
	}

	img := o.framebuf[o.framebufidx]
	f.DrawRGBA(img.Pix)
	o.framecounter++
	o.framech <- img
}

// Close stops the output goroutine, once all pending frames are consumed.
func (o *Output) Close() {
	close(o.framech)
	<-o.done
}

func (o *Output) render() {
	defer close(o.done)

	if o.cfg.FrameOutCh == nil {
		for range o.framech {
			// We're headless, just discard all frames.
		}
		return
	}

	for frame := range o.framech {
		o.cfg.FrameOutCh <- frame
	}
}
