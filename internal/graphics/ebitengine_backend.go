// Package graphics: ebiten-backed GUI implementation of Backend.
package graphics

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gones/internal/ppu"
)

// keyMap pairs a host key with the gamepad bit it drives.
var keyMap = []struct {
	key    ebiten.Key
	button Button
}{
	{ebiten.KeyZ, ButtonA},
	{ebiten.KeyX, ButtonB},
	{ebiten.KeyShiftRight, ButtonSelect},
	{ebiten.KeyEnter, ButtonStart},
	{ebiten.KeyUp, ButtonUp},
	{ebiten.KeyDown, ButtonDown},
	{ebiten.KeyLeft, ButtonLeft},
	{ebiten.KeyRight, ButtonRight},
}

// EbitengineBackend presents frames in a window via ebiten and reads the
// keyboard into a gamepad state byte.
type EbitengineBackend struct {
	game *ebitengineGame
}

// NewEbitengineBackend configures an ebiten window scaled by cfg.Scale
// (defaulting to 3x, this emulator's default host presentation factor).
// The window isn't created until Run is called.
func NewEbitengineBackend(cfg Config) (*EbitengineBackend, error) {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 3
	}
	title := cfg.WindowTitle
	if title == "" {
		title = "gones"
	}

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(ppu.ScreenWidth*scale, ppu.ScreenHeight*scale)

	return &EbitengineBackend{
		game: &ebitengineGame{
			image:  ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight),
			pixels: image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight)),
		},
	}, nil
}

// Run blocks for the lifetime of the window, pulling a frame from source
// and pushing the polled gamepad byte to sink on every host tick.
func (b *EbitengineBackend) Run(source FrameSource, sink InputSink) error {
	b.game.source = source
	b.game.sink = sink
	return ebiten.RunGame(b.game)
}

// Close is a no-op: ebiten tears its window down when RunGame returns.
func (b *EbitengineBackend) Close() error { return nil }

// ebitengineGame implements ebiten.Game, translating key state into the
// gamepad byte once per Update and blitting the current frame in Draw.
type ebitengineGame struct {
	image  *ebiten.Image
	pixels *image.RGBA
	source FrameSource
	sink   InputSink
}

func (g *ebitengineGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	var state uint8
	for _, m := range keyMap {
		if ebiten.IsKeyPressed(m.key) {
			state |= 1 << uint(m.button)
		}
	}
	if g.sink != nil {
		g.sink(state)
	}
	return nil
}

func (g *ebitengineGame) Draw(screen *ebiten.Image) {
	if g.source == nil {
		return
	}
	frame := g.source()
	if frame == nil {
		return
	}
	for i, p := range frame {
		rgb := ppu.NESColorToRGB(uint8(p))
		g.pixels.Pix[i*4+0] = byte(rgb >> 16)
		g.pixels.Pix[i*4+1] = byte(rgb >> 8)
		g.pixels.Pix[i*4+2] = byte(rgb)
		g.pixels.Pix[i*4+3] = 0xFF
	}
	g.image.WritePixels(g.pixels.Pix)
	screen.DrawImage(g.image, nil)
}

func (g *ebitengineGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.ScreenWidth, ppu.ScreenHeight
}
