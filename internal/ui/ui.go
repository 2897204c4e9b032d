package ui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/nevisdale/gbtic/internal/gb"
)

// Arrows - dpad
// Z / X - A / B
// Enter / Backspace - start / select
// P - pause
// R - one frame and stop
// Tab - show debug info

type UI struct {
	bus *gb.Bus

	paused    bool
	stepFrame bool
	showDebug bool

	pixels []byte
	screen *ebiten.Image
}

func New(bus *gb.Bus) *UI {
	return &UI{
		bus:    bus,
		pixels: make([]byte, gb.ScreenWidth*gb.ScreenHeight*4),
		screen: ebiten.NewImage(gb.ScreenWidth, gb.ScreenHeight),
	}
}

// dmgShades is the classic green-gray ramp, one RGB triple per 2-bit shade.
var dmgShades = [4][3]byte{
	{0xe0, 0xf8, 0xd0},
	{0x88, 0xc0, 0x70},
	{0x34, 0x68, 0x56},
	{0x08, 0x18, 0x20},
}

var keyBindings = map[ebiten.Key]gb.Button{
	ebiten.KeyArrowRight: gb.ButtonRight,
	ebiten.KeyArrowLeft:  gb.ButtonLeft,
	ebiten.KeyArrowUp:    gb.ButtonUp,
	ebiten.KeyArrowDown:  gb.ButtonDown,
	ebiten.KeyZ:          gb.ButtonA,
	ebiten.KeyX:          gb.ButtonB,
	ebiten.KeyBackspace:  gb.ButtonSelect,
	ebiten.KeyEnter:      gb.ButtonStart,
}

func (ui *UI) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		ui.showDebug = !ui.showDebug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		ui.paused = !ui.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		ui.paused = true
		ui.stepFrame = true
	}

	for key, button := range keyBindings {
		if inpututil.IsKeyJustPressed(key) {
			ui.bus.SetButton(button, true)
		}
		if inpututil.IsKeyJustReleased(key) {
			ui.bus.SetButton(button, false)
		}
	}

	if ui.paused && !ui.stepFrame {
		return nil
	}
	ui.stepFrame = false

	return ui.bus.RunFrame()
}

func (ui *UI) Draw(screen *ebiten.Image) {
	frame := ui.bus.Frame()
	for y := 0; y < gb.ScreenHeight; y++ {
		for x := 0; x < gb.ScreenWidth; x++ {
			shade := dmgShades[frame[y][x]&0x03]
			i := (y*gb.ScreenWidth + x) * 4
			ui.pixels[i+0] = shade[0]
			ui.pixels[i+1] = shade[1]
			ui.pixels[i+2] = shade[2]
			ui.pixels[i+3] = 0xff
		}
	}
	ui.screen.WritePixels(ui.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(gameScreenScale, gameScreenScale)
	screen.DrawImage(ui.screen, op)

	if ui.showDebug {
		info := fmt.Sprintf(" FPS: %0.0f\n CYCLES: %d", ebiten.ActualFPS(), ui.bus.Cycles())
		ebitenutil.DebugPrintAt(screen, info, 0, 0)
	}
}

const gameScreenScale = 3

func (ui *UI) Layout(_, _ int) (int, int) {
	return gb.ScreenWidth * gameScreenScale, gb.ScreenHeight * gameScreenScale
}

func RunUI(ui *UI) error {
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("gbtic: " + ui.bus.Cart().Title())
	ebiten.SetWindowSize(gb.ScreenWidth*gameScreenScale*2, gb.ScreenHeight*gameScreenScale*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(ui)
}
