package main

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/cpu"
)

// keypad maps the 4x4 hex keypad onto the left of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var keypad = [cpu.NumKeys]ebiten.Key{
	0x0: ebiten.KeyX,
	0x1: ebiten.Key1,
	0x2: ebiten.Key2,
	0x3: ebiten.Key3,
	0x4: ebiten.KeyQ,
	0x5: ebiten.KeyW,
	0x6: ebiten.KeyE,
	0x7: ebiten.KeyA,
	0x8: ebiten.KeyS,
	0x9: ebiten.KeyD,
	0xA: ebiten.KeyZ,
	0xB: ebiten.KeyC,
	0xC: ebiten.Key4,
	0xD: ebiten.KeyR,
	0xE: ebiten.KeyF,
	0xF: ebiten.KeyV,
}

// keysFrom builds the keypad snapshot from a host key predicate.
func keysFrom(pressed func(ebiten.Key) bool) cpu.KeySet {
	var set cpu.KeySet
	for k, key := range keypad {
		if pressed(key) {
			set = set.With(byte(k))
		}
	}
	return set
}

type Game struct {
	vm             *cpu.CPU
	logger         *log.Logger
	cyclesPerFrame int
	scale          int
	screenshot     string

	// poll reads the keypad once per frame.
	poll func() cpu.KeySet

	screen *ebiten.Image // reused 64x32 canvas
	paused bool
}

func NewGame(vm *cpu.CPU, logger *log.Logger, cyclesPerFrame, scale int) *Game {
	return &Game{
		vm:             vm,
		logger:         logger,
		cyclesPerFrame: cyclesPerFrame,
		scale:          scale,
		screenshot:     "screenshot.png",
		poll: func() cpu.KeySet {
			return keysFrom(ebiten.IsKeyPressed)
		},
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if err := g.vm.Display.SaveScreenshot(g.screenshot, g.scale); err != nil {
			g.logger.Error("Saving screenshot failed", log.Err(err))
		} else {
			g.logger.Info("Screenshot saved", log.String("file", g.screenshot))
		}
	}

	if g.paused {
		return nil
	}
	g.runFrame(g.poll())
	return nil
}

// runFrame executes one frame worth of instructions against a single key
// snapshot. A fault stops the frame; the machine stays halted afterwards.
func (g *Game) runFrame(keys cpu.Keys) {
	if g.vm.Halted {
		return
	}
	for i := 0; i < g.cyclesPerFrame; i++ {
		if err := g.vm.Step(keys); err != nil {
			return
		}
		if g.vm.Waiting {
			break
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screen == nil {
		g.screen = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}

	g.screen.WritePixels(g.vm.Display.FramebufferRGBA(cpu.DefaultOn, cpu.DefaultOff))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.screen, op)

	if msg := g.status(); msg != "" {
		ebitenutil.DebugPrint(screen, msg)
	}
}

// status is the overlay text, empty while the machine runs normally.
func (g *Game) status() string {
	var fault *cpu.Fault
	switch {
	case errors.As(g.vm.Fault, &fault):
		return fmt.Sprintf("HALTED: %v", fault)
	case g.vm.Halted:
		return "HALTED"
	case g.paused:
		return "PAUSED"
	}
	return ""
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth * g.scale, cpu.ScreenHeight * g.scale
}
