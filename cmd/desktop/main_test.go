package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
)

func TestKeypadMapping(t *testing.T) {
	seen := map[ebiten.Key]bool{}
	for k, key := range keypad {
		if seen[key] {
			t.Errorf("host key %v mapped twice (keypad 0x%X)", key, k)
		}
		seen[key] = true
	}

	set := keysFrom(func(key ebiten.Key) bool {
		return key == ebiten.KeyX || key == ebiten.KeyV
	})
	if !set.Pressed(0x0) || !set.Pressed(0xF) {
		t.Errorf("Expected keypad 0 and F held, got %016b", uint16(set))
	}
	if set.Pressed(0x1) {
		t.Errorf("Expected keypad 1 released")
	}
}

func writeProgram(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.asm")
	assert.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestMainWiringIntegration(t *testing.T) {
	path := writeProgram(t, `
		LD V0, 0
		LD V1, 0
		LD F, V0
		DRW V0, V1, 5
	loop:
		ADD V2, 1
		JP loop
	`)

	opts := config.Options{CyclesPerFrame: 10, Scale: 2, Draw: "wrap"}
	vm, err := newMachine(path, opts, log.NewTestLogger(t))
	assert.NoError(t, err)

	game := NewGame(vm, log.NewTestLogger(t), opts.CyclesPerFrame, opts.Scale)
	game.runFrame(cpu.KeySet(0))

	assert.False(t, vm.Halted)
	assert.Equal(t, uint64(10), vm.Cycles)
	// Glyph 0 is a 4x5 box with a hollow middle.
	assert.Equal(t, 14, vm.Display.Lit())
	assert.Equal(t, "", game.status())

	w, h := game.Layout(0, 0)
	assert.Equal(t, 128, w)
	assert.Equal(t, 64, h)
}

func TestRunFrameStopsOnFault(t *testing.T) {
	path := writeProgram(t, "RET\n")
	vm, err := newMachine(path, config.Options{Draw: "wrap"}, nil)
	assert.NoError(t, err)

	game := NewGame(vm, log.NewTestLogger(t), 10, 1)
	game.runFrame(nil)

	assert.True(t, vm.Halted)
	assert.Equal(t, uint64(0), vm.Cycles)
	assert.Contains(t, game.status(), "HALTED")

	// Later frames leave the machine untouched.
	game.runFrame(nil)
	assert.Equal(t, uint16(cpu.ProgramStart), vm.PC)
}

func TestRunFrameWaitsForKey(t *testing.T) {
	path := writeProgram(t, `
		LD V3, K
		ADD V3, 1
	spin:
		JP spin
	`)
	vm, err := newMachine(path, config.Options{Draw: "wrap"}, nil)
	assert.NoError(t, err)

	game := NewGame(vm, log.NewTestLogger(t), 10, 1)
	game.runFrame(cpu.KeySet(0))
	assert.True(t, vm.Waiting)
	assert.Equal(t, uint64(1), vm.Cycles)

	game.runFrame(cpu.KeySet(0).With(0x7))
	assert.False(t, vm.Waiting)
	assert.Equal(t, byte(0x8), vm.Regs.Get(3))
}

func TestNewMachineRejectsBadInput(t *testing.T) {
	_, err := newMachine(filepath.Join(t.TempDir(), "missing.ch8"), config.Options{}, nil)
	assert.Error(t, err)

	path := writeProgram(t, "CLS\n")
	_, err = newMachine(path, config.Options{Draw: "bounce"}, nil)
	assert.Error(t, err)
}
