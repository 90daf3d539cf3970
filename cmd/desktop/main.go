package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/asm"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
)

func main() {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts config.Options
	config.RegisterFlags(flags, &opts)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: desktop [options] <program.ch8|program.asm>\n\n")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(2)
	}
	if err := opts.Validate(); err != nil {
		logger.Fatal(err.Error())
	}

	filename := flags.Arg(0)
	vm, err := newMachine(filename, opts, logger)
	if err != nil {
		logger.Error("Loading program failed", log.String("file", filename), log.Err(err))
		os.Exit(1)
	}

	ebiten.SetWindowSize(cpu.ScreenWidth*opts.Scale, cpu.ScreenHeight*opts.Scale)
	ebiten.SetWindowTitle("gochip8 - " + filepath.Base(filename))
	ebiten.SetTPS(60)

	game := NewGame(vm, logger, opts.CyclesPerFrame, opts.Scale)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal(err.Error())
	}
}

func newMachine(filename string, opts config.Options, logger *log.Logger) (*cpu.CPU, error) {
	image, err := asm.LoadFile(filename)
	if err != nil {
		return nil, err
	}
	cpuOpts, err := opts.CPUOptions(logger)
	if err != nil {
		return nil, err
	}
	vm := cpu.NewCPU(cpuOpts)
	if err := vm.Load(image); err != nil {
		return nil, err
	}
	return vm, nil
}
