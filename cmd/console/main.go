package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/term"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/asm"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
)

const (
	frameInterval = time.Second / 60
	quitKey       = 0x1b // escape
)

// startKeyReader forwards bytes typed on tty to keys until stop is closed.
func startKeyReader(tty *term.Term, keys chan<- byte, stop <-chan struct{}) {
	buf := make([]byte, 8)
	for {
		n, err := tty.Read(buf)
		if err != nil {
			return
		}
		for _, ch := range buf[:n] {
			select {
			case keys <- ch:
			case <-stop:
				return
			}
		}
	}
}

func main() {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts config.Options
	config.RegisterFlags(flags, &opts)
	_ = flags.Parse(os.Args[1:])

	// Log output would tear the frame, so only errors are shown.
	logger := config.CreateLogger(false, true)
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: console [options] <program.ch8|program.asm>")
		flags.PrintDefaults()
		os.Exit(2)
	}
	if err := opts.Validate(); err != nil {
		logger.Error(err.Error())
		os.Exit(2)
	}

	filename := flags.Arg(0)
	image, err := asm.LoadFile(filename)
	if err != nil {
		logger.Error("Loading program failed", log.String("file", filename), log.Err(err))
		os.Exit(1)
	}
	cpuOpts, err := opts.CPUOptions(logger)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(2)
	}
	vm := cpu.NewCPU(cpuOpts)
	if err := vm.Load(image); err != nil {
		logger.Error("Loading program failed", log.Err(err))
		os.Exit(1)
	}

	tty, err := term.Open("/dev/tty", term.CBreakMode)
	if err != nil {
		logger.Error("Opening terminal failed", log.Err(err))
		os.Exit(1)
	}

	fault := run(vm, tty, opts.CyclesPerFrame)

	_ = tty.Restore()
	_ = tty.Close()
	fmt.Print(showCursor)

	if fault != nil {
		logger.Error("Machine halted", log.Err(fault))
		os.Exit(1)
	}
}

// run drives the machine at 60 frames per second until escape is typed or
// the machine faults.
func run(vm *cpu.CPU, tty *term.Term, cyclesPerFrame int) error {
	typed := make(chan byte, 64)
	stop := make(chan struct{})
	defer close(stop)
	go startKeyReader(tty, typed, stop)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	var held heldKeys
	fmt.Print(clearScreen + hideCursor)

	for range ticker.C {
	drain:
		for {
			select {
			case ch := <-typed:
				if ch == quitKey {
					return nil
				}
				held.press(ch)
			default:
				break drain
			}
		}

		keys := held.snapshot()
		for i := 0; i < cyclesPerFrame; i++ {
			if err := vm.Step(keys); err != nil {
				return err
			}
			if vm.Waiting {
				break
			}
		}

		fmt.Print(cursorHome + render(vm.Display))
	}
	return nil
}
