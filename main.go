//go:build !js

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/asm"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/utils"
)

type cliOptions struct {
	config.Options

	inPath     string
	outPath    string
	cycles     int
	screenshot string
	disasm     bool
}

func main() {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts cliOptions
	config.RegisterFlags(flags, &opts.Options)
	flags.StringVar(&opts.inPath, "in", "", "input program: raw image, or .asm source to assemble")
	flags.StringVar(&opts.outPath, "out", "", "write the assembled image to this path (default: input with .ch8 extension)")
	flags.IntVar(&opts.cycles, "cycles", 0, "run this many instructions headless")
	flags.StringVar(&opts.screenshot, "screenshot", "", "after running, save the display as a PNG")
	flags.BoolVar(&opts.disasm, "disasm", false, "print a disassembly of the program")
	_ = flags.Parse(os.Args[1:])

	logger := config.CreateLogger(opts.Debug, opts.Quiet)

	if opts.inPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in with a program image or .asm source")
		flags.PrintDefaults()
		os.Exit(2)
	}
	if err := opts.Validate(); err != nil {
		logger.Error(err.Error())
		os.Exit(2)
	}

	if err := execute(opts, logger); err != nil {
		logger.Error("Failed", log.String("file", opts.inPath), log.Err(err))
		os.Exit(1)
	}
}

func execute(opts cliOptions, logger *log.Logger) error {
	image, err := asm.LoadFile(opts.inPath)
	if err != nil {
		return err
	}

	if utils.IsSource(opts.inPath) {
		output := opts.outPath
		if output == "" {
			output = utils.ReplaceExt(opts.inPath, ".ch8")
		}
		if err := utils.WriteFile(output, image); err != nil {
			return err
		}
		fmt.Printf("assembled %d bytes -> %s\n", len(image), output)
	}

	cpuOpts, err := opts.CPUOptions(logger)
	if err != nil {
		return err
	}
	vm := cpu.NewCPU(cpuOpts)
	if err := vm.Load(image); err != nil {
		return err
	}

	if opts.disasm {
		lines, err := cpu.Disassemble(vm.Memory, cpu.ProgramStart, uint16(cpu.ProgramStart+len(image)))
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(lines, "\n"))
	}

	if opts.cycles <= 0 {
		return nil
	}

	ran, runErr := vm.RunCycles(opts.cycles, nil)
	fmt.Println(summary(vm, ran))

	if opts.screenshot != "" {
		if err := vm.Display.SaveScreenshot(opts.screenshot, opts.Scale); err != nil {
			return err
		}
		logger.Info("Screenshot saved", log.String("file", opts.screenshot))
	}
	return runErr
}

// summary formats the machine state after a headless run.
func summary(vm *cpu.CPU, ran int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run complete: cycles=%d PC=0x%03X I=0x%03X SP=%d DT=%d ST=%d",
		ran, vm.PC, vm.Regs.I, vm.Regs.Depth(), vm.Delay.Read(), vm.SoundTimer)
	for i := 0; i < cpu.NumRegisters; i++ {
		if i%8 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "V%X=0x%02X", i, vm.Regs.Get(uint8(i)))
	}
	if vm.Halted {
		fmt.Fprintf(&b, "\nhalted: %v", vm.Fault)
	}
	return b.String()
}
