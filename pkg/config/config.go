// Package config holds the settings shared by the command line hosts.
package config

import (
	"flag"
	"fmt"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/cpu"
)

const (
	DefaultCyclesPerFrame = 10
	DefaultScale          = 10
)

// Options are the machine and host settings every host understands.
type Options struct {
	CyclesPerFrame int
	Scale          int
	Draw           string
	Seed           uint64
	ShiftQuirk     bool
	JumpQuirk      bool
	Trace          bool
	Debug          bool
	Quiet          bool
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// RegisterFlags binds opts to flags on fs.
func RegisterFlags(flags *flag.FlagSet, opts *Options) {
	flags.IntVar(&opts.CyclesPerFrame, "cpf", DefaultCyclesPerFrame, "instructions executed per 60Hz frame")
	flags.IntVar(&opts.Scale, "scale", DefaultScale, "pixel scale for the window and screenshots")
	flags.StringVar(&opts.Draw, "draw", cpu.DrawWrap.String(), "sprite edge behaviour (wrap/clip)")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for the random number generator, 0 picks a random seed")
	flags.BoolVar(&opts.ShiftQuirk, "shift-vy", false, "8XY6/8XYE shift VY into VX")
	flags.BoolVar(&opts.JumpQuirk, "jump-vx", false, "BNNN adds VX instead of V0")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction (needs -debug)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

// Validate checks values the flag package cannot.
func (o Options) Validate() error {
	if o.CyclesPerFrame <= 0 {
		return fmt.Errorf("cycles per frame must be positive, got %d", o.CyclesPerFrame)
	}
	if o.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %d", o.Scale)
	}
	if _, err := cpu.ParseDrawPolicy(o.Draw); err != nil {
		return err
	}
	return nil
}

// CPUOptions converts the host settings into machine options.
func (o Options) CPUOptions(logger *log.Logger) (cpu.Options, error) {
	policy, err := cpu.ParseDrawPolicy(o.Draw)
	if err != nil {
		return cpu.Options{}, err
	}

	opts := cpu.Options{
		Quirks: cpu.Quirks{
			ShiftUsesVY: o.ShiftQuirk,
			JumpUsesVX:  o.JumpQuirk,
		},
		DrawPolicy: policy,
		Logger:     logger,
		Trace:      o.Trace,
	}
	if o.Seed != 0 {
		opts.Random = cpu.NewSeededRandom(o.Seed)
	}
	return opts, nil
}
