// Command ch8 executes CHIP-8 programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/machine"
)

func main() {
	log.SetPrefix("ch8: ")
	log.SetFlags(0)

	var (
		cliFlag   = flag.Bool("cli", false, "run in the terminal instead of a window")
		devFlag   = flag.Bool("dev", false, "enable developer mode (reload the program when it changes)")
		debugFlag = flag.Bool("debug", false, "enable debugger (implies -dev)")
		speedFlag = flag.Int("speed", machine.DefaultConfig.Speed, "instructions per `second`")
		scaleFlag = flag.Int("scale", machine.DefaultConfig.Scale, "window pixels per display pixel")
		symFlag   = flag.String("sym", "", "read debugger symbols from `file` (default program.sym)")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cli] [-speed n] [-scale n] <program.ch8>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [-cli] <-dev | -debug> [-sym file] <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	romFile := flag.Arg(0)

	cfg := machine.DefaultConfig
	cfg.Speed = *speedFlag
	cfg.Scale = *scaleFlag

	front := machine.Window
	if *cliFlag {
		front = machine.Terminal
		if *debugFlag {
			// The debugger owns the terminal.
			front = machine.Headless
		}
	}

	if *devFlag || *debugFlag {
		symFile := *symFlag
		if symFile == "" {
			symFile = symFileFor(romFile)
		}
		if err := devMode(cfg, front, *debugFlag, romFile, symFile); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(cfg, front, romFile)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg machine.Config, front machine.Frontend, romFile string) error {
	rom, err := chip8.ReadProgram(romFile)
	if err != nil {
		return err
	}
	return machine.NewRunner(cfg, front, false, nil).Run(rom)
}
