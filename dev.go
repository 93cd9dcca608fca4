package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/machine"
)

// devMode runs romFile and restarts it whenever the file changes. With
// debug set, the interactive debugger takes over the terminal.
func devMode(cfg machine.Config, front machine.Frontend, debug bool, romFile, symFile string) error {
	romFile, symFile = filepath.Clean(romFile), filepath.Clean(symFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		return err
	}

	var (
		d     *debugger
		state machine.StateFunc
	)
	if debug {
		d = newDebugger()
		state = d.StateFunc
	}
	runner := machine.NewRunner(cfg, front, true, state)
	if d != nil {
		d.run = runner
		log.SetPrefix("")
		log.SetOutput(d.log)
		go func() {
			if err := d.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("ch8: ")
			runner.Debug("exit", 0)
		}()
	}

	romCh := make(chan []byte)
	go func() {
		started := false
		run := time.After(1 * time.Millisecond)
		for {
			select {
			case <-run:
				log.Printf("dev: load %s", filepath.Base(romFile))
				rom, err := chip8.ReadProgram(romFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				if d != nil {
					syms, err := loadSymbols(symFile)
					if err != nil {
						log.Printf("dev: reading symbols: %v", err)
					}
					d.setSymbols(syms)
				}
				if !started {
					log.Printf("dev: start")
					romCh <- rom
					started = true
				} else {
					log.Printf("dev: reset")
					runner.Swap(rom)
				}
			case ev := <-watcher.Event:
				if (ev.Name == romFile || ev.Name == symFile) && !ev.IsAttrib() {
					run = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()
	if err := runner.Run(<-romCh); err != nil {
		return fmt.Errorf("dev: %w", err)
	}
	return nil
}

// symFileFor returns the symbol file conventionally kept beside romFile.
func symFileFor(romFile string) string {
	return romFile[:len(romFile)-len(filepath.Ext(romFile))] + ".sym"
}
