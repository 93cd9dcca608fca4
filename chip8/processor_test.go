package chip8

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	p := New()
	checkResetState(t, p)
}

func TestReset(t *testing.T) {
	p := New()
	p.Mem[0x300] = 1
	p.Mem[0x10] = 0
	p.V[3] = 4
	p.I = 0x123
	p.PC = 0x456
	p.Stack = []uint16{0x202, 0x204}
	p.Delay, p.Sound = 5, 6
	p.Display[1][2] = 1
	p.Press(9)
	p.Op = 0x1234
	p.Reset()
	checkResetState(t, p)
	if p.Logf == nil || p.rand == nil {
		t.Error("Reset cleared Logf or the random source")
	}
}

func checkResetState(t *testing.T, p *Processor) {
	t.Helper()
	for i := range p.Mem {
		var w byte
		if i < len(font) {
			w = font[i]
		}
		if g := p.Mem[i]; g != w {
			t.Errorf("Mem[%.3x] == %.2x, want %.2x", i, g, w)
		}
	}
	if p.PC != ProgramStart {
		t.Errorf("PC is %.3x, want %.3x", p.PC, ProgramStart)
	}
	if p.V != [16]byte{} || p.I != 0 {
		t.Errorf("registers are V=%v I=%.3x, want zero", p.V, p.I)
	}
	if len(p.Stack) != 0 {
		t.Errorf("stack is %.3x, want empty", p.Stack)
	}
	if p.Delay != 0 || p.Sound != 0 {
		t.Errorf("timers are %d, %d, want zero", p.Delay, p.Sound)
	}
	if p.Display != (Display{}) {
		t.Errorf("display is not clear:\n%v", p.Display)
	}
	if p.Keys != [16]bool{} {
		t.Errorf("keys are %v, want none pressed", p.Keys)
	}
	if p.Op != 0 {
		t.Errorf("Op is %v, want 0", p.Op)
	}
}

func TestLoad(t *testing.T) {
	for _, size := range []int{0, 1, 0x100, MaxProgramSize} {
		t.Run(fmt.Sprintf("%.4x", size), func(t *testing.T) {
			p := New()
			p.V[1] = 1
			if err := p.Load(bytes.Repeat([]byte{7}, size)); err != nil {
				t.Fatal(err)
			}
			if p.V[1] != 0 {
				t.Error("Load did not reset registers")
			}
			for i := ProgramStart; i < MemSize; i++ {
				w := byte(0)
				if i < ProgramStart+size {
					w = 7
				}
				if g := p.Mem[i]; g != w {
					t.Fatalf("Mem[%.3x] == %.2x, want %.2x", i, g, w)
				}
			}
		})
	}
}

func TestLoadTooLarge(t *testing.T) {
	p := New()
	err := p.Load(make([]byte, MaxProgramSize+1))
	if !errors.Is(err, ErrProgramTooLarge) {
		t.Fatalf("Load returned %v, want %v", err, ErrProgramTooLarge)
	}
	checkResetState(t, p)
}

func TestReadProgram(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "prog.ch8")
	if err := os.WriteFile(name, []byte{0x12, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}
	rom, err := ReadProgram(name)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rom, []byte{0x12, 0x00}) {
		t.Errorf("program bytes are %.2x, want 12 00", rom)
	}

	limit := filepath.Join(dir, "limit.ch8")
	if err := os.WriteFile(limit, make([]byte, MaxProgramSize), 0o644); err != nil {
		t.Fatal(err)
	}
	if rom, err := ReadProgram(limit); err != nil || len(rom) != MaxProgramSize {
		t.Errorf("ReadProgram(limit) returned %d bytes, %v", len(rom), err)
	}

	big := filepath.Join(dir, "big.ch8")
	if err := os.WriteFile(big, make([]byte, 0x1000), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadProgram(big); !errors.Is(err, ErrProgramTooLarge) {
		t.Errorf("ReadProgram(big) returned %v, want %v", err, ErrProgramTooLarge)
	}

	_, err = ReadProgram(filepath.Join(dir, "missing.ch8"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadProgram(missing) returned %v, want not exist", err)
	}
	if errors.Is(err, ErrProgramTooLarge) {
		t.Error("missing file reported as too large")
	}
}

func TestDecrementTimers(t *testing.T) {
	p := New()
	p.Delay, p.Sound = 2, 3
	for i, w := range []struct {
		delay, sound byte
		tone         bool
	}{
		{1, 2, true},
		{0, 1, true},
		{0, 0, false},
		{0, 0, false},
	} {
		tone := p.DecrementTimers()
		if p.Delay != w.delay || p.Sound != w.sound || tone != w.tone {
			t.Errorf("tick %d: delay %d sound %d tone %v, want %d %d %v",
				i, p.Delay, p.Sound, tone, w.delay, w.sound, w.tone)
		}
	}
}

func TestKeys(t *testing.T) {
	p := New()
	p.Press(0)
	p.Press(0xf)
	p.Press(0x10) // ignored
	if !p.Keys[0] || !p.Keys[0xf] {
		t.Errorf("keys %v, want 0 and f pressed", p.Keys)
	}
	p.Release(0)
	p.Release(0xff) // ignored
	if p.Keys[0] || !p.Keys[0xf] {
		t.Errorf("keys %v, want only f pressed", p.Keys)
	}
}
