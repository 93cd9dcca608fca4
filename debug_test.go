package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/machine"
)

func testProcessor(t *testing.T) *chip8.Processor {
	t.Helper()
	p := chip8.New()
	require.NoError(t, p.Load([]byte{
		0x60, 0x03, // 200 LD V0, $03
		0x12, 0x06, // 202 JP $206
		0x00, 0x00, // 204
		0x12, 0x06, // 206 JP $206
	}))
	return p
}

func testSymbols() *symbols {
	return &symbols{{0x200, "start"}, {0x206, "loop"}}
}

func TestStateMsg(t *testing.T) {
	p := testProcessor(t)
	require.NoError(t, p.Step())

	lines := strings.Split(stateMsg(testSymbols(), p, machine.BreakState), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "202 JP $206"+strings.Repeat(" ", 10)+"[break] loop (206)", lines[0])
	assert.Equal(t, "v: 03 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00", lines[1])
	assert.Equal(t, "i: 000 dt: 00 st: 00 sp: []", lines[2])

	require.NoError(t, p.Step())
	lines = strings.Split(stateMsg(testSymbols(), p, machine.PauseState), "\n")
	assert.Equal(t, "206 JP $206"+strings.Repeat(" ", 10)+"[pause] loop (206) -> loop (206)", lines[0])
}

func TestStateMsgHalt(t *testing.T) {
	p := testProcessor(t)
	p.PC = 0x204
	require.Error(t, p.Step())

	msg := stateMsg(nil, p, machine.HaltState)
	assert.True(t, strings.HasPrefix(msg, "204 DW $0000"+strings.Repeat(" ", 9)+"[HALT!]"), msg)
}

func TestWatchContent(t *testing.T) {
	p := testProcessor(t)
	d := newDebugger()
	assert.Empty(t, d.watchContent(p))

	d.setSymbols(testSymbols())
	d.command("w loop")
	d.command("w2 200")
	d.command("w")
	d.command("watch nowhere")
	assert.Equal(t, "loop [206]   12\n200 [200] 6003", d.watchContent(p))
}

func TestDebuggerCommands(t *testing.T) {
	var (
		d     = newDebugger()
		cfg   = machine.Config{Speed: 60, TimerRate: 60, Theme: machine.DefaultTheme}
		kinds = make(chan machine.StateKind, 100)
	)
	d.setSymbols(testSymbols())
	d.run = machine.NewRunner(cfg, machine.Headless, false,
		func(p *chip8.Processor, k machine.StateKind) {
			if k != machine.QuietState {
				kinds <- k
			}
		})
	done := make(chan error)
	p := testProcessor(t)
	go func() { done <- d.run.Run(p.Mem[chip8.ProgramStart:0x208]) }()

	d.command("b loop")
	require.NotNil(t, d.brk)
	assert.Equal(t, uint16(0x206), d.brk.addr)
	select {
	case k := <-kinds:
		assert.Equal(t, machine.BreakState, k)
	case <-time.After(5 * time.Second):
		t.Fatal("breakpoint not reached")
	}
	assert.Equal(t, "loop [206] brk!\n", d.watchContent(p))

	d.command("b")
	assert.Nil(t, d.brk)
	d.command("d 20")
	assert.Equal(t, uint16(0x20), d.dbg.addr)
	d.command("d")
	assert.Nil(t, d.dbg)

	d.run.Debug("exit", 0)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not exit")
	}
}

func TestDisplayText(t *testing.T) {
	var disp chip8.Display
	disp[0][0] = 1
	disp[0][1], disp[1][1] = 1, 1
	disp[1][2] = 1
	disp[31][63] = 1

	lines := strings.Split(displayText(&disp), "\n")
	require.Len(t, lines, chip8.Height/2+1)
	assert.Equal(t, "▀█▄"+strings.Repeat(" ", chip8.Width-3), lines[0])
	assert.Equal(t, strings.Repeat(" ", chip8.Width-1)+"▄", lines[15])
	assert.Empty(t, lines[16])
}

func TestComplete(t *testing.T) {
	d := newDebugger()
	d.setSymbols(&symbols{{0x200, "start"}, {0x206, "loop"}, {0x20a, "lose"}})

	assert.Equal(t, []string{"b loop", "b lose"}, d.complete("b lo"))
	assert.Equal(t, []string{"w2 start"}, d.complete("w2 s"))
	assert.Empty(t, d.complete("b"))
	assert.Empty(t, d.complete("p lo"))
	assert.Empty(t, d.complete("d x"))
}

func TestStateMsgWaiting(t *testing.T) {
	p := chip8.New()
	require.NoError(t, p.Load([]byte{0xf3, 0x0a})) // LD V3, K
	require.NoError(t, p.Step())
	require.True(t, p.Waiting())

	lines := strings.Split(stateMsg(nil, p, machine.PauseState), "\n")
	assert.Equal(t, "200 LD V3, K"+strings.Repeat(" ", 9)+"[pause] ", lines[0])
	assert.Equal(t, "i: 000 dt: 00 st: 00 sp: [] [key?]", lines[2])
}
