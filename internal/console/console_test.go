package console

import (
	"bytes"
	"testing"
)

// buildNROM builds a minimal 16KB-PRG/8KB-CHR NROM (mapper 0) iNES image
// with a reset vector pointing at $8000.
func buildNROM() []byte {
	prg := make([]byte, 16*1024)
	prg[0x7FFC] = 0x00
	prg[0x7FFD] = 0x80 // reset vector -> $8000
	chr := make([]byte, 8*1024)

	header := []byte{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	buf := append([]byte{}, header...)
	buf = append(buf, prg...)
	buf = append(buf, chr...)
	return buf
}

func newTestConsole(t *testing.T) *Console {
	t.Helper()
	c, err := New(bytes.NewReader(buildNROM()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return c
}

func TestNewLoadsResetVector(t *testing.T) {
	c := newTestConsole(t)
	if c.Bus.CPU.PC != 0x8000 {
		t.Fatalf("PC = %#x, want 0x8000", c.Bus.CPU.PC)
	}
}

func TestStepAdvancesCPUCycles(t *testing.T) {
	c := newTestConsole(t)
	before := c.Bus.CPU.Cycles()
	c.Step()
	if c.Bus.CPU.Cycles() <= before {
		t.Fatal("expected CPU cycle counter to increase after Step")
	}
}

func TestStepFrameCompletesExactlyOneFrame(t *testing.T) {
	c := newTestConsole(t)
	startFrame := c.Bus.PPU.FrameCount()
	c.StepFrame()
	if c.Bus.PPU.FrameCount() != startFrame+1 {
		t.Fatalf("frame count = %d, want %d", c.Bus.PPU.FrameCount(), startFrame+1)
	}
}

func TestTakeAudioReturnsOneSamplePerCPUCycle(t *testing.T) {
	c := newTestConsole(t)
	before := c.Bus.CPU.Cycles()
	c.StepFrame()
	elapsed := c.Bus.CPU.Cycles() - before
	samples := c.TakeAudio()
	if uint64(len(samples)) != elapsed {
		t.Fatalf("got %d samples, want %d (one per elapsed CPU cycle)", len(samples), elapsed)
	}
}

func TestSetButtonReachesController(t *testing.T) {
	c := newTestConsole(t)
	c.SetButton(0, 1, true) // ButtonA == 1
	if c.Bus.Input.Controller1.State()&1 == 0 {
		t.Fatal("expected controller 1's A bit set")
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	c := newTestConsole(t)
	for i := 0; i < 1000; i++ {
		c.Step()
	}
	state := c.SaveState()

	c2 := newTestConsole(t)
	if err := c2.LoadState(state); err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}
	if c2.Bus.CPU.Cycles() != c.Bus.CPU.Cycles() {
		t.Fatal("CPU cycle count did not round-trip")
	}
	if c2.Bus.PPU.FrameCount() != c.Bus.PPU.FrameCount() {
		t.Fatal("frame count did not round-trip")
	}
}

func TestSaveLoadStateCompressedRoundTrip(t *testing.T) {
	c := newTestConsole(t)
	for i := 0; i < 500; i++ {
		c.Step()
	}
	state := c.SaveStateCompressed()

	c2 := newTestConsole(t)
	if err := c2.LoadState(state); err != nil {
		t.Fatalf("LoadState returned error on compressed state: %v", err)
	}
	if c2.Bus.CPU.Cycles() != c.Bus.CPU.Cycles() {
		t.Fatal("CPU cycle count did not round-trip through compression")
	}
}

func TestLoadStateRejectsBadMagic(t *testing.T) {
	c := newTestConsole(t)
	bad := make([]byte, 64)
	copy(bad, "XXXX")
	if err := c.LoadState(bad); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestLoadStateRejectsRomMismatch(t *testing.T) {
	c := newTestConsole(t)
	state := c.SaveState()
	state[16] ^= 0xFF // corrupt the ROM hash

	c2 := newTestConsole(t)
	if err := c2.LoadState(state); err == nil {
		t.Fatal("expected ROM hash mismatch error")
	}
}

func TestLoadStateRejectsBadChecksum(t *testing.T) {
	c := newTestConsole(t)
	state := c.SaveState()
	state[len(state)-1] ^= 0xFF // corrupt the body

	c2 := newTestConsole(t)
	if err := c2.LoadState(state); err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}

func TestNewRejectsUnsupportedMapper(t *testing.T) {
	data := buildNROM()
	data[6] = 0xF0 // mapper number 255
	data[7] = 0xF0
	if _, err := New(bytes.NewReader(data)); err == nil {
		t.Fatal("expected an UnsupportedMapper error")
	}
}
