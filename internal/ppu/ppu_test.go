package ppu

import (
	"testing"

	"nescore/internal/mapper"
)

// fakeMapper is a minimal CHRMapper backed by flat CHR-RAM, used to drive
// the PPU in isolation from cartridge bank switching.
type fakeMapper struct {
	chr       [0x2000]uint8
	mirroring mapper.Mirroring
	lastA12   bool
	a12Rises  int
}

func newFakeMapper() *fakeMapper {
	return &fakeMapper{mirroring: mapper.Horizontal}
}

func (m *fakeMapper) ReadCHR(addr uint16) uint8         { return m.chr[addr&0x1FFF] }
func (m *fakeMapper) WriteCHR(addr uint16, value uint8) { m.chr[addr&0x1FFF] = value }
func (m *fakeMapper) Mirroring() mapper.Mirroring       { return m.mirroring }
func (m *fakeMapper) Tick(a12 bool)                     { m.a12Rises += boolToInt(a12 && !m.lastA12); m.lastA12 = a12 }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func newTestPPU() (*PPU, *fakeMapper) {
	m := newFakeMapper()
	p := New()
	p.SetMapper(m)
	return p, m
}

func TestResetClearsStatusAndOAM(t *testing.T) {
	p, _ := newTestPPU()
	p.oam[5] = 0xAB
	p.Reset()
	if p.oam[5] != 0 {
		t.Fatal("Reset must clear OAM")
	}
	if p.ppuStatus != 0 {
		t.Fatalf("ppuStatus = %#x, want 0 after Reset", p.ppuStatus)
	}
}

func TestPPUSTATUSReadClearsVBLAndLatch(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuStatus = 0x80
	p.w = true
	status := p.ReadRegister(0x2002)
	if status&0x80 == 0 {
		t.Fatal("expected VBL bit set in returned status")
	}
	if p.ppuStatus&0x80 != 0 {
		t.Fatal("reading PPUSTATUS must clear the VBL flag")
	}
	if p.w {
		t.Fatal("reading PPUSTATUS must clear the address write latch")
	}
}

func TestVBlankSetAtScanline241Cycle1(t *testing.T) {
	p, _ := newTestPPU()
	p.scanline = 241
	p.cycle = 0
	p.Step()
	if !p.IsVBlank() {
		t.Fatal("expected VBlank flag set at scanline 241, cycle 1")
	}
}

func TestNMIFiresOnVBlankWhenEnabled(t *testing.T) {
	p, _ := newTestPPU()
	fired := false
	p.SetNMICallback(func() { fired = true })
	p.ppuCtrl = 0x80
	p.scanline = 241
	p.cycle = 0
	p.Step()
	if !fired {
		t.Fatal("expected NMI callback invoked at VBlank start with NMI enabled")
	}
}

func TestNMISuppressedWhenDisabled(t *testing.T) {
	p, _ := newTestPPU()
	fired := false
	p.SetNMICallback(func() { fired = true })
	p.scanline = 241
	p.cycle = 0
	p.Step()
	if fired {
		t.Fatal("NMI must not fire when PPUCTRL bit 7 is clear")
	}
}

func TestVBlankClearedAtPreRenderCycle1(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuStatus = 0x80
	p.scanline = -1
	p.cycle = 0
	p.Step()
	if p.IsVBlank() {
		t.Fatal("expected VBlank flag cleared at pre-render scanline cycle 1")
	}
}

func TestOddFrameSkipsIdleDotWhenRenderingEnabled(t *testing.T) {
	p, _ := newTestPPU()
	p.renderingEnabled = true
	p.oddFrame = true
	p.scanline = -1
	p.cycle = 339
	p.Step()
	if p.scanline != 0 || p.cycle != 0 {
		t.Fatalf("scanline=%d cycle=%d, want (0,0): dot 340 of the pre-render line is skipped", p.scanline, p.cycle)
	}
}

func TestEvenFrameDoesNotSkipIdleDot(t *testing.T) {
	p, _ := newTestPPU()
	p.renderingEnabled = true
	p.oddFrame = false
	p.scanline = -1
	p.cycle = 339
	p.Step()
	if p.cycle != 340 {
		t.Fatalf("cycle = %d, want 340 from the ordinary increment", p.cycle)
	}
	p.Step()
	if p.scanline != 0 || p.cycle != 0 {
		t.Fatalf("scanline=%d cycle=%d, want (0,0) after the full 341-dot scanline", p.scanline, p.cycle)
	}
}

func TestOAMDataAutoIncrementsAddress(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2003, 0x10)
	p.WriteRegister(0x2004, 0x42)
	if p.oamAddr != 0x11 {
		t.Fatalf("oamAddr = %#x, want 0x11", p.oamAddr)
	}
	if p.oam[0x10] != 0x42 {
		t.Fatalf("oam[0x10] = %#x, want 0x42", p.oam[0x10])
	}
}

func TestPPUScrollTwoWriteSequence(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2005, 0x7D) // X: coarse=15 fine=5
	p.WriteRegister(0x2005, 0x5E) // Y
	if p.x != 5 {
		t.Fatalf("fine X = %d, want 5", p.x)
	}
	if p.w {
		t.Fatal("write latch should be clear after second write")
	}
}

func TestPPUAddrTwoWriteSequenceSetsV(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x23)
	p.WriteRegister(0x2006, 0xC0)
	if p.v != 0x23C0 {
		t.Fatalf("v = %#x, want 0x23C0", p.v)
	}
}

func TestPPUDataReadIsBufferedExceptPalette(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteVRAM(0x2000, 0x55)
	p.v = 0x2000
	first := p.ReadRegister(0x2007)
	if first != 0 {
		t.Fatalf("first buffered read = %#x, want 0 (stale buffer)", first)
	}
	second := p.ReadRegister(0x2007)
	if second != 0x55 {
		t.Fatalf("second read = %#x, want 0x55 from the now-primed buffer", second)
	}
}

func TestPPUDataReadFromPaletteIsUnbuffered(t *testing.T) {
	p, _ := newTestPPU()
	p.writePaletteByte(0x3F05, 0x20)
	p.v = 0x3F05
	got := p.ReadRegister(0x2007)
	if got != 0x20 {
		t.Fatalf("got %#x, want 0x20: palette reads are not delayed by the buffer", got)
	}
}

func TestPPUDataAddrIncrementModeControlledByPPUCTRLBit2(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuCtrl = 0x04 // +32 per access
	p.v = 0x2000
	p.WriteRegister(0x2007, 0x01)
	if p.v != 0x2020 {
		t.Fatalf("v = %#x, want 0x2020 after +32 increment", p.v)
	}
}

func TestPaletteMirrorsBackdropEntries(t *testing.T) {
	p, _ := newTestPPU()
	p.writePaletteByte(0x3F00, 0x0F)
	if p.readPaletteByte(0x3F10) != 0x0F {
		t.Fatal("$3F10 must mirror $3F00")
	}
}

func TestHorizontalMirroringMapsTopNametablesTogether(t *testing.T) {
	p, m := newTestPPU()
	m.mirroring = mapper.Horizontal
	p.WriteVRAM(0x2000, 0x11)
	if p.ReadVRAM(0x2400) != 0x11 {
		t.Fatal("horizontal mirroring should alias $2000 and $2400")
	}
	if p.ReadVRAM(0x2800) == 0x11 {
		t.Fatal("horizontal mirroring should not alias $2000 and $2800")
	}
}

func TestVerticalMirroringMapsLeftNametablesTogether(t *testing.T) {
	p, m := newTestPPU()
	m.mirroring = mapper.Vertical
	p.WriteVRAM(0x2000, 0x22)
	if p.ReadVRAM(0x2800) != 0x22 {
		t.Fatal("vertical mirroring should alias $2000 and $2800")
	}
}

func TestSpriteOverflowFlagSetBeyondEightSprites(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuMask = 0x18
	p.updateRenderingFlags()
	for i := 0; i < 9; i++ {
		base := i * 4
		p.oam[base] = 10 // Y
		p.oam[base+3] = uint8(i * 8)
	}
	p.scanline = 11
	p.evaluateSprites()
	if !p.spriteOverflow {
		t.Fatal("expected sprite overflow with 9 sprites on one scanline")
	}
	if p.spriteCount != 8 {
		t.Fatalf("spriteCount = %d, want 8 (hardware caps secondary OAM)", p.spriteCount)
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuCtrl = 0x80
	p.v = 0x2ABC
	p.scanline = 120
	p.cycle = 77
	p.frameCount = 42
	p.WriteVRAM(0x2000, 0x99)
	p.writePaletteByte(0x3F01, 0x16)

	state := p.SaveState()

	p2, _ := newTestPPU()
	if err := p2.LoadState(state); err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}
	if p2.ppuCtrl != 0x80 || p2.v != 0x2ABC || p2.scanline != 120 || p2.cycle != 77 || p2.frameCount != 42 {
		t.Fatal("register/position state did not round-trip")
	}
	if p2.ReadVRAM(0x2000) != 0x99 {
		t.Fatal("nametable RAM did not round-trip")
	}
	if p2.readPaletteByte(0x3F01) != 0x16 {
		t.Fatal("palette RAM did not round-trip")
	}
}

func TestA12RisesOncePerRenderedScanlineWhenRenderingEnabled(t *testing.T) {
	p, m := newTestPPU()
	p.renderingEnabled = true
	p.scanline = 10
	p.cycle = 259
	p.Step() // lands on cycle 260: a12 should rise
	if m.a12Rises != 1 {
		t.Fatalf("a12Rises = %d, want 1 after crossing dot 260", m.a12Rises)
	}
}

func TestA12NeverRisesWhenRenderingDisabled(t *testing.T) {
	p, m := newTestPPU()
	p.renderingEnabled = false
	p.scanline = 10
	p.cycle = 259
	p.Step()
	if m.a12Rises != 0 {
		t.Fatal("A12 must not toggle while rendering is disabled")
	}
}

func TestLoadStateRejectsShortBuffer(t *testing.T) {
	p, _ := newTestPPU()
	if err := p.LoadState([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error loading a truncated save state")
	}
}
