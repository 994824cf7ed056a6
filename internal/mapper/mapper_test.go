package mapper

import (
	"testing"

	"nescore/internal/rom"
)

func makeROM(mapperNum, prgBanks16K, chrBanks8K int) *rom.ROM {
	r := &rom.ROM{
		MapperNumber: mapperNum,
		PRG:          make([]uint8, prgBanks16K*16*1024),
		Mirroring:    rom.MirrorHorizontal,
	}
	if chrBanks8K > 0 {
		r.CHR = make([]uint8, chrBanks8K*8*1024)
	} else {
		r.HasCHRRAM = true
	}
	return r
}

func TestNewUnsupportedMapper(t *testing.T) {
	if _, err := New(makeROM(99, 2, 1)); err == nil {
		t.Fatal("expected unsupported mapper error")
	}
}

func TestNROMMirrorsSmallPRG(t *testing.T) {
	r := makeROM(0, 1, 1)
	r.PRG[0] = 0x42
	m, err := New(r)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.ReadPRG(0x8000); got != 0x42 {
		t.Fatalf("ReadPRG(0x8000) = %#x, want 0x42", got)
	}
	if got := m.ReadPRG(0xC000); got != 0x42 {
		t.Fatalf("ReadPRG(0xC000) = %#x, want mirrored 0x42", got)
	}
}

func TestUxROMBankSwitch(t *testing.T) {
	r := makeROM(2, 4, 0)
	for bank := 0; bank < 4; bank++ {
		r.PRG[bank*0x4000] = byte(bank)
	}
	last := len(r.PRG) - 0x4000
	r.PRG[last] = 0xAA
	m, err := New(r)
	if err != nil {
		t.Fatal(err)
	}
	m.WritePRG(0x8000, 0xFF) // bus-conflict AND with ROM byte 0x00 at bank 0 -> 0
	if got := m.ReadPRG(0x8000); got != 0 {
		t.Fatalf("after bus-conflicted write, bank = %#x, want 0", got)
	}
	if got := m.ReadPRG(0xC000); got != 0xAA {
		t.Fatalf("fixed last bank byte = %#x, want 0xAA", got)
	}
}

func TestMMC1ShiftRegisterCommitsOnFifthWrite(t *testing.T) {
	r := makeROM(1, 16, 0)
	m, err := New(r)
	if err != nil {
		t.Fatal(err)
	}
	// Write control=0x02 (value bits, LSB first) -> vertical mirroring.
	bits := []uint8{0, 1, 0, 0, 0} // 0b00010 written LSB-first = 2
	for _, b := range bits {
		m.WritePRG(0x8000, b)
	}
	if m.Mirroring() != Vertical {
		t.Fatalf("mirroring = %v, want Vertical", m.Mirroring())
	}
}

func TestMMC3IRQFiresAfterReload(t *testing.T) {
	r := makeROM(4, 8, 8)
	m, err := New(r)
	if err != nil {
		t.Fatal(err)
	}
	m.WritePRG(0xC000, 2) // latch = 2
	m.WritePRG(0xC001, 0) // force reload
	m.WritePRG(0xE001, 0) // enable IRQ

	for i := 0; i < 3; i++ {
		m.Tick(false)
		m.Tick(true) // rising edge
	}
	if !m.IRQPending() {
		t.Fatal("expected IRQ pending after counter reaches 0")
	}
}

func TestCNROMSaveLoadRoundTrip(t *testing.T) {
	r := makeROM(3, 2, 4)
	m, err := New(r)
	if err != nil {
		t.Fatal(err)
	}
	m.WritePRG(0x8000, 3)
	snap := m.SaveState()

	m2, _ := New(r)
	if err := m2.LoadState(snap); err != nil {
		t.Fatal(err)
	}
	if m2.(*cnrom).bank != m.(*cnrom).bank {
		t.Fatal("CHR bank did not round-trip")
	}
}
