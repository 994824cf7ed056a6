package mapper

import "nescore/internal/rom"

// nrom implements mapper 0 (NROM): no bank switching. PRG is 16KB (mirrored
// across $8000-$BFFF and $C000-$FFFF) or 32KB ($8000-$FFFF); CHR is a fixed
// 8KB. Mirroring is whatever the header says and never changes.
type nrom struct {
	prg   []uint8
	chr   chrStore
	mirror Mirroring
	sram  [0x2000]uint8
}

func newNROM(r *rom.ROM) *nrom {
	return &nrom{
		prg:    r.PRG,
		chr:    newCHRStore(r),
		mirror: romMirroring(r.Mirroring),
	}
}

func (m *nrom) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.sram[addr-0x6000]
	case addr >= 0x8000:
		return m.prg[int(addr-0x8000)%len(m.prg)]
	}
	return 0
}

func (m *nrom) WritePRG(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.sram[addr-0x6000] = value
	}
}

func (m *nrom) ReadCHR(addr uint16) uint8        { return m.chr.read(int(addr)) }
func (m *nrom) WriteCHR(addr uint16, value uint8) { m.chr.write(int(addr), value) }
func (m *nrom) Mirroring() Mirroring             { return m.mirror }
func (m *nrom) Tick(a12 bool)                    {}
func (m *nrom) IRQPending() bool                 { return false }

func (m *nrom) SaveState() []byte {
	out := append([]byte(nil), m.sram[:]...)
	if m.chr.isRAM {
		out = append(out, m.chr.data...)
	}
	return out
}

func (m *nrom) LoadState(data []byte) error {
	if len(data) < 0x2000 {
		return nil
	}
	copy(m.sram[:], data[:0x2000])
	if m.chr.isRAM && len(data) >= 0x2000+len(m.chr.data) {
		copy(m.chr.data, data[0x2000:0x2000+len(m.chr.data)])
	}
	return nil
}
