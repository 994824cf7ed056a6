package mapper

import "nescore/internal/rom"

// uxrom implements mapper 2 (UxROM): a write anywhere in $8000-$FFFF
// selects the 16KB bank visible at $8000-$BFFF; $C000-$FFFF is fixed to the
// last bank. CHR is always 8KB RAM. Writes suffer the classic cartridge bus
// conflict: the value actually latched is ANDed with the ROM byte already
// sitting on the bus at that address.
type uxrom struct {
	prg      []uint8
	chr      chrStore
	mirror   Mirroring
	bank     uint8
	bankMask uint8
}

func newUxROM(r *rom.ROM) *uxrom {
	return &uxrom{
		prg:      r.PRG,
		chr:      newCHRStore(r),
		mirror:   romMirroring(r.Mirroring),
		bankMask: uint8(r.PRGBankCount16K() - 1),
	}
}

func (m *uxrom) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xC000:
		offset := int(m.bank)*0x4000 + int(addr-0x8000)
		return m.prg[offset]
	case addr >= 0xC000:
		last := len(m.prg) - 0x4000
		return m.prg[last+int(addr-0xC000)]
	}
	return 0
}

func (m *uxrom) WritePRG(addr uint16, value uint8) {
	if addr < 0x8000 {
		return
	}
	busByte := m.ReadPRG(addr)
	m.bank = (value & busByte) & m.bankMask
}

func (m *uxrom) ReadCHR(addr uint16) uint8        { return m.chr.read(int(addr)) }
func (m *uxrom) WriteCHR(addr uint16, value uint8) { m.chr.write(int(addr), value) }
func (m *uxrom) Mirroring() Mirroring             { return m.mirror }
func (m *uxrom) Tick(a12 bool)                    {}
func (m *uxrom) IRQPending() bool                 { return false }

func (m *uxrom) SaveState() []byte {
	out := []byte{m.bank}
	return append(out, m.chr.data...)
}

func (m *uxrom) LoadState(data []byte) error {
	if len(data) < 1 {
		return nil
	}
	m.bank = data[0]
	rest := data[1:]
	if len(rest) >= len(m.chr.data) {
		copy(m.chr.data, rest[:len(m.chr.data)])
	}
	return nil
}
