package mapper

import "nescore/internal/rom"

// mmc3 implements mapper 4 (MMC3/TxROM): two 8KB-swappable PRG windows plus
// two fixed windows (the arrangement depends on the PRG mode bit), six CHR
// bank registers covering two 2KB and four 1KB windows (arrangement flipped
// by the CHR mode bit), mirroring and PRG-RAM protect registers, and a
// scanline IRQ counter clocked by the PPU's A12 rising edges.
type mmc3 struct {
	prg  []uint8
	chr  chrStore
	sram [0x2000]uint8

	bankSelect uint8
	prgMode    uint8
	chrMode    uint8
	registers  [8]uint8

	mirror             Mirroring
	prgRAMEnabled      bool
	prgRAMWriteProtect bool

	irqLatch      uint8
	irqCounter    uint8
	irqReloadFlag bool
	irqEnabled    bool
	irqPending    bool

	lastA12  bool
	prgBanks int
}

func newMMC3(r *rom.ROM) *mmc3 {
	return &mmc3{
		prg:           r.PRG,
		chr:           newCHRStore(r),
		mirror:        romMirroring(r.Mirroring),
		prgRAMEnabled: true,
		prgBanks:      r.PRGBankCount16K() * 2, // 8KB banks
	}
}

func (m *mmc3) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled {
			return m.sram[addr-0x6000]
		}
		return 0
	case addr >= 0x8000 && addr < 0xA000:
		return m.prgByte(m.bank8000(), int(addr-0x8000))
	case addr >= 0xA000 && addr < 0xC000:
		return m.prgByte(int(m.registers[7]), int(addr-0xA000))
	case addr >= 0xC000 && addr < 0xE000:
		return m.prgByte(m.bankC000(), int(addr-0xC000))
	case addr >= 0xE000:
		return m.prgByte(m.prgBanks-1, int(addr-0xE000))
	}
	return 0
}

func (m *mmc3) bank8000() int {
	if m.prgMode == 0 {
		return int(m.registers[6])
	}
	return m.prgBanks - 2
}

func (m *mmc3) bankC000() int {
	if m.prgMode == 0 {
		return m.prgBanks - 2
	}
	return int(m.registers[6])
}

func (m *mmc3) prgByte(bank8K, offset int) uint8 {
	idx := bank8K*0x2000 + offset
	if idx < 0 || idx >= len(m.prg) {
		return 0
	}
	return m.prg[idx]
}

func (m *mmc3) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled && !m.prgRAMWriteProtect {
			m.sram[addr-0x6000] = value
		}
	case addr >= 0x8000 && addr < 0xA000:
		if addr&1 == 0 {
			m.bankSelect = value & 0x07
			m.prgMode = (value >> 6) & 0x01
			m.chrMode = (value >> 7) & 0x01
		} else {
			m.registers[m.bankSelect] = value
		}
	case addr >= 0xA000 && addr < 0xC000:
		if addr&1 == 0 {
			if value&1 == 0 {
				m.mirror = Vertical
			} else {
				m.mirror = Horizontal
			}
		} else {
			m.prgRAMWriteProtect = value&0x40 != 0
			m.prgRAMEnabled = value&0x80 != 0
		}
	case addr >= 0xC000 && addr < 0xE000:
		if addr&1 == 0 {
			m.irqLatch = value
		} else {
			m.irqCounter = 0
			m.irqReloadFlag = true
		}
	case addr >= 0xE000:
		if addr&1 == 0 {
			m.irqEnabled = false
			m.irqPending = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mmc3) ReadCHR(addr uint16) uint8         { return m.chr.read(m.chrOffset(addr)) }
func (m *mmc3) WriteCHR(addr uint16, value uint8) { m.chr.write(m.chrOffset(addr), value) }

func (m *mmc3) chrOffset(addr uint16) int {
	if m.chrMode == 0 {
		switch {
		case addr < 0x0800:
			return int(m.registers[0]&0xFE)*0x400 + int(addr)
		case addr < 0x1000:
			return int(m.registers[1]&0xFE)*0x400 + int(addr-0x0800)
		case addr < 0x1400:
			return int(m.registers[2])*0x400 + int(addr-0x1000)
		case addr < 0x1800:
			return int(m.registers[3])*0x400 + int(addr-0x1400)
		case addr < 0x1C00:
			return int(m.registers[4])*0x400 + int(addr-0x1800)
		default:
			return int(m.registers[5])*0x400 + int(addr-0x1C00)
		}
	}
	switch {
	case addr < 0x0400:
		return int(m.registers[2])*0x400 + int(addr)
	case addr < 0x0800:
		return int(m.registers[3])*0x400 + int(addr-0x0400)
	case addr < 0x0C00:
		return int(m.registers[4])*0x400 + int(addr-0x0800)
	case addr < 0x1000:
		return int(m.registers[5])*0x400 + int(addr-0x0C00)
	case addr < 0x1800:
		return int(m.registers[0]&0xFE)*0x400 + int(addr-0x1000)
	default:
		return int(m.registers[1]&0xFE)*0x400 + int(addr-0x1800)
	}
}

func (m *mmc3) Mirroring() Mirroring { return m.mirror }

// Tick watches for the PPU address bus's A12 line rising (observed around
// dot 260 of a visible scanline when sprite fetches switch pattern tables)
// and clocks the scanline IRQ counter on each such edge.
func (m *mmc3) Tick(a12 bool) {
	rising := a12 && !m.lastA12
	m.lastA12 = a12
	if !rising {
		return
	}
	if m.irqCounter == 0 || m.irqReloadFlag {
		m.irqCounter = m.irqLatch
		m.irqReloadFlag = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

func (m *mmc3) IRQPending() bool { return m.irqPending }

func (m *mmc3) SaveState() []byte {
	out := []byte{
		m.bankSelect, m.prgMode, m.chrMode,
	}
	out = append(out, m.registers[:]...)
	out = append(out, boolByte(m.prgRAMEnabled), boolByte(m.prgRAMWriteProtect))
	out = append(out, m.irqLatch, m.irqCounter, boolByte(m.irqReloadFlag), boolByte(m.irqEnabled), boolByte(m.irqPending))
	out = append(out, byte(m.mirror), boolByte(m.lastA12))
	out = append(out, m.sram[:]...)
	if m.chr.isRAM {
		out = append(out, m.chr.data...)
	}
	return out
}

func (m *mmc3) LoadState(data []byte) error {
	const fixed = 3 + 8 + 2 + 5 + 2
	if len(data) < fixed+0x2000 {
		return nil
	}
	i := 0
	m.bankSelect, m.prgMode, m.chrMode = data[i], data[i+1], data[i+2]
	i += 3
	copy(m.registers[:], data[i:i+8])
	i += 8
	m.prgRAMEnabled, m.prgRAMWriteProtect = data[i] != 0, data[i+1] != 0
	i += 2
	m.irqLatch, m.irqCounter = data[i], data[i+1]
	m.irqReloadFlag, m.irqEnabled, m.irqPending = data[i+2] != 0, data[i+3] != 0, data[i+4] != 0
	i += 5
	m.mirror, m.lastA12 = Mirroring(data[i]), data[i+1] != 0
	i += 2
	copy(m.sram[:], data[i:i+0x2000])
	i += 0x2000
	rest := data[i:]
	if m.chr.isRAM && len(rest) >= len(m.chr.data) {
		copy(m.chr.data, rest[:len(m.chr.data)])
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
