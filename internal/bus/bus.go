// Package bus implements the CPU's view of the NES address space: the 2KB
// internal RAM and its mirroring, register routing to the PPU/APU/input
// ports, the mapper's PRG window, OAM DMA, and the DMC DMA cycle-stealing
// arbitration that only a component wired to both DMA sources can resolve.
// The Console owns stepping order; Bus owns decoding and wiring.
package bus

import (
	"errors"

	"nescore/internal/apu"
	"nescore/internal/cpu"
	"nescore/internal/input"
	"nescore/internal/mapper"
	"nescore/internal/ppu"
)

const ramSize = 0x0800

// Bus wires the CPU's MemoryInterface to the PPU, APU, input ports, and
// cartridge mapper, and arbitrates OAM DMA against DMC DMA cycle stealing.
type Bus struct {
	ram [ramSize]uint8

	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Input  *input.InputState
	Mapper mapper.Mapper

	// stallCycles counts CPU cycles the Console must burn (ticking PPU/APU
	// but not the CPU) to service OAM DMA or DMC DMA.
	stallCycles uint64
}

// New builds a Bus with the CPU, PPU, APU, and input ports wired together.
// Attach a cartridge with AttachMapper, then call Reset before stepping.
func New() *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}
	b.CPU = cpu.New(b)
	b.APU.SetMemory(b)
	b.APU.SetStallFunc(b.stealCyclesForDMC)
	b.APU.SetIRQCallback(func(bool) { b.syncIRQLine() })
	b.PPU.SetNMICallback(b.pulseNMI)
	return b
}

// AttachMapper plugs in a cartridge. The mapper's CHR banks and mirroring
// become visible to the PPU immediately; the reset vector isn't readable
// (and Reset shouldn't be called) until this has run.
func (b *Bus) AttachMapper(m mapper.Mapper) {
	b.Mapper = m
	b.PPU.SetMapper(m)
}

// Reset clears internal RAM and resets every attached component, including
// the CPU, which reads its reset vector through the mapper.
func (b *Bus) Reset() {
	for i := range b.ram {
		b.ram[i] = 0
	}
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.stallCycles = 0
	b.CPU.Reset()
}

// pulseNMI turns the PPU's momentary "NMI fired" callback into the falling
// edge CPU.SetNMI expects.
func (b *Bus) pulseNMI() {
	b.CPU.SetNMI(true)
	b.CPU.SetNMI(false)
}

// syncIRQLine recomputes the wired-OR IRQ line (APU frame counter, APU DMC,
// mapper) and pushes the result to the CPU. The Console also calls this
// after every CPU step, since the mapper's IRQPending state changes on PPU
// ticks the APU's own callback doesn't see.
func (b *Bus) syncIRQLine() {
	line := b.APU.FrameIRQ() || b.APU.DMCIRQ()
	if b.Mapper != nil {
		line = line || b.Mapper.IRQPending()
	}
	b.CPU.SetIRQ(line)
}

// SyncIRQLine is the exported form of syncIRQLine for the Console to call
// after mapper/PPU ticks that might have raised or cleared IRQPending.
func (b *Bus) SyncIRQLine() { b.syncIRQLine() }

// Read services a CPU read anywhere in $0000-$FFFF.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr&0x07FF]
	case addr < 0x4000:
		return b.PPU.ReadRegister(0x2000 + (addr & 7))
	case addr == 0x4015:
		return b.APU.ReadStatus()
	case addr == 0x4016:
		return b.Input.Read(0x4016)
	case addr == 0x4017:
		return b.Input.Read(0x4017)
	case addr < 0x4018:
		return 0 // write-only APU registers read back as open bus
	case addr < 0x4020:
		return 0 // unused I/O test space
	default:
		if b.Mapper != nil {
			return b.Mapper.ReadPRG(addr)
		}
		return 0
	}
}

// Write services a CPU write anywhere in $0000-$FFFF.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = value
	case addr < 0x4000:
		b.PPU.WriteRegister(0x2000+(addr&7), value)
	case addr == 0x4014:
		b.triggerOAMDMA(value)
	case addr == 0x4016:
		b.Input.Write(0x4016, value)
	case addr == 0x4017:
		b.APU.WriteRegister(0x4017, value)
		b.syncIRQLine()
	case addr < 0x4018:
		b.APU.WriteRegister(addr, value)
	case addr < 0x4020:
		// unused
	default:
		if b.Mapper != nil {
			b.Mapper.WritePRG(addr, value)
		}
	}
}

// triggerOAMDMA copies page*$100..page*$100+$FF into OAM and schedules the
// 513/514-cycle CPU stall (odd CPU cycle counts cost the extra alignment
// cycle). The copy itself happens in one shot; only the timing is paced
// by the Console draining stallCycles.
func (b *Bus) triggerOAMDMA(page uint8) {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		b.PPU.WriteOAM(uint8(i), b.Read(base+uint16(i)))
	}
	cycles := uint64(513)
	if b.CPU.Cycles()%2 == 1 {
		cycles = 514
	}
	b.stallCycles += cycles
}

// stealCyclesForDMC answers the APU's DMC DMA stall request. The model is
// the simple one resolved for this core: a baseline 3-cycle stall, widened
// to 4 when it lands during an in-progress OAM DMA. The real hardware's
// further "+1 when it collides with a CPU write cycle" case isn't modeled
// here: this core steps the CPU one whole instruction at a time rather than
// cycle-by-cycle, so there's no mid-instruction write cycle to collide with.
func (b *Bus) stealCyclesForDMC(requested int) {
	cycles := uint64(requested)
	if b.stallCycles > 0 {
		cycles++
	}
	b.stallCycles += cycles
}

// PendingStallCycles reports how many CPU cycles are still owed to DMA.
func (b *Bus) PendingStallCycles() uint64 { return b.stallCycles }

// ConsumeStallCycle burns one owed DMA cycle.
func (b *Bus) ConsumeStallCycle() {
	if b.stallCycles > 0 {
		b.stallCycles--
	}
}

var errShortBusState = errors.New("bus: save state too short")

// SaveState packs internal RAM and both controllers' shift-register state.
// The CPU, PPU, APU, and mapper are saved separately by their owners.
func (b *Bus) SaveState() []byte {
	data := make([]byte, 0, ramSize+6)
	data = append(data, b.ram[:]...)
	data = append(data, b.Input.SaveState()...)
	return data
}

// LoadState restores state written by SaveState.
func (b *Bus) LoadState(data []byte) error {
	if len(data) < ramSize+6 {
		return errShortBusState
	}
	copy(b.ram[:], data[:ramSize])
	if !b.Input.LoadState(data[ramSize : ramSize+6]) {
		return errShortBusState
	}
	return nil
}
