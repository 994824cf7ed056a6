// Package cpu implements the 6502 (2A03) CPU emulation for the NES.
package cpu

import (
	"encoding/binary"
	"errors"
)

var errShortCPUState = errors.New("cpu: save state too short")

// Addressing modes
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	zeroPageMask = 0xFF
	pageMask     = 0xFF00

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Instruction describes one opcode's dispatch shape: its mnemonic, byte
// length, base cycle count (before any page-crossing or branch-taken
// penalty) and addressing mode.
type Instruction struct {
	Name   string
	Opcode uint8
	Bytes  uint8
	Cycles uint8
	Mode   AddressingMode
}

// MemoryInterface is the bus as seen by the CPU: every access - including
// dummy reads performed purely for their side effects - goes through here,
// so a bus implementation can model DMA cycle-stealing and mapper IRQ
// clocking against real CPU reads.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU represents the 6502 processor used in the NES (the NMOS 6502 core
// found in the 2A03, decimal mode disabled).
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	C bool
	Z bool
	I bool
	D bool
	B bool
	V bool
	N bool

	memory MemoryInterface
	cycles uint64

	instructions [256]*Instruction

	nmiPending  bool
	irqPending  bool
	nmiPrevious bool
}

// New creates a new CPU instance bound to the given bus.
func New(memory MemoryInterface) *CPU {
	cpu := &CPU{
		memory: memory,
		SP:     0xFD,
	}
	cpu.initInstructions()
	return cpu
}

// Reset performs the 6502 reset sequence: registers take their power-up
// values, five dummy bus reads occur (the real hardware drives the address
// bus through the stack-pointer decrement sequence without writing), and PC
// is loaded from the reset vector. Takes 7 cycles.
func (cpu *CPU) Reset() {
	cpu.A = 0x00
	cpu.X = 0x00
	cpu.Y = 0x00
	cpu.SP = 0xFD

	cpu.C = false
	cpu.Z = false
	cpu.I = true
	cpu.D = false
	cpu.B = true
	cpu.V = false
	cpu.N = false

	for i := 0; i < 5; i++ {
		cpu.memory.Read(cpu.PC)
		cpu.cycles++
	}

	low := uint16(cpu.memory.Read(resetVector))
	high := uint16(cpu.memory.Read(resetVector + 1))
	cpu.PC = (high << 8) | low
	cpu.cycles += 2
}

// Cycles returns the total number of CPU cycles executed since reset.
func (cpu *CPU) Cycles() uint64 { return cpu.cycles }

// SetNMI sets the NMI line state. NMI is edge-triggered: it fires on the
// falling edge (true -> false transition), matching the PPU's /NMI pin.
func (cpu *CPU) SetNMI(state bool) {
	if cpu.nmiPrevious && !state {
		cpu.nmiPending = true
	}
	cpu.nmiPrevious = state
}

// SetIRQ sets the level-triggered IRQ line state (the wired-OR of the APU
// frame counter, DMC, and any mapper IRQ source).
func (cpu *CPU) SetIRQ(state bool) {
	cpu.irqPending = state
}

// Step executes one unit of work and returns the cycles it took: either a
// pending interrupt is serviced (as its own 7-cycle step, checked before any
// opcode is fetched) or one instruction is decoded and executed.
func (cpu *CPU) Step() uint64 {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.handleNMI()
		return 7
	}
	if cpu.irqPending && !cpu.I {
		cpu.handleIRQ()
		return 7
	}

	opcode := cpu.memory.Read(cpu.PC)
	instruction := cpu.instructions[opcode]
	if instruction == nil {
		cpu.PC++
		cpu.cycles += 2
		return 2
	}

	address, pageCrossed := cpu.getOperandAddress(instruction.Mode)
	extraCycles := cpu.executeInstruction(opcode, address, pageCrossed)

	if pageCrossed {
		switch opcode {
		case 0x9D, 0x99, 0x91, 0x9C, 0x9E, 0x9F, 0x9B, 0x93:
			// indexed stores always pay the penalty; it is already in their base cycle count
		default:
			switch opcode {
			case 0xBD, 0xB9, 0xB1, 0xBE, 0xBC, 0x7D, 0x79, 0x71, 0x3D, 0x39, 0x31,
				0x1D, 0x19, 0x11, 0x5D, 0x59, 0x51, 0xDD, 0xD9, 0xD1,
				0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC,
				0xBF, 0xB3, 0xBB:
				extraCycles++
			}
		}
	}

	total := uint64(instruction.Cycles) + uint64(extraCycles)
	cpu.cycles += total
	return total
}

func (cpu *CPU) getOperandAddress(mode AddressingMode) (uint16, bool) {
	pageCrossed := false

	switch mode {
	case Implied, Accumulator:
		cpu.PC++
		return 0, false

	case Immediate:
		address := cpu.PC + 1
		cpu.PC += 2
		return address, false

	case ZeroPage:
		address := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		return address, false

	case ZeroPageX:
		base := cpu.memory.Read(cpu.PC + 1)
		address := uint16((base + cpu.X) & zeroPageMask)
		cpu.PC += 2
		return address, false

	case ZeroPageY:
		base := cpu.memory.Read(cpu.PC + 1)
		address := uint16((base + cpu.Y) & zeroPageMask)
		cpu.PC += 2
		return address, false

	case Relative:
		offset := int8(cpu.memory.Read(cpu.PC + 1))
		oldPC := cpu.PC + 2
		newPC := uint16(int32(oldPC) + int32(offset))
		cpu.PC = oldPC
		pageCrossed = (oldPC & pageMask) != (newPC & pageMask)
		return newPC, pageCrossed

	case Absolute:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		address := (high << 8) | low
		cpu.PC += 3
		return address, false

	case AbsoluteX:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.X)
		cpu.PC += 3
		pageCrossed = (base & pageMask) != (address & pageMask)
		return address, pageCrossed

	case AbsoluteY:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 3
		pageCrossed = (base & pageMask) != (address & pageMask)
		return address, pageCrossed

	case Indirect: // JMP only
		lowPtr := uint16(cpu.memory.Read(cpu.PC + 1))
		highPtr := uint16(cpu.memory.Read(cpu.PC + 2))
		ptr := (highPtr << 8) | lowPtr

		var address uint16
		if (ptr & zeroPageMask) == zeroPageMask {
			low := uint16(cpu.memory.Read(ptr))
			high := uint16(cpu.memory.Read(ptr & pageMask)) // hardware bug: wraps within page
			address = (high << 8) | low
		} else {
			low := uint16(cpu.memory.Read(ptr))
			high := uint16(cpu.memory.Read(ptr + 1))
			address = (high << 8) | low
		}
		cpu.PC += 3
		return address, false

	case IndexedIndirect: // (zp,X)
		base := cpu.memory.Read(cpu.PC + 1)
		ptr := (base + cpu.X) & zeroPageMask
		low := uint16(cpu.memory.Read(uint16(ptr)))
		high := uint16(cpu.memory.Read(uint16((ptr + 1) & zeroPageMask)))
		address := (high << 8) | low
		cpu.PC += 2
		return address, false

	case IndirectIndexed: // (zp),Y
		ptr := uint16(cpu.memory.Read(cpu.PC + 1))
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read((ptr + 1) & zeroPageMask))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 2
		pageCrossed = (base & pageMask) != (address & pageMask)
		return address, pageCrossed

	default:
		return 0, false
	}
}

func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value & 0xFF))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = (value & nFlagMask) != 0
}

func (cpu *CPU) handleNMI() {
	cpu.pushWord(cpu.PC)
	status := cpu.GetStatusByte() & ^uint8(bFlagMask)
	status |= unusedMask
	cpu.push(status)
	cpu.I = true
	low := uint16(cpu.memory.Read(nmiVector))
	high := uint16(cpu.memory.Read(nmiVector + 1))
	cpu.PC = (high << 8) | low
	cpu.cycles += 7
}

func (cpu *CPU) handleIRQ() {
	cpu.pushWord(cpu.PC)
	status := cpu.GetStatusByte() & ^uint8(bFlagMask)
	status |= unusedMask
	cpu.push(status)
	cpu.I = true
	low := uint16(cpu.memory.Read(irqVector))
	high := uint16(cpu.memory.Read(irqVector + 1))
	cpu.PC = (high << 8) | low
	cpu.cycles += 7
}

// GetStatusByte packs the individual flags into the processor status byte.
func (cpu *CPU) GetStatusByte() uint8 {
	var status uint8
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	status |= unusedMask
	if cpu.B {
		status |= bFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// SetStatusByte unpacks a processor status byte into the individual flags.
func (cpu *CPU) SetStatusByte(status uint8) {
	cpu.N = (status & nFlagMask) != 0
	cpu.V = (status & vFlagMask) != 0
	cpu.B = (status & bFlagMask) != 0
	cpu.D = (status & dFlagMask) != 0
	cpu.I = (status & iFlagMask) != 0
	cpu.Z = (status & zFlagMask) != 0
	cpu.C = (status & cFlagMask) != 0
}

// --- official instruction bodies ---

func (cpu *CPU) lda(address uint16) uint8 {
	cpu.A = cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) ldx(address uint16) uint8 {
	cpu.X = cpu.memory.Read(address)
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) ldy(address uint16) uint8 {
	cpu.Y = cpu.memory.Read(address)
	cpu.setZN(cpu.Y)
	return 0
}

func (cpu *CPU) sta(address uint16) uint8 { cpu.memory.Write(address, cpu.A); return 0 }
func (cpu *CPU) stx(address uint16) uint8 { cpu.memory.Write(address, cpu.X); return 0 }
func (cpu *CPU) sty(address uint16) uint8 { cpu.memory.Write(address, cpu.Y); return 0 }

func (cpu *CPU) adc(address uint16) uint8 {
	value := cpu.memory.Read(address)
	carry := uint8(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + uint16(carry)
	cpu.V = ((cpu.A^uint8(result))&0x80) != 0 && ((cpu.A^value)&0x80) == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) sbc(address uint16) uint8 {
	value := cpu.memory.Read(address) ^ 0xFF
	carry := uint8(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + uint16(carry)
	cpu.V = ((cpu.A^uint8(result))&0x80) != 0 && ((cpu.A^value)&0x80) == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) and(address uint16) uint8 { cpu.A &= cpu.memory.Read(address); cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) ora(address uint16) uint8 { cpu.A |= cpu.memory.Read(address); cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) eor(address uint16) uint8 { cpu.A ^= cpu.memory.Read(address); cpu.setZN(cpu.A); return 0 }

func (cpu *CPU) asl(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = (value & 0x80) != 0
	value <<= 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) lsr(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = (value & 0x01) != 0
	value >>= 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) rol(address uint16) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = (value & 0x80) != 0
	value <<= 1
	if oldCarry {
		value |= 0x01
	}
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) ror(address uint16) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = (value & 0x01) != 0
	value >>= 1
	if oldCarry {
		value |= 0x80
	}
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) cmp(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = cpu.A >= value
	cpu.setZN(cpu.A - value)
	return 0
}

func (cpu *CPU) cpx(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = cpu.X >= value
	cpu.setZN(cpu.X - value)
	return 0
}

func (cpu *CPU) cpy(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = cpu.Y >= value
	cpu.setZN(cpu.Y - value)
	return 0
}

func (cpu *CPU) inc(address uint16) uint8 {
	value := cpu.memory.Read(address) + 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) dec(address uint16) uint8 {
	value := cpu.memory.Read(address) - 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) inx(uint16) uint8 { cpu.X++; cpu.setZN(cpu.X); return 0 }
func (cpu *CPU) dex(uint16) uint8 { cpu.X--; cpu.setZN(cpu.X); return 0 }
func (cpu *CPU) iny(uint16) uint8 { cpu.Y++; cpu.setZN(cpu.Y); return 0 }
func (cpu *CPU) dey(uint16) uint8 { cpu.Y--; cpu.setZN(cpu.Y); return 0 }

func (cpu *CPU) tax(uint16) uint8 { cpu.X = cpu.A; cpu.setZN(cpu.X); return 0 }
func (cpu *CPU) txa(uint16) uint8 { cpu.A = cpu.X; cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) tay(uint16) uint8 { cpu.Y = cpu.A; cpu.setZN(cpu.Y); return 0 }
func (cpu *CPU) tya(uint16) uint8 { cpu.A = cpu.Y; cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) tsx(uint16) uint8 { cpu.X = cpu.SP; cpu.setZN(cpu.X); return 0 }
func (cpu *CPU) txs(uint16) uint8 { cpu.SP = cpu.X; return 0 }

func (cpu *CPU) pha(uint16) uint8 { cpu.push(cpu.A); return 0 }
func (cpu *CPU) pla(uint16) uint8 { cpu.A = cpu.pop(); cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) php(uint16) uint8 { cpu.push(cpu.GetStatusByte() | bFlagMask); return 0 }
func (cpu *CPU) plp(uint16) uint8 { cpu.SetStatusByte(cpu.pop()); return 0 }

func (cpu *CPU) clc(uint16) uint8 { cpu.C = false; return 0 }
func (cpu *CPU) sec(uint16) uint8 { cpu.C = true; return 0 }
func (cpu *CPU) cli(uint16) uint8 { cpu.I = false; return 0 }
func (cpu *CPU) sei(uint16) uint8 { cpu.I = true; return 0 }
func (cpu *CPU) clv(uint16) uint8 { cpu.V = false; return 0 }
func (cpu *CPU) cld(uint16) uint8 { cpu.D = false; return 0 }
func (cpu *CPU) sed(uint16) uint8 { cpu.D = true; return 0 }

func (cpu *CPU) jmp(address uint16) uint8 { cpu.PC = address; return 0 }

func (cpu *CPU) jsr(address uint16) uint8 {
	cpu.pushWord(cpu.PC - 1)
	cpu.PC = address
	return 0
}

func (cpu *CPU) rts(uint16) uint8 { cpu.PC = cpu.popWord() + 1; return 0 }

func (cpu *CPU) rti(uint16) uint8 {
	cpu.SetStatusByte(cpu.pop())
	cpu.PC = cpu.popWord()
	return 0
}

func (cpu *CPU) branch(take bool, address uint16, pageCrossed bool) uint8 {
	if !take {
		return 0
	}
	cpu.PC = address
	if pageCrossed {
		return 2
	}
	return 1
}

func (cpu *CPU) bcc(address uint16, pc bool) uint8 { return cpu.branch(!cpu.C, address, pc) }
func (cpu *CPU) bcs(address uint16, pc bool) uint8 { return cpu.branch(cpu.C, address, pc) }
func (cpu *CPU) bne(address uint16, pc bool) uint8 { return cpu.branch(!cpu.Z, address, pc) }
func (cpu *CPU) beq(address uint16, pc bool) uint8 { return cpu.branch(cpu.Z, address, pc) }
func (cpu *CPU) bpl(address uint16, pc bool) uint8 { return cpu.branch(!cpu.N, address, pc) }
func (cpu *CPU) bmi(address uint16, pc bool) uint8 { return cpu.branch(cpu.N, address, pc) }
func (cpu *CPU) bvc(address uint16, pc bool) uint8 { return cpu.branch(!cpu.V, address, pc) }
func (cpu *CPU) bvs(address uint16, pc bool) uint8 { return cpu.branch(cpu.V, address, pc) }

func (cpu *CPU) bit(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.N = (value & nFlagMask) != 0
	cpu.V = (value & vFlagMask) != 0
	cpu.Z = (cpu.A & value) == 0
	return 0
}

func (cpu *CPU) nop(uint16) uint8 { return 0 }

func (cpu *CPU) brk(uint16) uint8 {
	cpu.PC++ // padding byte between BRK and the return address it pushes
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.GetStatusByte() | bFlagMask)
	cpu.I = true
	low := uint16(cpu.memory.Read(irqVector))
	high := uint16(cpu.memory.Read(irqVector + 1))
	cpu.PC = (high << 8) | low
	return 0
}

// --- unofficial instruction bodies ---

func (cpu *CPU) lax(address uint16) uint8 {
	cpu.A = cpu.memory.Read(address)
	cpu.X = cpu.A
	cpu.setZN(cpu.A)
	return 0
}

// lxa (opcode 0xAB, sometimes called LAX #imm or ATX) is one of the
// genuinely unstable opcodes on real hardware. This models the commonly
// documented behavior: AND the immediate with A, then copy into X.
func (cpu *CPU) lxa(address uint16) uint8 {
	cpu.A &= cpu.memory.Read(address)
	cpu.X = cpu.A
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) sax(address uint16) uint8 { cpu.memory.Write(address, cpu.A&cpu.X); return 0 }

func (cpu *CPU) dcp(address uint16) uint8 {
	value := cpu.memory.Read(address) - 1
	cpu.memory.Write(address, value)
	cpu.C = cpu.A >= value
	cpu.setZN(cpu.A - value)
	return 0
}

func (cpu *CPU) isb(address uint16) uint8 {
	value := cpu.memory.Read(address) + 1
	cpu.memory.Write(address, value)
	cpu.sbc(address)
	return 0
}

func (cpu *CPU) slo(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = (value & 0x80) != 0
	value <<= 1
	cpu.memory.Write(address, value)
	cpu.A |= value
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) rla(address uint16) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = (value & 0x80) != 0
	value <<= 1
	if oldCarry {
		value |= 0x01
	}
	cpu.memory.Write(address, value)
	cpu.A &= value
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) sre(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = (value & 0x01) != 0
	value >>= 1
	cpu.memory.Write(address, value)
	cpu.A ^= value
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) rra(address uint16) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = (value & 0x01) != 0
	value >>= 1
	if oldCarry {
		value |= 0x80
	}
	cpu.memory.Write(address, value)
	cpu.adc(address)
	return 0
}

func (cpu *CPU) anc(address uint16) uint8 {
	cpu.A &= cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	cpu.C = (cpu.A & 0x80) != 0
	return 0
}

func (cpu *CPU) alr(address uint16) uint8 {
	cpu.A &= cpu.memory.Read(address)
	cpu.C = (cpu.A & 0x01) != 0
	cpu.A >>= 1
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) arr(address uint16) uint8 {
	cpu.A &= cpu.memory.Read(address)
	carryIn := cpu.C
	cpu.A >>= 1
	if carryIn {
		cpu.A |= 0x80
	}
	cpu.setZN(cpu.A)
	cpu.C = (cpu.A & 0x40) != 0
	cpu.V = ((cpu.A>>6)^(cpu.A>>5))&0x01 != 0
	return 0
}

// axs (opcode 0xCB, also known as SBX) computes X = (A & X) - imm without
// affecting A, setting carry as an unsigned subtraction would.
func (cpu *CPU) axs(address uint16) uint8 {
	value := cpu.memory.Read(address)
	and := cpu.A & cpu.X
	cpu.C = and >= value
	cpu.X = and - value
	cpu.setZN(cpu.X)
	return 0
}

// xaa (opcode 0x8B, also known as ANE) is unstable on real hardware and
// depends on analog bus capacitance; this models the commonly documented
// X-AND-immediate approximation used by most emulators and test suites.
func (cpu *CPU) xaa(address uint16) uint8 {
	cpu.A = cpu.X & cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) highPlusOneMask(address uint16) uint8 {
	return uint8((address >> 8) + 1)
}

// sha (AHX) stores A & X & (high byte of the address + 1). Unstable on
// hardware; modeled with the commonly documented high-byte formula.
func (cpu *CPU) sha(address uint16) uint8 {
	cpu.memory.Write(address, cpu.A&cpu.X&cpu.highPlusOneMask(address))
	return 0
}

func (cpu *CPU) shx(address uint16) uint8 {
	cpu.memory.Write(address, cpu.X&cpu.highPlusOneMask(address))
	return 0
}

func (cpu *CPU) shy(address uint16) uint8 {
	cpu.memory.Write(address, cpu.Y&cpu.highPlusOneMask(address))
	return 0
}

func (cpu *CPU) tas(address uint16) uint8 {
	cpu.SP = cpu.A & cpu.X
	cpu.memory.Write(address, cpu.SP&cpu.highPlusOneMask(address))
	return 0
}

func (cpu *CPU) las(address uint16) uint8 {
	value := cpu.memory.Read(address) & cpu.SP
	cpu.A, cpu.X, cpu.SP = value, value, value
	cpu.setZN(value)
	return 0
}

// jam models the "halt" opcodes (KIL/JAM) as a defined 2-cycle no-op rather
// than locking the bus, so every opcode in the table has a deterministic
// outcome.
func (cpu *CPU) jam(uint16) uint8 { return 0 }

func (cpu *CPU) executeInstruction(opcode uint8, address uint16, pageCrossed bool) uint8 {
	switch opcode {
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		return cpu.lda(address)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		return cpu.ldx(address)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		return cpu.ldy(address)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		return cpu.sta(address)
	case 0x86, 0x96, 0x8E:
		return cpu.stx(address)
	case 0x84, 0x94, 0x8C:
		return cpu.sty(address)

	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		return cpu.adc(address)
	case 0xE9, 0xEB, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1:
		return cpu.sbc(address)

	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		return cpu.and(address)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		return cpu.ora(address)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		return cpu.eor(address)

	case 0x0A:
		cpu.C = (cpu.A & 0x80) != 0
		cpu.A <<= 1
		cpu.setZN(cpu.A)
		return 0
	case 0x06, 0x16, 0x0E, 0x1E:
		return cpu.asl(address)
	case 0x4A:
		cpu.C = (cpu.A & 0x01) != 0
		cpu.A >>= 1
		cpu.setZN(cpu.A)
		return 0
	case 0x46, 0x56, 0x4E, 0x5E:
		return cpu.lsr(address)
	case 0x2A:
		oldCarry := cpu.C
		cpu.C = (cpu.A & 0x80) != 0
		cpu.A <<= 1
		if oldCarry {
			cpu.A |= 0x01
		}
		cpu.setZN(cpu.A)
		return 0
	case 0x26, 0x36, 0x2E, 0x3E:
		return cpu.rol(address)
	case 0x6A:
		oldCarry := cpu.C
		cpu.C = (cpu.A & 0x01) != 0
		cpu.A >>= 1
		if oldCarry {
			cpu.A |= 0x80
		}
		cpu.setZN(cpu.A)
		return 0
	case 0x66, 0x76, 0x6E, 0x7E:
		return cpu.ror(address)

	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		return cpu.cmp(address)
	case 0xE0, 0xE4, 0xEC:
		return cpu.cpx(address)
	case 0xC0, 0xC4, 0xCC:
		return cpu.cpy(address)

	case 0xE6, 0xF6, 0xEE, 0xFE:
		return cpu.inc(address)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		return cpu.dec(address)
	case 0xE8:
		return cpu.inx(address)
	case 0xCA:
		return cpu.dex(address)
	case 0xC8:
		return cpu.iny(address)
	case 0x88:
		return cpu.dey(address)

	case 0xAA:
		return cpu.tax(address)
	case 0x8A:
		return cpu.txa(address)
	case 0xA8:
		return cpu.tay(address)
	case 0x98:
		return cpu.tya(address)
	case 0xBA:
		return cpu.tsx(address)
	case 0x9A:
		return cpu.txs(address)

	case 0x48:
		return cpu.pha(address)
	case 0x68:
		return cpu.pla(address)
	case 0x08:
		return cpu.php(address)
	case 0x28:
		return cpu.plp(address)

	case 0x18:
		return cpu.clc(address)
	case 0x38:
		return cpu.sec(address)
	case 0x58:
		return cpu.cli(address)
	case 0x78:
		return cpu.sei(address)
	case 0xB8:
		return cpu.clv(address)
	case 0xD8:
		return cpu.cld(address)
	case 0xF8:
		return cpu.sed(address)

	case 0x4C, 0x6C:
		return cpu.jmp(address)
	case 0x20:
		return cpu.jsr(address)
	case 0x60:
		return cpu.rts(address)
	case 0x40:
		return cpu.rti(address)

	case 0x90:
		return cpu.bcc(address, pageCrossed)
	case 0xB0:
		return cpu.bcs(address, pageCrossed)
	case 0xD0:
		return cpu.bne(address, pageCrossed)
	case 0xF0:
		return cpu.beq(address, pageCrossed)
	case 0x10:
		return cpu.bpl(address, pageCrossed)
	case 0x30:
		return cpu.bmi(address, pageCrossed)
	case 0x50:
		return cpu.bvc(address, pageCrossed)
	case 0x70:
		return cpu.bvs(address, pageCrossed)

	case 0x24, 0x2C:
		return cpu.bit(address)
	case 0x00:
		return cpu.brk(address)

	case 0xEA, 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA,
		0x80, 0x82, 0x89, 0xC2, 0xE2,
		0x04, 0x44, 0x64, 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4,
		0x0C, 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		return cpu.nop(address)

	case 0xA3, 0xA7, 0xAF, 0xB3, 0xB7, 0xBF:
		return cpu.lax(address)
	case 0xAB:
		return cpu.lxa(address)
	case 0x83, 0x87, 0x8F, 0x97:
		return cpu.sax(address)
	case 0xC3, 0xC7, 0xCF, 0xD3, 0xD7, 0xDF, 0xDB:
		return cpu.dcp(address)
	case 0xE3, 0xE7, 0xEF, 0xF3, 0xF7, 0xFF, 0xFB:
		return cpu.isb(address)
	case 0x03, 0x07, 0x0F, 0x13, 0x17, 0x1F, 0x1B:
		return cpu.slo(address)
	case 0x23, 0x27, 0x2F, 0x33, 0x37, 0x3F, 0x3B:
		return cpu.rla(address)
	case 0x43, 0x47, 0x4F, 0x53, 0x57, 0x5F, 0x5B:
		return cpu.sre(address)
	case 0x63, 0x67, 0x6F, 0x73, 0x77, 0x7F, 0x7B:
		return cpu.rra(address)
	case 0x0B, 0x2B:
		return cpu.anc(address)
	case 0x4B:
		return cpu.alr(address)
	case 0x6B:
		return cpu.arr(address)
	case 0xCB:
		return cpu.axs(address)
	case 0x8B:
		return cpu.xaa(address)
	case 0x93, 0x9F:
		return cpu.sha(address)
	case 0x9E:
		return cpu.shx(address)
	case 0x9C:
		return cpu.shy(address)
	case 0x9B:
		return cpu.tas(address)
	case 0xBB:
		return cpu.las(address)

	case 0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2:
		return cpu.jam(address)

	default:
		return 0
	}
}

// initInstructions populates the 256-entry opcode table. Every byte value
// maps to a defined instruction: there is no nil entry.
func (cpu *CPU) initInstructions() {
	set := func(op uint8, name string, bytes, cycles uint8, mode AddressingMode) {
		cpu.instructions[op] = &Instruction{name, op, bytes, cycles, mode}
	}

	set(0xA9, "LDA", 2, 2, Immediate)
	set(0xA5, "LDA", 2, 3, ZeroPage)
	set(0xB5, "LDA", 2, 4, ZeroPageX)
	set(0xAD, "LDA", 3, 4, Absolute)
	set(0xBD, "LDA", 3, 4, AbsoluteX)
	set(0xB9, "LDA", 3, 4, AbsoluteY)
	set(0xA1, "LDA", 2, 6, IndexedIndirect)
	set(0xB1, "LDA", 2, 5, IndirectIndexed)

	set(0xA2, "LDX", 2, 2, Immediate)
	set(0xA6, "LDX", 2, 3, ZeroPage)
	set(0xB6, "LDX", 2, 4, ZeroPageY)
	set(0xAE, "LDX", 3, 4, Absolute)
	set(0xBE, "LDX", 3, 4, AbsoluteY)

	set(0xA0, "LDY", 2, 2, Immediate)
	set(0xA4, "LDY", 2, 3, ZeroPage)
	set(0xB4, "LDY", 2, 4, ZeroPageX)
	set(0xAC, "LDY", 3, 4, Absolute)
	set(0xBC, "LDY", 3, 4, AbsoluteX)

	set(0x85, "STA", 2, 3, ZeroPage)
	set(0x95, "STA", 2, 4, ZeroPageX)
	set(0x8D, "STA", 3, 4, Absolute)
	set(0x9D, "STA", 3, 5, AbsoluteX)
	set(0x99, "STA", 3, 5, AbsoluteY)
	set(0x81, "STA", 2, 6, IndexedIndirect)
	set(0x91, "STA", 2, 6, IndirectIndexed)

	set(0x86, "STX", 2, 3, ZeroPage)
	set(0x96, "STX", 2, 4, ZeroPageY)
	set(0x8E, "STX", 3, 4, Absolute)

	set(0x84, "STY", 2, 3, ZeroPage)
	set(0x94, "STY", 2, 4, ZeroPageX)
	set(0x8C, "STY", 3, 4, Absolute)

	set(0x69, "ADC", 2, 2, Immediate)
	set(0x65, "ADC", 2, 3, ZeroPage)
	set(0x75, "ADC", 2, 4, ZeroPageX)
	set(0x6D, "ADC", 3, 4, Absolute)
	set(0x7D, "ADC", 3, 4, AbsoluteX)
	set(0x79, "ADC", 3, 4, AbsoluteY)
	set(0x61, "ADC", 2, 6, IndexedIndirect)
	set(0x71, "ADC", 2, 5, IndirectIndexed)

	set(0xE9, "SBC", 2, 2, Immediate)
	set(0xE5, "SBC", 2, 3, ZeroPage)
	set(0xF5, "SBC", 2, 4, ZeroPageX)
	set(0xED, "SBC", 3, 4, Absolute)
	set(0xFD, "SBC", 3, 4, AbsoluteX)
	set(0xF9, "SBC", 3, 4, AbsoluteY)
	set(0xE1, "SBC", 2, 6, IndexedIndirect)
	set(0xF1, "SBC", 2, 5, IndirectIndexed)

	set(0x29, "AND", 2, 2, Immediate)
	set(0x25, "AND", 2, 3, ZeroPage)
	set(0x35, "AND", 2, 4, ZeroPageX)
	set(0x2D, "AND", 3, 4, Absolute)
	set(0x3D, "AND", 3, 4, AbsoluteX)
	set(0x39, "AND", 3, 4, AbsoluteY)
	set(0x21, "AND", 2, 6, IndexedIndirect)
	set(0x31, "AND", 2, 5, IndirectIndexed)

	set(0x09, "ORA", 2, 2, Immediate)
	set(0x05, "ORA", 2, 3, ZeroPage)
	set(0x15, "ORA", 2, 4, ZeroPageX)
	set(0x0D, "ORA", 3, 4, Absolute)
	set(0x1D, "ORA", 3, 4, AbsoluteX)
	set(0x19, "ORA", 3, 4, AbsoluteY)
	set(0x01, "ORA", 2, 6, IndexedIndirect)
	set(0x11, "ORA", 2, 5, IndirectIndexed)

	set(0x49, "EOR", 2, 2, Immediate)
	set(0x45, "EOR", 2, 3, ZeroPage)
	set(0x55, "EOR", 2, 4, ZeroPageX)
	set(0x4D, "EOR", 3, 4, Absolute)
	set(0x5D, "EOR", 3, 4, AbsoluteX)
	set(0x59, "EOR", 3, 4, AbsoluteY)
	set(0x41, "EOR", 2, 6, IndexedIndirect)
	set(0x51, "EOR", 2, 5, IndirectIndexed)

	set(0x0A, "ASL", 1, 2, Accumulator)
	set(0x06, "ASL", 2, 5, ZeroPage)
	set(0x16, "ASL", 2, 6, ZeroPageX)
	set(0x0E, "ASL", 3, 6, Absolute)
	set(0x1E, "ASL", 3, 7, AbsoluteX)

	set(0x4A, "LSR", 1, 2, Accumulator)
	set(0x46, "LSR", 2, 5, ZeroPage)
	set(0x56, "LSR", 2, 6, ZeroPageX)
	set(0x4E, "LSR", 3, 6, Absolute)
	set(0x5E, "LSR", 3, 7, AbsoluteX)

	set(0x2A, "ROL", 1, 2, Accumulator)
	set(0x26, "ROL", 2, 5, ZeroPage)
	set(0x36, "ROL", 2, 6, ZeroPageX)
	set(0x2E, "ROL", 3, 6, Absolute)
	set(0x3E, "ROL", 3, 7, AbsoluteX)

	set(0x6A, "ROR", 1, 2, Accumulator)
	set(0x66, "ROR", 2, 5, ZeroPage)
	set(0x76, "ROR", 2, 6, ZeroPageX)
	set(0x6E, "ROR", 3, 6, Absolute)
	set(0x7E, "ROR", 3, 7, AbsoluteX)

	set(0xC9, "CMP", 2, 2, Immediate)
	set(0xC5, "CMP", 2, 3, ZeroPage)
	set(0xD5, "CMP", 2, 4, ZeroPageX)
	set(0xCD, "CMP", 3, 4, Absolute)
	set(0xDD, "CMP", 3, 4, AbsoluteX)
	set(0xD9, "CMP", 3, 4, AbsoluteY)
	set(0xC1, "CMP", 2, 6, IndexedIndirect)
	set(0xD1, "CMP", 2, 5, IndirectIndexed)

	set(0xE0, "CPX", 2, 2, Immediate)
	set(0xE4, "CPX", 2, 3, ZeroPage)
	set(0xEC, "CPX", 3, 4, Absolute)

	set(0xC0, "CPY", 2, 2, Immediate)
	set(0xC4, "CPY", 2, 3, ZeroPage)
	set(0xCC, "CPY", 3, 4, Absolute)

	set(0xE6, "INC", 2, 5, ZeroPage)
	set(0xF6, "INC", 2, 6, ZeroPageX)
	set(0xEE, "INC", 3, 6, Absolute)
	set(0xFE, "INC", 3, 7, AbsoluteX)

	set(0xC6, "DEC", 2, 5, ZeroPage)
	set(0xD6, "DEC", 2, 6, ZeroPageX)
	set(0xCE, "DEC", 3, 6, Absolute)
	set(0xDE, "DEC", 3, 7, AbsoluteX)

	set(0xE8, "INX", 1, 2, Implied)
	set(0xCA, "DEX", 1, 2, Implied)
	set(0xC8, "INY", 1, 2, Implied)
	set(0x88, "DEY", 1, 2, Implied)

	set(0xAA, "TAX", 1, 2, Implied)
	set(0x8A, "TXA", 1, 2, Implied)
	set(0xA8, "TAY", 1, 2, Implied)
	set(0x98, "TYA", 1, 2, Implied)
	set(0xBA, "TSX", 1, 2, Implied)
	set(0x9A, "TXS", 1, 2, Implied)

	set(0x48, "PHA", 1, 3, Implied)
	set(0x68, "PLA", 1, 4, Implied)
	set(0x08, "PHP", 1, 3, Implied)
	set(0x28, "PLP", 1, 4, Implied)

	set(0x18, "CLC", 1, 2, Implied)
	set(0x38, "SEC", 1, 2, Implied)
	set(0x58, "CLI", 1, 2, Implied)
	set(0x78, "SEI", 1, 2, Implied)
	set(0xB8, "CLV", 1, 2, Implied)
	set(0xD8, "CLD", 1, 2, Implied)
	set(0xF8, "SED", 1, 2, Implied)

	set(0x4C, "JMP", 3, 3, Absolute)
	set(0x6C, "JMP", 3, 5, Indirect)
	set(0x20, "JSR", 3, 6, Absolute)
	set(0x60, "RTS", 1, 6, Implied)
	set(0x40, "RTI", 1, 6, Implied)

	set(0x90, "BCC", 2, 2, Relative)
	set(0xB0, "BCS", 2, 2, Relative)
	set(0xD0, "BNE", 2, 2, Relative)
	set(0xF0, "BEQ", 2, 2, Relative)
	set(0x10, "BPL", 2, 2, Relative)
	set(0x30, "BMI", 2, 2, Relative)
	set(0x50, "BVC", 2, 2, Relative)
	set(0x70, "BVS", 2, 2, Relative)

	set(0x24, "BIT", 2, 3, ZeroPage)
	set(0x2C, "BIT", 3, 4, Absolute)
	set(0xEA, "NOP", 1, 2, Implied)
	set(0x00, "BRK", 1, 7, Implied)

	set(0x1A, "NOP", 1, 2, Implied)
	set(0x3A, "NOP", 1, 2, Implied)
	set(0x5A, "NOP", 1, 2, Implied)
	set(0x7A, "NOP", 1, 2, Implied)
	set(0xDA, "NOP", 1, 2, Implied)
	set(0xFA, "NOP", 1, 2, Implied)
	set(0x80, "NOP", 2, 2, Immediate)
	set(0x82, "NOP", 2, 2, Immediate)
	set(0x89, "NOP", 2, 2, Immediate)
	set(0xC2, "NOP", 2, 2, Immediate)
	set(0xE2, "NOP", 2, 2, Immediate)
	set(0x04, "NOP", 2, 3, ZeroPage)
	set(0x44, "NOP", 2, 3, ZeroPage)
	set(0x64, "NOP", 2, 3, ZeroPage)
	set(0x14, "NOP", 2, 4, ZeroPageX)
	set(0x34, "NOP", 2, 4, ZeroPageX)
	set(0x54, "NOP", 2, 4, ZeroPageX)
	set(0x74, "NOP", 2, 4, ZeroPageX)
	set(0xD4, "NOP", 2, 4, ZeroPageX)
	set(0xF4, "NOP", 2, 4, ZeroPageX)
	set(0x0C, "NOP", 3, 4, Absolute)
	set(0x1C, "NOP", 3, 4, AbsoluteX)
	set(0x3C, "NOP", 3, 4, AbsoluteX)
	set(0x5C, "NOP", 3, 4, AbsoluteX)
	set(0x7C, "NOP", 3, 4, AbsoluteX)
	set(0xDC, "NOP", 3, 4, AbsoluteX)
	set(0xFC, "NOP", 3, 4, AbsoluteX)

	set(0xA7, "LAX", 2, 3, ZeroPage)
	set(0xB7, "LAX", 2, 4, ZeroPageY)
	set(0xAF, "LAX", 3, 4, Absolute)
	set(0xBF, "LAX", 3, 4, AbsoluteY)
	set(0xA3, "LAX", 2, 6, IndexedIndirect)
	set(0xB3, "LAX", 2, 5, IndirectIndexed)
	set(0xAB, "LXA", 2, 2, Immediate)

	set(0x87, "SAX", 2, 3, ZeroPage)
	set(0x97, "SAX", 2, 4, ZeroPageY)
	set(0x8F, "SAX", 3, 4, Absolute)
	set(0x83, "SAX", 2, 6, IndexedIndirect)

	set(0xEB, "SBC", 2, 2, Immediate)

	set(0xC7, "DCP", 2, 5, ZeroPage)
	set(0xD7, "DCP", 2, 6, ZeroPageX)
	set(0xCF, "DCP", 3, 6, Absolute)
	set(0xDF, "DCP", 3, 7, AbsoluteX)
	set(0xDB, "DCP", 3, 7, AbsoluteY)
	set(0xC3, "DCP", 2, 8, IndexedIndirect)
	set(0xD3, "DCP", 2, 8, IndirectIndexed)

	set(0xE7, "ISB", 2, 5, ZeroPage)
	set(0xF7, "ISB", 2, 6, ZeroPageX)
	set(0xEF, "ISB", 3, 6, Absolute)
	set(0xFF, "ISB", 3, 7, AbsoluteX)
	set(0xFB, "ISB", 3, 7, AbsoluteY)
	set(0xE3, "ISB", 2, 8, IndexedIndirect)
	set(0xF3, "ISB", 2, 8, IndirectIndexed)

	set(0x07, "SLO", 2, 5, ZeroPage)
	set(0x17, "SLO", 2, 6, ZeroPageX)
	set(0x0F, "SLO", 3, 6, Absolute)
	set(0x1F, "SLO", 3, 7, AbsoluteX)
	set(0x1B, "SLO", 3, 7, AbsoluteY)
	set(0x03, "SLO", 2, 8, IndexedIndirect)
	set(0x13, "SLO", 2, 8, IndirectIndexed)

	set(0x27, "RLA", 2, 5, ZeroPage)
	set(0x37, "RLA", 2, 6, ZeroPageX)
	set(0x2F, "RLA", 3, 6, Absolute)
	set(0x3F, "RLA", 3, 7, AbsoluteX)
	set(0x3B, "RLA", 3, 7, AbsoluteY)
	set(0x23, "RLA", 2, 8, IndexedIndirect)
	set(0x33, "RLA", 2, 8, IndirectIndexed)

	set(0x47, "SRE", 2, 5, ZeroPage)
	set(0x57, "SRE", 2, 6, ZeroPageX)
	set(0x4F, "SRE", 3, 6, Absolute)
	set(0x5F, "SRE", 3, 7, AbsoluteX)
	set(0x5B, "SRE", 3, 7, AbsoluteY)
	set(0x43, "SRE", 2, 8, IndexedIndirect)
	set(0x53, "SRE", 2, 8, IndirectIndexed)

	set(0x67, "RRA", 2, 5, ZeroPage)
	set(0x77, "RRA", 2, 6, ZeroPageX)
	set(0x6F, "RRA", 3, 6, Absolute)
	set(0x7F, "RRA", 3, 7, AbsoluteX)
	set(0x7B, "RRA", 3, 7, AbsoluteY)
	set(0x63, "RRA", 2, 8, IndexedIndirect)
	set(0x73, "RRA", 2, 8, IndirectIndexed)

	set(0x0B, "ANC", 2, 2, Immediate)
	set(0x2B, "ANC", 2, 2, Immediate)
	set(0x4B, "ALR", 2, 2, Immediate)
	set(0x6B, "ARR", 2, 2, Immediate)
	set(0xCB, "AXS", 2, 2, Immediate)
	set(0x8B, "XAA", 2, 2, Immediate)
	set(0x93, "SHA", 2, 6, IndirectIndexed)
	set(0x9F, "SHA", 3, 5, AbsoluteY)
	set(0x9E, "SHX", 3, 5, AbsoluteY)
	set(0x9C, "SHY", 3, 5, AbsoluteX)
	set(0x9B, "TAS", 3, 5, AbsoluteY)
	set(0xBB, "LAS", 3, 4, AbsoluteY)

	for _, op := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		set(op, "JAM", 1, 2, Implied)
	}
}

// SaveState serializes the registers, flags, cycle count, and interrupt
// line state needed to resume execution exactly where it left off.
func (cpu *CPU) SaveState() []byte {
	buf := make([]byte, 0, 16)
	buf = append(buf, cpu.A, cpu.X, cpu.Y, cpu.SP)
	pc := make([]byte, 2)
	binary.LittleEndian.PutUint16(pc, cpu.PC)
	buf = append(buf, pc...)
	buf = append(buf, cpu.GetStatusByte())
	cycles := make([]byte, 8)
	binary.LittleEndian.PutUint64(cycles, cpu.cycles)
	buf = append(buf, cycles...)
	flags := uint8(0)
	if cpu.nmiPending {
		flags |= 0x01
	}
	if cpu.irqPending {
		flags |= 0x02
	}
	if cpu.nmiPrevious {
		flags |= 0x04
	}
	buf = append(buf, flags)
	return buf
}

// LoadState restores a snapshot produced by SaveState.
func (cpu *CPU) LoadState(data []byte) error {
	const want = 4 + 2 + 1 + 8 + 1
	if len(data) < want {
		return errShortCPUState
	}
	cpu.A, cpu.X, cpu.Y, cpu.SP = data[0], data[1], data[2], data[3]
	cpu.PC = binary.LittleEndian.Uint16(data[4:6])
	cpu.SetStatusByte(data[6])
	cpu.cycles = binary.LittleEndian.Uint64(data[7:15])
	flags := data[15]
	cpu.nmiPending = flags&0x01 != 0
	cpu.irqPending = flags&0x02 != 0
	cpu.nmiPrevious = flags&0x04 != 0
	return nil
}
