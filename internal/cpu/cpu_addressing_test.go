package cpu

import "testing"

func TestZeroPageXWrapsWithinZeroPage(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xB5, 0x80) // LDA $80,X
	c.X = 0x90                       // $80+$90 = $110, must wrap to $10
	mem.setBytes(0x0010, 0x55)
	c.Step()
	if c.A != 0x55 {
		t.Fatalf("A = %#x, want 0x55 via zero-page-X wraparound", c.A)
	}
}

func TestAbsoluteYPageCross(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xB9, 0xFF, 0x10) // LDA $10FF,Y
	c.Y = 1
	mem.setBytes(0x1100, 0x77)
	cycles := c.Step()
	if c.A != 0x77 {
		t.Fatalf("A = %#x, want 0x77", c.A)
	}
	if cycles != 5 {
		t.Fatalf("cycles = %d, want 5 (4 base + 1 page cross)", cycles)
	}
}

func TestIndexedIndirectWrapsPointerInZeroPage(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xA1, 0xFE) // LDA ($FE,X)
	c.X = 0x03                       // pointer at $01, wrapping past $FF
	mem.setBytes(0x0001, 0x00, 0x20) // -> $2000
	mem.setBytes(0x2000, 0x99)
	c.Step()
	if c.A != 0x99 {
		t.Fatalf("A = %#x, want 0x99", c.A)
	}
}

func TestIndirectIndexedAddsYAfterDereference(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xB1, 0x10) // LDA ($10),Y
	mem.setBytes(0x0010, 0x00, 0x30) // base $3000
	c.Y = 0x05
	mem.setBytes(0x3005, 0xAB)
	c.Step()
	if c.A != 0xAB {
		t.Fatalf("A = %#x, want 0xAB", c.A)
	}
}

func TestIndirectJMPPageBoundaryBug(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x6C, 0xFF, 0x02) // JMP ($02FF)
	mem.setBytes(0x02FF, 0x00)
	mem.setBytes(0x0200, 0x80) // high byte incorrectly read from $0200, not $0300
	c.Step()
	if c.PC != 0x8000 {
		t.Fatalf("PC = %#x, want 0x8000 (hardware indirect-JMP bug)", c.PC)
	}
}

func TestRelativeBranchBackwardsNegativeOffset(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x8010
	mem.setBytes(0x8010, 0xD0, 0xFC) // BNE -4
	c.Z = false
	c.Step()
	if c.PC != 0x800E {
		t.Fatalf("PC = %#x, want 0x800E", c.PC)
	}
}
