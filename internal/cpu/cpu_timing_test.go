package cpu

import "testing"

func TestAbsoluteXPageCrossAddsCycle(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xBD, 0xFF, 0x00) // LDA $00FF,X
	c.X = 1                                // crosses into page 1
	cycles := c.Step()
	if cycles != 5 {
		t.Fatalf("cycles = %d, want 5 (4 base + 1 page cross)", cycles)
	}
}

func TestAbsoluteXNoPageCrossBaseCycles(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xBD, 0x00, 0x10) // LDA $1000,X
	c.X = 1
	cycles := c.Step()
	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4 (no page cross)", cycles)
	}
}

func TestIndexedStoreAlwaysPaysPageCrossPenalty(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x9D, 0x00, 0x10) // STA $1000,X - no page cross, still 5
	c.X = 1
	cycles := c.Step()
	if cycles != 5 {
		t.Fatalf("cycles = %d, want 5: indexed STA always takes the write-stall cycle", cycles)
	}
}

func TestBranchNotTakenIsTwoCycles(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xD0, 0x10) // BNE +16
	c.Z = true                       // not taken
	cycles := c.Step()
	if cycles != 2 {
		t.Fatalf("cycles = %d, want 2 for untaken branch", cycles)
	}
}

func TestBranchTakenSamePageIsThreeCycles(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xD0, 0x10) // BNE +16, stays in page 0x80
	c.Z = false
	cycles := c.Step()
	if cycles != 3 {
		t.Fatalf("cycles = %d, want 3 for taken branch without page cross", cycles)
	}
}

func TestBranchTakenCrossingPageIsFourCycles(t *testing.T) {
	c, mem := newTestCPU()
	c.PC = 0x80F0
	mem.setBytes(0x80F0, 0xD0, 0x20) // BNE +32, crosses into page 0x81
	c.Z = false
	cycles := c.Step()
	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4 for taken branch crossing a page", cycles)
	}
}

func TestRMWInstructionTakesFullCycleCountRegardlessOfIndex(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x1E, 0xFF, 0x00) // ASL $00FF,X
	c.X = 1
	cycles := c.Step()
	if cycles != 7 {
		t.Fatalf("cycles = %d, want 7 for ASL abs,X", cycles)
	}
}
