package cpu

import "testing"

func TestSAXStoresAANDX(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x87, 0x10) // SAX $10
	c.A = 0xF0
	c.X = 0x0F
	c.Step()
	if mem.Read(0x10) != 0x00 {
		t.Fatalf("SAX result = %#x, want 0x00", mem.Read(0x10))
	}
}

func TestLAXLoadsBothAAndX(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xA7, 0x10) // LAX $10
	mem.setBytes(0x10, 0x37)
	c.Step()
	if c.A != 0x37 || c.X != 0x37 {
		t.Fatalf("A=%#x X=%#x, want both 0x37", c.A, c.X)
	}
}

func TestDCPDecrementsThenCompares(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xC7, 0x10) // DCP $10
	mem.setBytes(0x10, 0x05)
	c.A = 0x04
	c.Step()
	if mem.Read(0x10) != 0x04 {
		t.Fatalf("memory = %#x, want 0x04 after decrement", mem.Read(0x10))
	}
	if !c.Z {
		t.Fatal("expected Z set: A (0x04) == decremented memory (0x04)")
	}
}

func TestISBIncrementsThenSubtracts(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xE7, 0x10) // ISB $10
	mem.setBytes(0x10, 0x00)
	c.A = 0x05
	c.C = true
	c.Step()
	if mem.Read(0x10) != 0x01 {
		t.Fatalf("memory = %#x, want 0x01 after increment", mem.Read(0x10))
	}
	if c.A != 0x04 {
		t.Fatalf("A = %#x, want 0x04 after SBC with incremented operand", c.A)
	}
}

func TestANCSetsCarryFromBit7(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x0B, 0xFF) // ANC #$FF
	c.A = 0x80
	c.Step()
	if c.A != 0x80 || !c.C {
		t.Fatalf("A=%#x C=%v, want A=0x80 C=true", c.A, c.C)
	}
}

func TestALRAndsThenShiftsRight(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x4B, 0x03) // ALR #$03
	c.A = 0x03
	c.Step()
	if c.A != 0x01 || !c.C {
		t.Fatalf("A=%#x C=%v, want A=0x01 C=true", c.A, c.C)
	}
}

func TestAXSComputesAANDXMinusImmediate(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xCB, 0x01) // AXS #$01
	c.A = 0x0F
	c.X = 0x0F
	c.Step()
	if c.X != 0x0E || !c.C {
		t.Fatalf("X=%#x C=%v, want X=0x0E C=true", c.X, c.C)
	}
}

func TestLASMasksOperandWithStackPointer(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xBB, 0x00, 0x20) // LAS $2000,Y
	mem.setBytes(0x2000, 0xFF)
	c.SP = 0x0F
	c.Step()
	if c.A != 0x0F || c.X != 0x0F || c.SP != 0x0F {
		t.Fatalf("A=%#x X=%#x SP=%#x, want all 0x0F", c.A, c.X, c.SP)
	}
}

func TestJAMOpcodeIsDefinedNoOp(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x02, 0xEA) // JAM; NOP
	cycles := c.Step()
	if cycles != 2 {
		t.Fatalf("cycles = %d, want 2 for JAM modeled as a no-op", cycles)
	}
	if c.PC != 0x8001 {
		t.Fatalf("PC = %#x, want 0x8001 after JAM", c.PC)
	}
}

func TestUnofficialNOPWidthsConsumeCorrectBytes(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x1C, 0x00, 0x00, 0xEA) // NOP $0000,X (unofficial, 3 bytes)
	c.Step()
	if c.PC != 0x8003 {
		t.Fatalf("PC = %#x, want 0x8003 after 3-byte unofficial NOP", c.PC)
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	mem.setBytes(0x9000, 0x60)             // RTS
	c.Step()
	if c.PC != 0x9000 {
		t.Fatalf("PC = %#x, want 0x9000 after JSR", c.PC)
	}
	c.Step()
	if c.PC != 0x8003 {
		t.Fatalf("PC = %#x, want 0x8003 after RTS", c.PC)
	}
}
