package apu

import "testing"

type fakeBus struct {
	data [0x10000]uint8
}

func (b *fakeBus) Read(addr uint16) uint8 { return b.data[addr] }

func newTestAPU() (*APU, *fakeBus) {
	a := New()
	bus := &fakeBus{}
	a.SetMemory(bus)
	return a, bus
}

func TestPulseLengthCounterLoadedFromTable(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4015, 0x01) // enable pulse1
	a.WriteRegister(0x4000, 0x00)
	a.WriteRegister(0x4002, 0x00)
	a.WriteRegister(0x4003, 0x08) // length index 1 -> 254
	if a.pulse1.lengthCounter != 254 {
		t.Fatalf("lengthCounter = %d, want 254", a.pulse1.lengthCounter)
	}
}

func TestChannelDisableClearsLengthCounter(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4003, 0x08)
	if a.pulse1.lengthCounter == 0 {
		t.Fatal("setup: expected nonzero length counter")
	}
	a.WriteRegister(0x4015, 0x00)
	if a.pulse1.lengthCounter != 0 {
		t.Fatal("disabling a channel via $4015 must zero its length counter")
	}
}

func TestStatusReadClearsFrameIRQButNotDMCIRQ(t *testing.T) {
	a, _ := newTestAPU()
	a.frameIRQFlag = true
	a.dmc.irqFlag = true
	status := a.ReadStatus()
	if status&0x40 == 0 {
		t.Fatal("expected frame IRQ bit set in status")
	}
	if status&0x80 == 0 {
		t.Fatal("expected DMC IRQ bit set in status")
	}
	if a.frameIRQFlag {
		t.Fatal("reading $4015 must clear the frame IRQ flag")
	}
	if !a.dmc.irqFlag {
		t.Fatal("reading $4015 must not clear the DMC IRQ flag")
	}
}

func TestFrameCounterFourStepSetsIRQAtEnd(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4017, 0x00) // 4-step, IRQ enabled
	for i := 0; i < 29830; i++ {
		a.Step()
	}
	if !a.FrameIRQ() {
		t.Fatal("expected frame IRQ flag set after a full 4-step sequence")
	}
}

func TestFrameCounterFiveStepNeverSetsIRQ(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4017, 0x80) // 5-step mode
	for i := 0; i < 40000; i++ {
		a.Step()
	}
	if a.FrameIRQ() {
		t.Fatal("5-step mode never raises the frame IRQ")
	}
}

func TestFrameCounterIRQInhibitFlag(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4017, 0x40) // 4-step, IRQ disabled
	for i := 0; i < 29830; i++ {
		a.Step()
	}
	if a.FrameIRQ() {
		t.Fatal("IRQ inhibit bit in $4017 must suppress the frame IRQ")
	}
}

func TestDMCSampleAddressAndLengthFormulas(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4012, 0x01) // a=1 -> $C000 + $40
	a.WriteRegister(0x4013, 0x01) // l=1 -> 1*$10+1 = 17
	if a.dmc.sampleAddress != 0xC040 {
		t.Fatalf("sampleAddress = %#x, want 0xC040", a.dmc.sampleAddress)
	}
	if a.dmc.sampleLength != 17 {
		t.Fatalf("sampleLength = %d, want 17", a.dmc.sampleLength)
	}
}

func TestDMCDMAFetchReadsBusAndStallsCPU(t *testing.T) {
	a, bus := newTestAPU()
	bus.data[0xC000] = 0xAA
	a.WriteRegister(0x4012, 0x00) // address $C000
	a.WriteRegister(0x4013, 0x00) // length 1
	stalled := 0
	a.SetStallFunc(func(cycles int) { stalled += cycles })

	// Enabling DMC with no pending sample kicks off an immediate DMA fetch.
	a.WriteRegister(0x4015, 0x10)

	if stalled != 3 {
		t.Fatalf("stalled = %d, want 3 cycles for the DMA read", stalled)
	}
	if a.dmc.dmaBuffer != 0xAA {
		t.Fatalf("dmaBuffer = %#x, want 0xAA read from the bus", a.dmc.dmaBuffer)
	}
	if !a.dmc.dmaBufferFull {
		t.Fatal("expected dmaBufferFull set after the fetch")
	}
}

func TestDMCAddressWrapsAtFFFF(t *testing.T) {
	a, _ := newTestAPU()
	a.dmc.currentAddress = 0xFFFF
	a.dmc.bytesRemaining = 2
	a.fetchDMCByte(&a.dmc)
	if a.dmc.currentAddress != 0x8000 {
		t.Fatalf("currentAddress = %#x, want wraparound to 0x8000", a.dmc.currentAddress)
	}
}

func TestDMCSetsIRQOnCompletionWithoutLoop(t *testing.T) {
	a, _ := newTestAPU()
	a.dmc.irqEnable = true
	a.dmc.loop = false
	a.dmc.bytesRemaining = 1
	a.fetchDMCByte(&a.dmc)
	if !a.dmc.irqFlag {
		t.Fatal("expected DMC IRQ flag set when sample completes without loop")
	}
}

func TestDMCLoopsSampleInsteadOfIRQ(t *testing.T) {
	a, _ := newTestAPU()
	a.dmc.irqEnable = true
	a.dmc.loop = true
	a.dmc.sampleAddress = 0xC100
	a.dmc.sampleLength = 32
	a.dmc.bytesRemaining = 1
	a.fetchDMCByte(&a.dmc)
	if a.dmc.irqFlag {
		t.Fatal("looping samples must not raise an IRQ on completion")
	}
	if a.dmc.currentAddress != 0xC100 || a.dmc.bytesRemaining != 32 {
		t.Fatal("expected sample restarted from its configured address/length")
	}
}

func TestDMCOutputLevelClampedToSevenBits(t *testing.T) {
	a, _ := newTestAPU()
	a.dmc.outputLevel = 127
	a.dmc.outputShift = 0x01 // next bit is 1, would push past 127
	a.dmc.outputBits = 1
	a.dmc.timerCounter = 0
	a.stepDMCTimer(&a.dmc)
	if a.dmc.outputLevel != 127 {
		t.Fatalf("outputLevel = %d, want clamped at 127", a.dmc.outputLevel)
	}
}

func TestNoiseShiftRegisterNeverReachesZero(t *testing.T) {
	a, _ := newTestAPU()
	a.noise.shiftRegister = 1
	for i := 0; i < 1000; i++ {
		a.stepNoiseTimer(&a.noise)
	}
	if a.noise.shiftRegister == 0 {
		t.Fatal("LFSR seeded at 1 must never settle at 0")
	}
}

func TestMixerIsSilentWithAllChannelsZero(t *testing.T) {
	if got := mix(0, 0, 0, 0, 0); got != 0.0 {
		t.Fatalf("mix(0,0,0,0,0) = %v, want 0.0 (silence, spec §4.3 range is [0.0, 1.0])", got)
	}
}

func TestMixerIncreasesWithPulseVolume(t *testing.T) {
	low := mix(1, 0, 0, 0, 0)
	high := mix(15, 15, 0, 0, 0)
	if !(high > low) {
		t.Fatal("higher pulse output should mix to a louder sample")
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4015, 0x1F)
	a.WriteRegister(0x4000, 0x3F)
	a.WriteRegister(0x4003, 0x08)
	a.WriteRegister(0x400E, 0x0A)
	a.WriteRegister(0x4012, 0x02)
	a.WriteRegister(0x4013, 0x03)
	a.frameIRQFlag = true

	state := a.SaveState()

	b := New()
	if err := b.LoadState(state); err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}
	if b.pulse1.volume != a.pulse1.volume {
		t.Fatal("pulse1 volume did not round-trip")
	}
	if b.pulse1.lengthCounter != a.pulse1.lengthCounter {
		t.Fatal("pulse1 length counter did not round-trip")
	}
	if b.noise.periodIndex != a.noise.periodIndex {
		t.Fatal("noise period index did not round-trip")
	}
	if b.dmc.sampleAddress != a.dmc.sampleAddress || b.dmc.sampleLength != a.dmc.sampleLength {
		t.Fatal("DMC sample address/length did not round-trip")
	}
	if b.frameIRQFlag != a.frameIRQFlag {
		t.Fatal("frame IRQ flag did not round-trip")
	}
}

func TestLoadStateRejectsShortBuffer(t *testing.T) {
	a := New()
	if err := a.LoadState([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error loading a truncated save state")
	}
}

func TestStepEmitsExactlyOneSamplePerCall(t *testing.T) {
	a := New()
	for i := 0; i < 1000; i++ {
		a.Step()
	}
	samples := a.TakeSamples()
	if len(samples) != 1000 {
		t.Fatalf("got %d samples, want 1000: the core must emit at the native rate, not downsample internally", len(samples))
	}
}

func TestResampleProducesFewerSamplesAtLowerRate(t *testing.T) {
	a := New()
	a.SetSampleRate(44100)
	for i := 0; i < 178977; i++ {
		a.Step()
	}
	samples := a.TakeSamples()
	out := a.Resample(samples)
	if len(out) == 0 || len(out) >= len(samples) {
		t.Fatalf("Resample produced %d samples from %d, want a smaller nonzero count", len(out), len(samples))
	}
}
