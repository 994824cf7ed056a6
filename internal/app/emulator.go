// Package app provides emulator integration for the main application.
package app

import (
	"time"

	"nescore/internal/console"
)

// Emulator paces a console.Console at a fixed NTSC frame rate for the GUI
// loop: one call to Update runs exactly one frame's worth of CPU cycles.
type Emulator struct {
	console *console.Console
	config  *Config

	targetFrameTime time.Duration
	lastFrameTime   time.Duration
	isRunning       bool
	startTime       time.Time
	frameCount      uint64
}

// NewEmulator wraps c for fixed-timestep stepping at 60 FPS.
func NewEmulator(c *console.Console, config *Config) *Emulator {
	e := &Emulator{
		console:         c,
		config:          config,
		targetFrameTime: time.Second / 60,
	}
	e.Reset()
	return e
}

// Reset resets the underlying console and the emulator's own bookkeeping.
func (e *Emulator) Reset() {
	e.console.Reset()
	e.frameCount = 0
	e.startTime = time.Now()
}

// Start marks the emulator as running.
func (e *Emulator) Start() {
	e.isRunning = true
	e.startTime = time.Now()
}

// Stop marks the emulator as not running.
func (e *Emulator) Stop() { e.isRunning = false }

// IsRunning reports whether Start has been called without a matching Stop.
func (e *Emulator) IsRunning() bool { return e.isRunning }

// Update runs exactly one frame if the emulator is running.
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}
	start := time.Now()
	e.console.StepFrame()
	e.lastFrameTime = time.Since(start)
	e.frameCount++
	return nil
}

// StepFrame runs a single frame regardless of the running flag, for
// frame-advance debugging.
func (e *Emulator) StepFrame() error {
	e.console.StepFrame()
	e.frameCount++
	return nil
}

// StepInstruction runs a single CPU instruction (and its attendant PPU/APU
// ticks), for instruction-level debugging.
func (e *Emulator) StepInstruction() error {
	e.console.Step()
	return nil
}

// GetFrameBuffer returns the most recently rendered frame as a flat slice.
func (e *Emulator) GetFrameBuffer() []uint32 {
	fb := e.console.FrameBuffer()
	return fb[:]
}

// GetAudioSamples drains the accumulated native-rate audio samples.
func (e *Emulator) GetAudioSamples() []float32 {
	return e.console.TakeAudio()
}

// GetFrameCount returns the number of frames this Emulator has stepped.
func (e *Emulator) GetFrameCount() uint64 { return e.frameCount }

// GetCycleCount returns the console's total CPU cycle count.
func (e *Emulator) GetCycleCount() uint64 { return e.console.Bus.CPU.Cycles() }

// GetLastFrameTime returns how long the most recent Update call took.
func (e *Emulator) GetLastFrameTime() time.Duration { return e.lastFrameTime }

// GetTargetFrameTime returns the fixed-timestep target (1/60s).
func (e *Emulator) GetTargetFrameTime() time.Duration { return e.targetFrameTime }

// GetUptime returns how long the emulator has been running since Start.
func (e *Emulator) GetUptime() time.Duration { return time.Since(e.startTime) }

// Cleanup releases any resources the emulator holds. Stepping state lives
// entirely in console.Console, which needs no explicit teardown.
func (e *Emulator) Cleanup() error {
	e.Stop()
	return nil
}
