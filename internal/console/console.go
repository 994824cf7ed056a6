// Package console is the master coordinator: it owns the Bus (and, through
// it, the CPU, PPU, APU, and Mapper), steps them at the hardware's rate of
// three PPU dots and one APU tick per CPU cycle, and assembles/restores save
// states.
package console

import (
	"crypto/sha256"
	"encoding/binary"
	"hash/crc32"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"nescore/internal/bus"
	"nescore/internal/input"
	"nescore/internal/mapper"
	"nescore/internal/neserr"
	"nescore/internal/rom"
)

const (
	saveStateMagic   = "RNES"
	saveStateVersion = 1
	headerSize       = 64

	// flagCompressed marks the body as zstd-compressed; the checksum is
	// always computed over the uncompressed body.
	flagCompressed = 1 << 0
)

var zstdDecoder, _ = zstd.NewReader(nil)

// Console ties a loaded cartridge to a running Bus/CPU/PPU/APU instance.
type Console struct {
	Bus     *bus.Bus
	romHash [32]byte
}

// New parses a ROM image and builds a Console ready to step. The ROM's
// mapper number selects the cartridge implementation; an unsupported
// number surfaces as a neserr.UnsupportedMapper error.
func New(r io.Reader) (*Console, error) {
	image, err := rom.Load(r)
	if err != nil {
		return nil, neserr.Wrap(neserr.RomParse, "failed to parse ROM image", err)
	}
	m, err := mapper.New(image)
	if err != nil {
		return nil, err
	}
	b := bus.New()
	b.AttachMapper(m)
	b.Reset()
	return &Console{Bus: b, romHash: sha256SumOf(image)}, nil
}

func sha256SumOf(image *rom.ROM) [32]byte {
	h := sha256.New()
	h.Write(image.PRG)
	h.Write(image.CHR)
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Reset performs a power-cycle-equivalent reset of every owned component.
func (c *Console) Reset() {
	c.Bus.Reset()
}

// Step advances the system by one unit of work: a single owed DMA cycle if
// any are owed; otherwise a pending NMI or IRQ is vectored, or failing that
// one whole CPU instruction runs. The PPU and APU are then ticked for every
// CPU cycle consumed, and Step returns that cycle count.
func (c *Console) Step() uint64 {
	if c.Bus.PendingStallCycles() > 0 {
		c.Bus.ConsumeStallCycle()
		c.tickPeripherals(1)
		return 1
	}
	cycles := c.Bus.CPU.Step()
	c.tickPeripherals(cycles)
	c.Bus.SyncIRQLine()
	return cycles
}

// tickPeripherals advances the PPU 3 dots and the APU once per CPU cycle
// consumed, matching NTSC master-clock divisors of 12 (CPU), 4 (PPU) and 12
// (APU).
func (c *Console) tickPeripherals(cpuCycles uint64) {
	for i := uint64(0); i < cpuCycles; i++ {
		c.Bus.PPU.Step()
		c.Bus.PPU.Step()
		c.Bus.PPU.Step()
		c.Bus.APU.Step()
	}
	c.Bus.SyncIRQLine()
}

// StepFrame runs Step until the PPU reports a completed frame.
func (c *Console) StepFrame() {
	start := c.Bus.PPU.FrameCount()
	for c.Bus.PPU.FrameCount() == start {
		c.Step()
	}
}

// FrameBuffer returns the PPU's 256x240 RGB framebuffer for the frame just
// completed. It's stable until the next StepFrame call mutates it.
func (c *Console) FrameBuffer() [256 * 240]uint32 {
	return c.Bus.PPU.GetFrameBuffer()
}

// TakeAudio drains and returns the APU's accumulated audio samples.
func (c *Console) TakeAudio() []float32 {
	return c.Bus.APU.TakeSamples()
}

// SetButton sets a single button's pressed state on controller 1 (which==0)
// or controller 2 (which==1).
func (c *Console) SetButton(which int, button input.Button, pressed bool) {
	if which == 0 {
		c.Bus.Input.Controller1.SetButton(button, pressed)
	} else {
		c.Bus.Input.Controller2.SetButton(button, pressed)
	}
}

// SetControllerState sets a controller's entire button byte at once.
func (c *Console) SetControllerState(which int, state uint8) {
	if which == 0 {
		c.Bus.Input.Controller1.SetState(state)
	} else {
		c.Bus.Input.Controller2.SetState(state)
	}
}

// SaveState assembles a full save-state: a 64-byte header (magic, version,
// checksum, flags, ROM hash, timestamp, frame count) followed by the CPU,
// PPU, APU, Bus, and Mapper component states in fixed order.
func (c *Console) SaveState() []byte {
	return c.saveState(false)
}

// SaveStateCompressed is identical to SaveState except the body is
// zstd-compressed before being appended; LoadState detects this from the
// header's flags and decompresses transparently.
func (c *Console) SaveStateCompressed() []byte {
	return c.saveState(true)
}

func (c *Console) saveState(compress bool) []byte {
	body := make([]byte, 0, 4096)
	body = append(body, c.Bus.CPU.SaveState()...)
	body = append(body, c.Bus.PPU.SaveState()...)
	body = append(body, c.Bus.APU.SaveState()...)
	body = append(body, c.Bus.SaveState()...)
	body = append(body, c.Bus.Mapper.SaveState()...)

	checksum := crc32.ChecksumIEEE(body)
	var flags uint32
	if compress {
		enc, err := zstd.NewWriter(nil)
		if err == nil {
			body = enc.EncodeAll(body, make([]byte, 0, len(body)))
			enc.Close()
			flags |= flagCompressed
		}
	}

	header := make([]byte, headerSize)
	copy(header[0:4], saveStateMagic)
	binary.LittleEndian.PutUint32(header[4:8], saveStateVersion)
	binary.LittleEndian.PutUint32(header[8:12], checksum)
	binary.LittleEndian.PutUint32(header[12:16], flags)
	copy(header[16:48], c.romHash[:])
	binary.LittleEndian.PutUint64(header[48:56], uint64(time.Now().Unix()))
	binary.LittleEndian.PutUint64(header[56:64], c.Bus.PPU.FrameCount())

	return append(header, body...)
}

// LoadState validates and restores a save state produced by SaveState,
// checking the magic, version, ROM hash, and CRC before touching any
// component's state.
func (c *Console) LoadState(data []byte) error {
	if len(data) < headerSize {
		return neserr.New(neserr.SaveStateTruncated, "save state shorter than its header")
	}
	if string(data[0:4]) != saveStateMagic {
		return neserr.New(neserr.SaveStateMagic, "save state is missing the RNES magic")
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version > saveStateVersion {
		return neserr.New(neserr.SaveStateVersion, "save state was written by a newer version")
	}
	checksum := binary.LittleEndian.Uint32(data[8:12])
	flags := binary.LittleEndian.Uint32(data[12:16])
	var romHash [32]byte
	copy(romHash[:], data[16:48])
	if romHash != c.romHash {
		return neserr.New(neserr.SaveStateRomMismatch, "save state's ROM hash does not match the loaded cartridge")
	}

	body := data[headerSize:]
	if flags&flagCompressed != 0 {
		decoded, err := zstdDecoder.DecodeAll(body, nil)
		if err != nil {
			return neserr.Wrap(neserr.SaveStateTruncated, "failed to decompress save state body", err)
		}
		body = decoded
	}
	if crc32.ChecksumIEEE(body) != checksum {
		return neserr.New(neserr.SaveStateChecksum, "save state body failed its checksum")
	}

	pos := 0
	cpuLen := len(c.Bus.CPU.SaveState())
	if err := consume(body, &pos, cpuLen, c.Bus.CPU.LoadState); err != nil {
		return neserr.Wrap(neserr.SaveStateTruncated, "CPU state truncated", err)
	}
	ppuLen := len(c.Bus.PPU.SaveState())
	if err := consume(body, &pos, ppuLen, c.Bus.PPU.LoadState); err != nil {
		return neserr.Wrap(neserr.SaveStateTruncated, "PPU state truncated", err)
	}
	apuLen := len(c.Bus.APU.SaveState())
	if err := consume(body, &pos, apuLen, c.Bus.APU.LoadState); err != nil {
		return neserr.Wrap(neserr.SaveStateTruncated, "APU state truncated", err)
	}
	busLen := len(c.Bus.SaveState())
	if err := consume(body, &pos, busLen, c.Bus.LoadState); err != nil {
		return neserr.Wrap(neserr.SaveStateTruncated, "bus state truncated", err)
	}
	if pos > len(body) {
		return neserr.New(neserr.SaveStateTruncated, "mapper state missing from save state body")
	}
	if err := c.Bus.Mapper.LoadState(body[pos:]); err != nil {
		return neserr.Wrap(neserr.SaveStateTruncated, "mapper state truncated", err)
	}
	return nil
}

// consume hands component exactly n bytes starting at *pos, advancing *pos,
// and reports a truncation error if fewer than n bytes remain.
func consume(body []byte, pos *int, n int, load func([]byte) error) error {
	if *pos+n > len(body) {
		return errTruncated
	}
	chunk := body[*pos : *pos+n]
	*pos += n
	return load(chunk)
}

var errTruncated = neserr.New(neserr.SaveStateTruncated, "component state truncated")
