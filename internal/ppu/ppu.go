// Package ppu implements the 2C02 Picture Processing Unit for the NES.
package ppu

import (
	"encoding/binary"
	"errors"

	"nescore/internal/mapper"
)

var errShortPPUState = errors.New("ppu: save state too short")

// CHRMapper is the slice of mapper.Mapper the PPU needs: pattern-table
// access and the mirroring mode, which a mapper can change at runtime
// (MMC1's single-screen modes).
type CHRMapper interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
	Mirroring() mapper.Mirroring
	Tick(a12 bool)
}

// PPU is the NES 2C02: background/sprite pixel pipeline, VBlank/NMI state
// machine, sprite evaluation with the 8-sprite-per-scanline hardware
// overflow bug, and the palette/nametable address space.
type PPU struct {
	ppuCtrl   uint8
	ppuMask   uint8
	ppuStatus uint8
	oamAddr   uint8

	v uint16
	t uint16
	x uint8
	w bool

	chr CHRMapper

	nametables [0x800]uint8 // 2KB internal VRAM, mirrored per chr.Mirroring()
	palette    [32]uint8

	oam          [256]uint8
	secondaryOAM [32]uint8
	spriteIndex  [8]uint8
	spriteCount  uint8

	scanline   int
	cycle      int
	frameCount uint64
	oddFrame   bool
	readBuffer uint8

	sprite0Hit     bool
	spriteOverflow bool
	lastEvalLine   int

	frameBuffer [256 * 240]uint32

	nmiCallback           func()
	frameCompleteCallback func()

	backgroundEnabled bool
	spritesEnabled    bool
	renderingEnabled  bool
}

// New creates a PPU with no mapper attached; call SetMapper before Step.
func New() *PPU {
	p := &PPU{scanline: -1}
	p.Reset()
	return p
}

// SetMapper attaches the cartridge's pattern tables and mirroring mode.
func (p *PPU) SetMapper(m CHRMapper) {
	p.chr = m
}

// SetNMICallback registers the callback invoked when VBlank NMI fires.
func (p *PPU) SetNMICallback(callback func()) {
	p.nmiCallback = callback
}

// SetFrameCompleteCallback registers the callback invoked once per rendered frame.
func (p *PPU) SetFrameCompleteCallback(callback func()) {
	p.frameCompleteCallback = callback
}

// Reset restores power-up state. PPUSTATUS reads back with the top three
// bits undefined on real hardware; this models them clear.
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0
	p.oamAddr = 0

	p.v = 0
	p.t = 0
	p.x = 0
	p.w = false

	p.scanline = -1
	p.cycle = 0
	p.frameCount = 0
	p.oddFrame = false
	p.readBuffer = 0

	p.spriteCount = 0
	p.sprite0Hit = false
	p.spriteOverflow = false
	p.lastEvalLine = -999

	p.backgroundEnabled = false
	p.spritesEnabled = false
	p.renderingEnabled = false

	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.frameBuffer {
		p.frameBuffer[i] = 0
	}
}

// ReadRegister services a CPU read of $2000-$2007.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address & 7 {
	case 2: // PPUSTATUS
		status := p.ppuStatus
		p.ppuStatus &= 0x7F // clear VBlank (bit 7) only; sprite 0 hit clears at pre-render
		p.w = false
		return status
	case 4: // OAMDATA
		return p.oam[p.oamAddr]
	case 7: // PPUDATA
		return p.readData()
	default: // write-only registers read back open bus, approximated as the status low bits
		return p.ppuStatus & 0x1F
	}
}

// WriteRegister services a CPU write to $2000-$2007.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address & 7 {
	case 0: // PPUCTRL
		wasNMIEnabled := p.ppuCtrl&0x80 != 0
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)
		p.updateRenderingFlags()
		if !wasNMIEnabled && value&0x80 != 0 && p.ppuStatus&0x80 != 0 {
			p.fireNMI()
		}
	case 1: // PPUMASK
		p.ppuMask = value
		p.updateRenderingFlags()
	case 3: // OAMADDR
		p.oamAddr = value
	case 4: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5: // PPUSCROLL
		p.writeScroll(value)
	case 6: // PPUADDR
		p.writeAddr(value)
	case 7: // PPUDATA
		p.writeData(value)
	}
}

// WriteOAM writes a single byte into OAM, used by the bus's $4014 DMA.
func (p *PPU) WriteOAM(address uint8, value uint8) {
	p.oam[address] = value
}

func (p *PPU) fireNMI() {
	if p.nmiCallback != nil {
		p.nmiCallback()
	}
}

// Step advances the PPU by one dot (341 dots per scanline, 262 scanlines
// per frame, with the last dot of an odd-numbered pre-render scanline
// skipped while rendering is enabled).
func (p *PPU) Step() {
	if p.scanline == -1 && p.cycle == 339 && p.oddFrame && p.renderingEnabled {
		p.cycle = 340 // skip the idle dot
	}

	p.cycle++
	if p.cycle > 340 {
		p.cycle = 0
		p.scanline++
		if p.scanline > 260 {
			p.scanline = -1
			p.frameCount++
			p.oddFrame = !p.oddFrame
			if p.frameCompleteCallback != nil {
				p.frameCompleteCallback()
			}
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.ppuStatus |= 0x80
		if p.ppuCtrl&0x80 != 0 {
			p.fireNMI()
		}
	}

	if p.scanline == -1 && p.cycle == 1 {
		p.ppuStatus &= 0x1F // clear VBL, sprite 0 hit, sprite overflow
		p.sprite0Hit = false
		p.spriteOverflow = false
	}

	if p.scanline == 0 && p.cycle == 0 && p.renderingEnabled {
		p.v = p.t
	}

	if p.scanline >= -1 && p.scanline < 240 {
		p.renderDot()
	}

	if p.chr != nil {
		// Approximates the PPU address bus's A12 line: during rendering,
		// real hardware raises it on the sprite pattern fetches around
		// dot 260 of each scanline. Mappers that count A12 rising edges
		// (MMC3) see one edge per visible/pre-render scanline.
		a12 := p.renderingEnabled && p.cycle == 260 && p.scanline >= -1 && p.scanline < 240
		p.chr.Tick(a12)
	}
}

func (p *PPU) renderDot() {
	if p.spritesEnabled && p.scanline >= 0 && p.scanline < 240 && p.cycle == 1 {
		if p.lastEvalLine != p.scanline {
			p.evaluateSprites()
		}
	}

	if p.scanline < 0 || p.scanline >= 240 || p.cycle < 2 || p.cycle > 257 {
		return
	}
	if !p.backgroundEnabled && !p.spritesEnabled {
		return
	}

	pixelX := p.cycle - 2
	pixelY := p.scanline

	var bg, sp pixel
	bg.transparent = true
	sp.transparent = true

	if p.backgroundEnabled {
		bg = p.backgroundPixel(pixelX, pixelY)
	}
	if p.spritesEnabled {
		sp = p.spritePixel(pixelX, pixelY)
	}

	p.frameBuffer[pixelY*256+pixelX] = p.composite(bg, sp)
}

type pixel struct {
	colorIndex  uint8
	rgb         uint32
	spriteIndex int8
	priority    bool
	transparent bool
}

func (p *PPU) evaluateSprites() {
	p.lastEvalLine = p.scanline
	p.spriteCount = 0

	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}
	for i := range p.spriteIndex {
		p.spriteIndex[i] = 0xFF
	}

	height := 8
	if p.ppuCtrl&0x20 != 0 {
		height = 16
	}

	found := 0
	for sprite := 0; sprite < 64; sprite++ {
		base := sprite * 4
		y := int(p.oam[base])
		if p.scanline < y+1 || p.scanline >= y+1+height {
			continue
		}
		if found < 8 {
			dst := found * 4
			copy(p.secondaryOAM[dst:dst+4], p.oam[base:base+4])
			p.spriteIndex[found] = uint8(sprite)
			found++
			continue
		}
		p.spriteOverflow = true
		p.ppuStatus |= 0x20
		break
	}
	p.spriteCount = uint8(found)
}

func (p *PPU) backgroundPixel(pixelX, pixelY int) pixel {
	scrollX := int(p.t&0x001F)<<3 + int(p.x)
	scrollY := int((p.t>>5)&0x001F)<<3 + int((p.t>>12)&0x0007)
	nametable := int((p.t >> 10) & 0x0003)

	worldX := pixelX + scrollX
	worldY := pixelY + scrollY

	if worldX < 0 {
		nametable ^= 1
		worldX += 256
	} else if worldX >= 256 {
		nametable ^= 1
		worldX -= 256
	}
	if worldY < 0 {
		nametable ^= 2
		worldY += 240
	} else if worldY >= 240 {
		nametable ^= 2
		worldY -= 240
	}

	tileX, tileY := worldX>>3, worldY>>3
	fineX, fineY := worldX&7, worldY&7
	if tileX < 0 || tileX >= 32 || tileY < 0 || tileY >= 30 {
		return pixel{transparent: true, spriteIndex: -1}
	}

	nametableAddr := 0x2000 | uint16(nametable&3)<<10 | uint16(tileY*32+tileX)
	tileID := p.ReadVRAM(nametableAddr)

	attrAddr := 0x23C0 | uint16(nametable&3)<<10 | uint16((tileY>>2)*8+(tileX>>2))
	attrByte := p.ReadVRAM(attrAddr)
	block := ((tileX & 3) >> 1) + ((tileY&3)>>1)*2
	paletteIndex := (attrByte >> (uint(block) * 2)) & 0x03

	patternBase := uint16(0x0000)
	if p.ppuCtrl&0x10 != 0 {
		patternBase = 0x1000
	}
	patternAddr := patternBase + uint16(tileID)*16 + uint16(fineY)
	lo := p.chr.ReadCHR(patternAddr)
	hi := p.chr.ReadCHR(patternAddr + 8)

	shift := 7 - fineX
	colorIndex := ((hi>>uint(shift))&1)<<1 | (lo>>uint(shift))&1

	var paletteAddr uint16
	if colorIndex == 0 {
		paletteAddr = 0x3F00
	} else {
		paletteAddr = 0x3F00 + uint16(paletteIndex)*4 + uint16(colorIndex)
	}
	return pixel{
		colorIndex:  colorIndex,
		rgb:         NESColorToRGB(p.readPaletteByte(paletteAddr)),
		spriteIndex: -1,
		transparent: colorIndex == 0,
	}
}

func (p *PPU) spritePixel(pixelX, pixelY int) pixel {
	height := 8
	if p.ppuCtrl&0x20 != 0 {
		height = 16
	}

	for i := 0; i < int(p.spriteCount); i++ {
		base := i * 4
		y := int(p.secondaryOAM[base])
		tile := p.secondaryOAM[base+1]
		attr := p.secondaryOAM[base+2]
		x := int(p.secondaryOAM[base+3])

		if pixelX < x || pixelX >= x+8 || pixelY < y+1 || pixelY >= y+1+height {
			continue
		}
		sx := pixelX - x
		sy := pixelY - (y + 1)
		if attr&0x40 != 0 {
			sx = 7 - sx
		}
		if attr&0x80 != 0 {
			sy = height - 1 - sy
		}

		colorIndex := p.spritePatternColor(tile, sx, sy, height)
		if colorIndex == 0 {
			continue
		}

		if p.spriteIndex[i] == 0 && !p.sprite0Hit {
			p.checkSprite0Hit(pixelX, pixelY, colorIndex)
		}

		paletteIndex := attr & 0x03
		paletteAddr := 0x3F10 + uint16(paletteIndex)*4 + uint16(colorIndex)
		return pixel{
			colorIndex:  colorIndex,
			rgb:         NESColorToRGB(p.readPaletteByte(paletteAddr)),
			spriteIndex: int8(i),
			priority:    attr&0x20 != 0,
		}
	}
	return pixel{transparent: true, spriteIndex: -1}
}

func (p *PPU) spritePatternColor(tile uint8, sx, sy, height int) uint8 {
	var patternBase uint16
	if height == 8 {
		if p.ppuCtrl&0x08 != 0 {
			patternBase = 0x1000
		}
	} else {
		if tile&0x01 != 0 {
			patternBase = 0x1000
		}
		tile &= 0xFE
		if sy >= 8 {
			tile++
			sy -= 8
		}
	}
	patternAddr := patternBase + uint16(tile)*16 + uint16(sy)
	lo := p.chr.ReadCHR(patternAddr)
	hi := p.chr.ReadCHR(patternAddr + 8)
	shift := 7 - sx
	return ((hi>>uint(shift))&1)<<1 | (lo>>uint(shift))&1
}

// checkSprite0Hit models the hardware quirk that the hit flag never fires
// against the rightmost column and is suppressed while either plane is
// clipped in the leftmost 8 pixels.
func (p *PPU) checkSprite0Hit(pixelX, pixelY int, spriteColor uint8) {
	if !p.backgroundEnabled || !p.spritesEnabled {
		return
	}
	if pixelX >= 255 {
		return
	}
	if pixelX < 8 && (p.ppuMask&0x02 == 0 || p.ppuMask&0x04 == 0) {
		return
	}
	bg := p.backgroundPixel(pixelX, pixelY)
	if !bg.transparent && bg.colorIndex != 0 && spriteColor != 0 {
		p.sprite0Hit = true
		p.ppuStatus |= 0x40
	}
}

func (p *PPU) composite(bg, sp pixel) uint32 {
	if sp.transparent {
		if bg.transparent {
			return NESColorToRGB(p.readPaletteByte(0x3F00))
		}
		return bg.rgb
	}
	if bg.transparent {
		return sp.rgb
	}
	if sp.priority {
		return bg.rgb
	}
	return sp.rgb
}

func (p *PPU) updateRenderingFlags() {
	p.backgroundEnabled = p.ppuMask&0x08 != 0
	p.spritesEnabled = p.ppuMask&0x10 != 0
	p.renderingEnabled = p.backgroundEnabled || p.spritesEnabled
}

func (p *PPU) writeScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | uint16(value)>>3
		p.x = value & 0x07
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | (uint16(value)&0x07)<<12
		p.t = (p.t & 0xFC1F) | (uint16(value)&0xF8)<<2
		p.w = false
	}
}

func (p *PPU) writeAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x80FF) | (uint16(value)&0x3F)<<8
		p.w = true
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) addrIncrement() uint16 {
	if p.ppuCtrl&0x04 != 0 {
		return 32
	}
	return 1
}

func (p *PPU) readData() uint8 {
	var data uint8
	if p.v >= 0x3F00 {
		data = p.readPaletteByte(p.v)
		p.readBuffer = p.ReadVRAM(p.v & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.ReadVRAM(p.v)
	}
	p.v = (p.v + p.addrIncrement()) & 0x3FFF
	return data
}

func (p *PPU) writeData(value uint8) {
	if p.v >= 0x3F00 {
		p.writePaletteByte(p.v, value)
	} else {
		p.WriteVRAM(p.v, value)
	}
	p.v = (p.v + p.addrIncrement()) & 0x3FFF
}

// ReadVRAM reads the $2000-$2FFF nametable space (mirrored into $3000-$3EFF),
// resolving the mirroring mode through the attached mapper.
func (p *PPU) ReadVRAM(addr uint16) uint8 {
	return p.nametables[p.nametableOffset(addr)]
}

// WriteVRAM writes the nametable space.
func (p *PPU) WriteVRAM(addr uint16, value uint8) {
	p.nametables[p.nametableOffset(addr)] = value
}

func (p *PPU) nametableOffset(addr uint16) uint16 {
	addr &= 0x0FFF
	table := addr / 0x400
	offset := addr % 0x400

	var physical uint16
	switch p.chr.Mirroring() {
	case mapper.Vertical:
		physical = uint16(table%2)*0x400 + offset
	case mapper.Horizontal:
		physical = uint16(table/2)*0x400 + offset
	case mapper.SingleScreenLow:
		physical = offset
	case mapper.SingleScreenHigh:
		physical = 0x400 + offset
	case mapper.FourScreen:
		physical = addr % 0x800
	default:
		physical = uint16(table%2)*0x400 + offset
	}
	return physical % uint16(len(p.nametables))
}

func (p *PPU) readPaletteByte(addr uint16) uint8 {
	return p.palette[palettendex(addr)]
}

func (p *PPU) writePaletteByte(addr uint16, value uint8) {
	p.palette[palettendex(addr)] = value & 0x3F
}

// palettendex resolves the $3F10/$3F14/$3F18/$3F1C backdrop mirrors onto
// their $3F00/$3F04/$3F08/$3F0C counterparts.
func palettendex(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx >= 0x10 && idx%4 == 0 {
		idx -= 0x10
	}
	return idx
}

func (p *PPU) GetFrameBuffer() [256 * 240]uint32 { return p.frameBuffer }
func (p *PPU) FrameCount() uint64                { return p.frameCount }
func (p *PPU) Scanline() int                     { return p.scanline }
func (p *PPU) Cycle() int                        { return p.cycle }
func (p *PPU) IsRenderingEnabled() bool          { return p.renderingEnabled }
func (p *PPU) IsVBlank() bool                    { return p.ppuStatus&0x80 != 0 }

// nesColorPalette is the NTSC 2C02 palette.
var nesColorPalette = [64]uint32{
	0x666666, 0x002A88, 0x1412A7, 0x3B00A4, 0x5C007E, 0x6E0040, 0x6C0600, 0x561D00,
	0x333500, 0x0B4800, 0x005200, 0x004F08, 0x00404D, 0x000000, 0x000000, 0x000000,
	0xADADAD, 0x155FD9, 0x4240FF, 0x7527FE, 0xA01ACC, 0xB71E7B, 0xB53120, 0x994E00,
	0x6B6D00, 0x388700, 0x0C9300, 0x008F32, 0x007C8D, 0x000000, 0x000000, 0x000000,
	0xFFFEFF, 0x64B0FF, 0x9290FF, 0xC676FF, 0xF36AFF, 0xFE6ECC, 0xFE8170, 0xEA9E22,
	0xBCBE00, 0x88D800, 0x5CE430, 0x45E082, 0x48CDDE, 0x4F4F4F, 0x000000, 0x000000,
	0xFFFEFF, 0xC0DFFF, 0xD3D2FF, 0xE8C8FF, 0xFBC2FF, 0xFEC4EA, 0xFECCC5, 0xF7D8A5,
	0xE4E594, 0xCFF29B, 0xBEFBB3, 0xB8F8D8, 0xB8F8F8, 0x000000, 0x000000, 0x000000,
}

// NESColorToRGB maps a 6-bit NES palette index to an 0x00RRGGBB color.
func NESColorToRGB(colorIndex uint8) uint32 {
	if colorIndex >= 64 {
		return 0
	}
	return nesColorPalette[colorIndex]
}

// SaveState packs register and rendering-position state for a savestate.
func (p *PPU) SaveState() []byte {
	buf := make([]byte, 0, 4+2+2+1+1+2+2+8+1+1+len(p.nametables)+len(p.palette)+len(p.oam))
	put16 := func(v uint16) { buf = binary.LittleEndian.AppendUint16(buf, v) }

	buf = append(buf, p.ppuCtrl, p.ppuMask, p.ppuStatus, p.oamAddr)
	put16(p.v)
	put16(p.t)
	buf = append(buf, p.x)
	if p.w {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	put16(uint16(p.scanline + 1)) // stored as unsigned, -1 -> 0
	put16(uint16(p.cycle))
	buf = binary.LittleEndian.AppendUint64(buf, p.frameCount)
	if p.oddFrame {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, p.readBuffer)
	buf = append(buf, p.nametables[:]...)
	buf = append(buf, p.palette[:]...)
	buf = append(buf, p.oam[:]...)
	return buf
}

// LoadState restores state written by SaveState.
func (p *PPU) LoadState(data []byte) error {
	want := 4 + 2 + 2 + 1 + 1 + 2 + 2 + 8 + 1 + 1 + len(p.nametables) + len(p.palette) + len(p.oam)
	if len(data) < want {
		return errShortPPUState
	}
	i := 0
	p.ppuCtrl, p.ppuMask, p.ppuStatus, p.oamAddr = data[i], data[i+1], data[i+2], data[i+3]
	i += 4
	p.v = binary.LittleEndian.Uint16(data[i:])
	i += 2
	p.t = binary.LittleEndian.Uint16(data[i:])
	i += 2
	p.x = data[i]
	i++
	p.w = data[i] != 0
	i++
	p.scanline = int(binary.LittleEndian.Uint16(data[i:])) - 1
	i += 2
	p.cycle = int(binary.LittleEndian.Uint16(data[i:]))
	i += 2
	p.frameCount = binary.LittleEndian.Uint64(data[i:])
	i += 8
	p.oddFrame = data[i] != 0
	i++
	p.readBuffer = data[i]
	i++
	copy(p.nametables[:], data[i:i+len(p.nametables)])
	i += len(p.nametables)
	copy(p.palette[:], data[i:i+len(p.palette)])
	i += len(p.palette)
	copy(p.oam[:], data[i:i+len(p.oam)])
	p.updateRenderingFlags()
	return nil
}
