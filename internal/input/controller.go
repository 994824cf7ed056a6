// Package input implements the NES controller shift-register protocol.
package input

// Button identifies one of the eight buttons on a standard NES pad.
// Bit ordering matches the save-state byte layout: bit 0 = A, bit 7 = RIGHT.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller models one NES controller's strobe latch and shift register.
type Controller struct {
	buttons       uint8
	strobe        bool
	shiftRegister uint8
}

// New creates a controller with no buttons pressed.
func New() *Controller {
	return &Controller{}
}

// SetButton sets or clears a single button.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetState loads all eight buttons at once from the save-state byte layout
// (bit 0 = A ... bit 7 = RIGHT).
func (c *Controller) SetState(state uint8) {
	c.buttons = state
}

// State returns the live button state in the save-state byte layout.
func (c *Controller) State() uint8 {
	return c.buttons
}

// IsPressed reports whether a button is currently held.
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Write handles a write to $4016: bit 0 is the strobe line. While strobe is
// high the shift register continuously reloads from live button state; the
// falling edge latches the value reads will shift out.
func (c *Controller) Write(value uint8) {
	c.strobe = value&1 != 0
	if c.strobe {
		c.shiftRegister = c.buttons
	}
}

// Read returns the next bit of the shift register. While strobe is high,
// every read returns the A button's live state. Once the eight button bits
// are exhausted, a 1 bit is shifted in from the top, matching the open-bus
// behavior real hardware exhibits past the eighth read.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.shiftRegister = c.buttons
		return c.shiftRegister & 1
	}
	bit := c.shiftRegister & 1
	c.shiftRegister = (c.shiftRegister >> 1) | 0x80
	return bit
}

// Reset clears button state and the shift register.
func (c *Controller) Reset() {
	c.buttons = 0
	c.strobe = false
	c.shiftRegister = 0
}

// SaveState packs the controller's persistent state.
func (c *Controller) SaveState() []byte {
	strobe := uint8(0)
	if c.strobe {
		strobe = 1
	}
	return []byte{c.buttons, strobe, c.shiftRegister}
}

// LoadState restores state written by SaveState.
func (c *Controller) LoadState(data []byte) bool {
	if len(data) < 3 {
		return false
	}
	c.buttons = data[0]
	c.strobe = data[1] != 0
	c.shiftRegister = data[2]
	return true
}

// InputState owns both controller ports and dispatches $4016/$4017 access.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates a fresh pair of controllers.
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets both controllers.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// Read dispatches a read from $4016 or $4017. Bit 6 of a $4017 read is fixed
// high to match hardware; no other open-bus bits are modeled.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read() | 0x40
	default:
		return 0
	}
}

// Write dispatches a write to $4016. The strobe line is wired to both
// controllers simultaneously; $4017 writes are routed to the APU frame
// counter by the bus, not here.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}

// SaveState packs both controllers' state.
func (is *InputState) SaveState() []byte {
	buf := make([]byte, 0, 6)
	buf = append(buf, is.Controller1.SaveState()...)
	buf = append(buf, is.Controller2.SaveState()...)
	return buf
}

// LoadState restores state written by SaveState.
func (is *InputState) LoadState(data []byte) bool {
	if len(data) < 6 {
		return false
	}
	return is.Controller1.LoadState(data[0:3]) && is.Controller2.LoadState(data[3:6])
}
