// Package graphics presents a Console's frame buffer and reads controller
// input through a swappable Backend, so the same emulation core can run
// windowed (ebiten), headless (automation, frame dumping), or to a terminal.
package graphics

// Backend owns a rendering surface's lifecycle: initialize it once, create
// at most one Window from it, and clean it up on exit.
type Backend interface {
	Initialize(config Config) error
	CreateWindow(title string, width, height int) (Window, error)
	Cleanup() error
	IsHeadless() bool
	GetName() string
}

// Window receives one 256x240 frame buffer per emulated frame and reports
// input back as a queue of InputEvents.
type Window interface {
	SetTitle(title string)
	GetSize() (width, height int)
	ShouldClose() bool

	// SwapBuffers presents whatever RenderFrame last wrote; backends that
	// present synchronously inside RenderFrame make this a no-op.
	SwapBuffers()
	PollEvents() []InputEvent
	RenderFrame(frameBuffer [256 * 240]uint32) error
	Cleanup() error
}

// Config configures a Backend before any Window exists.
type Config struct {
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	Filter      string // "nearest", "linear"
	AspectRatio string // "4:3", "stretch"

	Headless bool
	Debug    bool
}

type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeButton
	InputEventTypeQuit
)

// InputEvent is a single key or controller-button transition, or a quit
// request, as queued by a Window's PollEvents.
type InputEvent struct {
	Type      InputEventType
	Key       Key
	Button    Button
	Pressed   bool
	Modifiers ModifierKey
}

type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyJ
	KeyK
	KeyX
	KeyZ
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Button is an NES controller button; the Button2* constants are player 2's
// controller, kept distinct so one InputEvent always names a single pad.
type Button int

const (
	ButtonUnknown Button = iota
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	Button2A
	Button2B
	Button2Select
	Button2Start
	Button2Up
	Button2Down
	Button2Left
	Button2Right
)

type ModifierKey int

const (
	ModifierNone  ModifierKey = 0
	ModifierShift ModifierKey = 1 << iota
	ModifierCtrl
	ModifierAlt
	ModifierSuper
)

type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// CreateBackend constructs the named Backend, falling back to Ebitengine
// for anything unrecognized since that's the normal interactive path.
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal:
		return NewTerminalBackend(), nil
	default:
		return NewEbitengineBackend(), nil
	}
}

// AsEbitengineWindow narrows a Window to *EbitengineWindow so its Run
// method, which hands control to ebiten's own event loop, can be reached.
func AsEbitengineWindow(window Window) (*EbitengineWindow, bool) {
	ebitengineWindow, ok := window.(*EbitengineWindow)
	return ebitengineWindow, ok
}
