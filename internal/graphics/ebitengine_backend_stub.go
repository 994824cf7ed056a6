//go:build headless
// +build headless

// This file satisfies the Backend/Window contract with errors when the
// ebiten import itself is unwanted in a build (e.g. a CI container with no
// graphics libraries installed); use BackendHeadless for an actually
// runnable no-display backend.
package graphics

import "errors"

var errEbitenUnavailable = errors.New("ebitengine backend excluded from this build")

type EbitengineBackend struct{}

type EbitengineWindow struct{}

func NewEbitengineBackend() Backend { return &EbitengineBackend{} }

func (b *EbitengineBackend) Initialize(config Config) error { return errEbitenUnavailable }

func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	return nil, errEbitenUnavailable
}

func (b *EbitengineBackend) Cleanup() error { return nil }

func (b *EbitengineBackend) IsHeadless() bool { return true }

func (b *EbitengineBackend) GetName() string { return "Ebitengine-Stub" }

func (w *EbitengineWindow) SetTitle(title string)         {}
func (w *EbitengineWindow) GetSize() (width, height int)  { return 0, 0 }
func (w *EbitengineWindow) ShouldClose() bool             { return true }
func (w *EbitengineWindow) SwapBuffers()                  {}
func (w *EbitengineWindow) PollEvents() []InputEvent      { return nil }
func (w *EbitengineWindow) Cleanup() error                { return nil }
func (w *EbitengineWindow) SetEmulatorUpdateFunc(f func() error) {}

func (w *EbitengineWindow) RenderFrame(frameBuffer [256 * 240]uint32) error {
	return errEbitenUnavailable
}

func (w *EbitengineWindow) Run() error { return errEbitenUnavailable }