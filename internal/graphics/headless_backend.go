package graphics

import (
	"fmt"
	"os"
)

// HeadlessBackend satisfies Backend with no window or OS surface at all; it
// exists so app.Run can drive a Console purely through Step/FrameBuffer
// without opening a window.
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow is the Window CreateWindow hands back: it tracks a frame
// counter and, if DumpDir is set, writes every frame out as a PPM.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
	dumpDir    string
}

func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}
	b.config = config
	b.initialized = true
	return nil
}

func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}
	return &HeadlessWindow{title: title, width: width, height: height, running: true}, nil
}

func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

func (b *HeadlessBackend) IsHeadless() bool { return true }

func (b *HeadlessBackend) GetName() string { return "Headless" }

func (w *HeadlessWindow) SetTitle(title string) { w.title = title }

func (w *HeadlessWindow) GetSize() (width, height int) { return w.width, w.height }

func (w *HeadlessWindow) ShouldClose() bool { return !w.running }

func (w *HeadlessWindow) SwapBuffers() {}

func (w *HeadlessWindow) PollEvents() []InputEvent { return nil }

// RenderFrame counts the frame and, when a dump directory has been set via
// SetDumpDir, writes it out as a PPM named by frame number.
func (w *HeadlessWindow) RenderFrame(frameBuffer [256 * 240]uint32) error {
	w.frameCount++
	if w.dumpDir == "" {
		return nil
	}
	path := fmt.Sprintf("%s/frame_%06d.ppm", w.dumpDir, w.frameCount)
	return writePPM(path, frameBuffer)
}

func writePPM(path string, frameBuffer [256 * 240]uint32) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frameBuffer[y*256+x]
			fmt.Fprintf(file, "%d %d %d ", (pixel>>16)&0xFF, (pixel>>8)&0xFF, pixel&0xFF)
		}
		fmt.Fprintln(file)
	}
	return nil
}

func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// SetDumpDir enables per-frame PPM dumping to the given directory; an empty
// string (the default) disables it.
func (w *HeadlessWindow) SetDumpDir(dir string) { w.dumpDir = dir }

func (w *HeadlessWindow) GetFrameCount() int { return w.frameCount }
