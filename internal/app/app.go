// Package app implements the main NES emulator application with GUI support.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nescore/internal/console"
	"nescore/internal/graphics"
	"nescore/internal/input"
)

// Application ties a loaded console.Console to a graphics backend and drives
// the frame loop: poll input, step one frame, render, repeat.
type Application struct {
	console *console.Console

	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	config   *Config
	emulator *Emulator
	states   *StateManager

	running     bool
	paused      bool
	initialized bool
	headless    bool

	frameCount uint64
	startTime  time.Time

	romPath string

	lastESCTime time.Time
}

// ApplicationError wraps a failure in a specific application component.
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error { return e.Err }

// NewApplication creates a windowed application, loading config from configPath.
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates an application, optionally forcing headless mode.
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	app := &Application{
		config:    NewConfig(),
		headless:  headless,
		startTime: time.Now(),
	}

	if configPath != "" {
		if err := app.config.LoadFromFile(configPath); err != nil {
			fmt.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v\n", configPath, err)
		}
	}

	if err := app.initializeComponents(headless); err != nil {
		return nil, &ApplicationError{Component: "initialization", Operation: "component setup", Err: err}
	}

	return app, nil
}

func (app *Application) initializeComponents(headless bool) error {
	if err := app.initializeGraphicsBackend(headless); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %w", err)
	}

	app.states = NewStateManager(app.config.Paths.SaveStates)
	app.initialized = true
	return nil
}

func (app *Application) initializeGraphicsBackend(headless bool) error {
	var backendType graphics.BackendType
	if headless {
		backendType = graphics.BackendHeadless
	} else {
		switch app.config.Video.Backend {
		case "ebitengine":
			backendType = graphics.BackendEbitengine
		case "headless":
			backendType = graphics.BackendHeadless
		case "terminal":
			backendType = graphics.BackendTerminal
		default:
			backendType = graphics.BackendEbitengine
		}
	}

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %w", err)
	}

	graphicsConfig := graphics.Config{
		WindowTitle:  "nescore",
		WindowWidth:  app.config.Window.Width,
		WindowHeight: app.config.Window.Height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		AspectRatio:  app.config.Video.AspectRatio,
		Headless:     headless,
		Debug:        app.config.Debug.EnableLogging,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		if backendType != graphics.BackendEbitengine {
			return fmt.Errorf("failed to initialize graphics backend: %w", err)
		}
		fmt.Printf("[APP_WARNING] Ebitengine backend failed (%v), falling back to headless mode\n", err)
		app.graphicsBackend, err = graphics.CreateBackend(graphics.BackendHeadless)
		if err != nil {
			return fmt.Errorf("failed to create fallback headless backend: %w", err)
		}
		graphicsConfig.Headless = true
		if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
			return fmt.Errorf("failed to initialize fallback headless backend: %w", err)
		}
	}

	if !headless && !app.graphicsBackend.IsHeadless() {
		app.window, err = app.graphicsBackend.CreateWindow(graphicsConfig.WindowTitle, graphicsConfig.WindowWidth, graphicsConfig.WindowHeight)
		if err != nil {
			return fmt.Errorf("failed to create window: %w", err)
		}
	}

	app.videoProcessor = graphics.NewVideoProcessor(
		app.config.Video.Brightness,
		app.config.Video.Contrast,
		app.config.Video.Saturation,
	)

	return nil
}

// LoadROM opens romPath, builds a fresh console.Console from it, and starts
// the emulator.
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	f, err := os.Open(romPath)
	if err != nil {
		return &ApplicationError{Component: "rom", Operation: "open ROM", Err: err}
	}
	defer f.Close()

	c, err := console.New(f)
	if err != nil {
		return &ApplicationError{Component: "rom", Operation: "load ROM", Err: err}
	}

	app.console = c
	app.romPath = romPath
	app.emulator = NewEmulator(c, app.config)

	if app.window != nil {
		app.window.SetTitle(fmt.Sprintf("nescore - %s", filepath.Base(romPath)))
	}

	app.emulator.Start()
	return nil
}

// Run starts the frame loop and blocks until the window or caller stops it.
func (app *Application) Run() error {
	app.running = true

	if app.graphicsBackend.GetName() == "Ebitengine" && app.window != nil {
		if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
			ebitengineWindow.SetEmulatorUpdateFunc(func() error {
				if err := app.processInput(); err != nil && app.config.Debug.EnableLogging {
					fmt.Printf("[APP_ERROR] input: %v\n", err)
				}
				if err := app.updateEmulator(); err != nil && app.config.Debug.EnableLogging {
					fmt.Printf("[APP_ERROR] emulator update: %v\n", err)
				}
				if err := app.render(); err != nil && app.config.Debug.EnableLogging {
					fmt.Printf("[APP_ERROR] render: %v\n", err)
				}
				app.frameCount++
				if app.window.ShouldClose() {
					app.Stop()
				}
				return nil
			})
			return ebitengineWindow.Run()
		}
	}

	for app.running {
		if err := app.processInput(); err != nil && app.config.Debug.EnableLogging {
			fmt.Printf("[APP_ERROR] input: %v\n", err)
		}
		if err := app.updateEmulator(); err != nil && app.config.Debug.EnableLogging {
			fmt.Printf("[APP_ERROR] emulator update: %v\n", err)
		}
		if err := app.render(); err != nil && app.config.Debug.EnableLogging {
			fmt.Printf("[APP_ERROR] render: %v\n", err)
		}
		app.frameCount++

		if app.window != nil && app.window.ShouldClose() {
			app.Stop()
		}

		time.Sleep(16 * time.Millisecond)
	}

	return nil
}

func (app *Application) updateEmulator() error {
	if app.paused || app.console == nil || app.emulator == nil {
		return nil
	}
	return app.emulator.Update()
}

// processInput polls the window for events, maps them onto controller state
// and special key combinations (quit, save/load state).
func (app *Application) processInput() error {
	if app.window == nil {
		return nil
	}

	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()
			return nil

		case graphics.InputEventTypeButton:
			if app.handleSpecialInput(event) {
				continue
			}
			app.applyButtonEvent(event)

		case graphics.InputEventTypeKey:
			app.handleSpecialInput(event)
		}
	}

	return nil
}

func (app *Application) applyButtonEvent(event graphics.InputEvent) {
	if app.console == nil {
		return
	}
	if which, button, ok := mapGraphicsButton(event.Button); ok {
		app.console.SetButton(which, button, event.Pressed)
	}
}

func mapGraphicsButton(b graphics.Button) (which int, button input.Button, ok bool) {
	switch b {
	case graphics.ButtonA:
		return 0, input.ButtonA, true
	case graphics.ButtonB:
		return 0, input.ButtonB, true
	case graphics.ButtonSelect:
		return 0, input.ButtonSelect, true
	case graphics.ButtonStart:
		return 0, input.ButtonStart, true
	case graphics.ButtonUp:
		return 0, input.ButtonUp, true
	case graphics.ButtonDown:
		return 0, input.ButtonDown, true
	case graphics.ButtonLeft:
		return 0, input.ButtonLeft, true
	case graphics.ButtonRight:
		return 0, input.ButtonRight, true
	case graphics.Button2A:
		return 1, input.ButtonA, true
	case graphics.Button2B:
		return 1, input.ButtonB, true
	case graphics.Button2Select:
		return 1, input.ButtonSelect, true
	case graphics.Button2Start:
		return 1, input.ButtonStart, true
	case graphics.Button2Up:
		return 1, input.ButtonUp, true
	case graphics.Button2Down:
		return 1, input.ButtonDown, true
	case graphics.Button2Left:
		return 1, input.ButtonLeft, true
	case graphics.Button2Right:
		return 1, input.ButtonRight, true
	default:
		return 0, 0, false
	}
}

// handleSpecialInput handles ESC-to-quit and F1-F10 save/load state keys.
// Returns true if it consumed the event.
func (app *Application) handleSpecialInput(event graphics.InputEvent) bool {
	if !event.Pressed || event.Type != graphics.InputEventTypeKey {
		return false
	}

	if event.Key == graphics.KeyEscape {
		now := time.Now()
		if !app.lastESCTime.IsZero() && now.Sub(app.lastESCTime) < 3*time.Second {
			app.Stop()
		} else {
			app.lastESCTime = now
		}
		return true
	}
	app.lastESCTime = time.Time{}

	switch event.Key {
	case graphics.KeyF1, graphics.KeyF2, graphics.KeyF3, graphics.KeyF4, graphics.KeyF5,
		graphics.KeyF6, graphics.KeyF7, graphics.KeyF8, graphics.KeyF9, graphics.KeyF10:
		slot := int(event.Key - graphics.KeyF1)
		var err error
		if event.Modifiers&graphics.ModifierShift != 0 {
			err = app.LoadState(slot)
		} else {
			err = app.SaveState(slot)
		}
		if err != nil {
			fmt.Printf("[APP_ERROR] state slot %d: %v\n", slot, err)
		}
		return true
	}

	return false
}

func (app *Application) render() error {
	if app.window == nil || app.console == nil {
		return nil
	}

	frameBuffer := app.console.FrameBuffer()
	if app.videoProcessor != nil {
		processed := app.videoProcessor.ProcessFrame(frameBuffer[:])
		copy(frameBuffer[:], processed)
	}

	if err := app.window.RenderFrame(frameBuffer); err != nil {
		return fmt.Errorf("failed to render frame: %w", err)
	}
	app.window.SwapBuffers()
	return nil
}

// Stop ends the frame loop after the current iteration.
func (app *Application) Stop() { app.running = false }

// Pause suspends emulator stepping; rendering continues with the last frame.
func (app *Application) Pause() { app.paused = true }

// Resume resumes emulator stepping after Pause.
func (app *Application) Resume() { app.paused = false }

// TogglePause flips the paused flag.
func (app *Application) TogglePause() { app.paused = !app.paused }

// SaveState writes the console's current state to slot.
func (app *Application) SaveState(slot int) error {
	if app.console == nil {
		return errors.New("no ROM loaded")
	}
	return app.states.SaveState(app.console, slot, app.romPath)
}

// LoadState restores the console's state from slot.
func (app *Application) LoadState(slot int) error {
	if app.console == nil {
		return errors.New("no ROM loaded")
	}
	return app.states.LoadState(app.console, slot, app.romPath)
}

// Reset resets the running console, if any.
func (app *Application) Reset() {
	if app.console != nil {
		app.console.Reset()
	}
}

func (app *Application) IsRunning() bool { return app.running }

func (app *Application) IsPaused() bool { return app.paused }

func (app *Application) GetFrameCount() uint64 { return app.frameCount }

func (app *Application) GetUptime() time.Duration { return time.Since(app.startTime) }

func (app *Application) GetROMPath() string { return app.romPath }

func (app *Application) GetConfig() *Config { return app.config }

// GetConsole returns the running console for direct access, useful for
// testing and the headless CLI front ends.
func (app *Application) GetConsole() *console.Console { return app.console }

// Cleanup releases graphics resources and stops the emulator.
func (app *Application) Cleanup() error {
	var lastErr error

	if app.emulator != nil {
		if err := app.emulator.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] emulator cleanup: %v\n", err)
		}
	}

	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] window cleanup: %v\n", err)
		}
	}

	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] graphics backend cleanup: %v\n", err)
		}
	}

	app.initialized = false
	return lastErr
}
