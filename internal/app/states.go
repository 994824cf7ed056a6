// Package app provides save-state slot management for the NES emulator GUI.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nescore/internal/console"
)

// StateManager manages on-disk save-state slots. The state bytes themselves
// are whatever console.Console.SaveState produces (spec.md §6's binary
// format, self-describing via its own magic/version/checksum/ROM-hash
// header); this manager only adds slot-file bookkeeping around them.
type StateManager struct {
	saveDirectory string
	maxSlots      int
}

// StateSlotInfo describes one save-state slot on disk.
type StateSlotInfo struct {
	SlotNumber int
	Used       bool
	ModTime    time.Time
	FilePath   string
	FileSize   int64
}

// NewStateManager creates a state manager rooted at saveDirectory, creating
// it if necessary.
func NewStateManager(saveDirectory string) *StateManager {
	sm := &StateManager{saveDirectory: saveDirectory, maxSlots: 10}
	if err := os.MkdirAll(saveDirectory, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not create save directory %s: %v\n", saveDirectory, err)
	}
	return sm
}

// SaveState writes slot's save-state to disk, named after the ROM.
func (sm *StateManager) SaveState(c *console.Console, slot int, romPath string) error {
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, sm.maxSlots-1)
	}
	if c == nil {
		return fmt.Errorf("console cannot be nil")
	}
	return os.WriteFile(sm.getSlotFilePath(slot, romPath), c.SaveState(), 0644)
}

// LoadState restores slot's save-state into c.
func (sm *StateManager) LoadState(c *console.Console, slot int, romPath string) error {
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, sm.maxSlots-1)
	}
	data, err := os.ReadFile(sm.getSlotFilePath(slot, romPath))
	if err != nil {
		return fmt.Errorf("reading save slot %d: %w", slot, err)
	}
	return c.LoadState(data)
}

func (sm *StateManager) getSlotFilePath(slot int, romPath string) string {
	base := filepath.Base(romPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return filepath.Join(sm.saveDirectory, fmt.Sprintf("%s.slot%d.nesstate", name, slot))
}

// GetSlotInfo lists the status of every slot for the given ROM.
func (sm *StateManager) GetSlotInfo(romPath string) []StateSlotInfo {
	slots := make([]StateSlotInfo, sm.maxSlots)
	for i := range slots {
		path := sm.getSlotFilePath(i, romPath)
		slots[i] = StateSlotInfo{SlotNumber: i, FilePath: path}
		if info, err := os.Stat(path); err == nil {
			slots[i].Used = true
			slots[i].ModTime = info.ModTime()
			slots[i].FileSize = info.Size()
		}
	}
	return slots
}

// HasSaveState reports whether slot has a save file for romPath.
func (sm *StateManager) HasSaveState(slot int, romPath string) bool {
	_, err := os.Stat(sm.getSlotFilePath(slot, romPath))
	return err == nil
}

// DeleteState removes slot's save file, if any.
func (sm *StateManager) DeleteState(slot int, romPath string) error {
	path := sm.getSlotFilePath(slot, romPath)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}

// GetMaxSlots returns the number of available slots.
func (sm *StateManager) GetMaxSlots() int { return sm.maxSlots }

// GetSaveDirectory returns the directory save states are written to.
func (sm *StateManager) GetSaveDirectory() string { return sm.saveDirectory }
