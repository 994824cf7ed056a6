// Command nesinfo inspects iNES/NES 2.0 ROM images and nescore save states
// without running the emulator.
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nescore/internal/mapper"
	"nescore/internal/rom"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nesinfo",
		Short: "Inspect NES ROM images and save states",
	}
	root.AddCommand(headerCmd(), mapperCmd(), stateCmd())
	return root
}

func headerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header <file.nes>",
		Short: "Print the parsed iNES/NES 2.0 header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			image, err := rom.Load(f)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			fmt.Printf("PRG ROM:   %d bytes (%d x 16KB banks)\n", len(image.PRG), len(image.PRG)/16384)
			fmt.Printf("CHR ROM:   %d bytes (%d x 8KB banks)\n", len(image.CHR), len(image.CHR)/8192)
			fmt.Printf("Mapper:    %d\n", image.MapperNumber)
			fmt.Printf("Mirroring: %s\n", mirroringName(image.Mirroring))
			fmt.Printf("Battery:   %t\n", image.Battery)
			fmt.Printf("NES 2.0:   %t\n", image.IsNES20)
			if image.IsNES20 {
				fmt.Printf("Submapper: %d\n", image.Submapper)
			}
			return nil
		},
	}
}

func mirroringName(m rom.Mirroring) string {
	switch m {
	case rom.MirrorHorizontal:
		return "horizontal"
	case rom.MirrorVertical:
		return "vertical"
	case rom.MirrorFourScreen:
		return "four-screen"
	default:
		return "mapper-controlled"
	}
}

func mapperCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mapper <file.nes>",
		Short: "Report whether a ROM's mapper is supported and why not if not",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			image, err := rom.Load(f)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			if _, err := mapper.New(image); err != nil {
				fmt.Printf("mapper %d: unsupported (%v)\n", image.MapperNumber, err)
				return nil
			}
			fmt.Printf("mapper %d: supported\n", image.MapperNumber)
			return nil
		},
	}
}

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <file.nesstate>",
		Short: "Print a save state's header fields without restoring it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if len(data) < 64 {
				return fmt.Errorf("%s is too short to contain a save-state header", args[0])
			}

			magic := string(data[0:4])
			version := binary.LittleEndian.Uint32(data[4:8])
			checksum := binary.LittleEndian.Uint32(data[8:12])
			flags := binary.LittleEndian.Uint32(data[12:16])
			romHash := data[16:48]
			timestamp := binary.LittleEndian.Uint64(data[48:56])
			frameCount := binary.LittleEndian.Uint64(data[56:64])

			fmt.Printf("Magic:      %q\n", magic)
			fmt.Printf("Version:    %d\n", version)
			fmt.Printf("Checksum:   %08x\n", checksum)
			fmt.Printf("Compressed: %t\n", flags&1 != 0)
			fmt.Printf("ROM hash:   %x\n", romHash)
			fmt.Printf("Timestamp:  %d\n", timestamp)
			fmt.Printf("Frame:      %d\n", frameCount)
			fmt.Printf("Body bytes: %d\n", len(data)-64)
			return nil
		},
	}
}
