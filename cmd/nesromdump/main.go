// Command nesromdump runs a ROM headlessly for a fixed number of frames and
// writes the final frame buffer out as a PNG, optionally upscaled.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"nescore/internal/console"
)

func main() {
	var (
		frames = flag.Int("frames", 120, "number of frames to run before dumping")
		scale  = flag.Int("scale", 1, "nearest-neighbor upscale factor")
		out    = flag.String("out", "frame.png", "output PNG path")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: nesromdump [-frames N] [-scale N] [-out path] <file.nes>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *frames, *scale, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(romPath string, frames, scale int, out string) error {
	f, err := os.Open(romPath)
	if err != nil {
		return err
	}
	defer f.Close()

	c, err := console.New(f)
	if err != nil {
		return fmt.Errorf("loading %s: %w", romPath, err)
	}

	for i := 0; i < frames; i++ {
		c.StepFrame()
	}

	fb := c.FrameBuffer()
	img := image.NewRGBA(image.Rect(0, 0, 256, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := fb[y*256+x]
			img.Set(x, y, color.RGBA{
				R: uint8(pixel >> 16),
				G: uint8(pixel >> 8),
				B: uint8(pixel),
				A: 0xFF,
			})
		}
	}

	final := image.Image(img)
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, 256*scale, 240*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		final = dst
	}

	outFile, err := os.Create(out)
	if err != nil {
		return err
	}
	defer outFile.Close()

	if err := png.Encode(outFile, final); err != nil {
		return fmt.Errorf("encoding %s: %w", out, err)
	}
	fmt.Printf("wrote %s after %d frames\n", out, frames)
	return nil
}
