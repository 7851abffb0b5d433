package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
	// CDN artwork is frequently served as WebP.
	_ "golang.org/x/image/webp"
)

// Print sheet geometry: a 6x4 inch photo print at 300 DPI holding two
// poker-size cards side by side.
const (
	SheetWidth  = 1800
	SheetHeight = 1200
	CardWidth   = 744
	CardHeight  = 1039
	SheetDPI    = 300

	jpegQuality = 95
)

var (
	FirstSlot  = image.Pt(100, 100)
	SecondSlot = image.Pt(900, 100)
)

// ComposePrintSheet lays two card images onto a white sheet. When rotateFirst
// is set the first image is turned 90 degrees counter-clockwise (the canvas of
// the image grows to fit, nothing is cropped) before both are scaled to the
// card slot. Undecodable input is an error: callers must never pass bytes for
// an image that failed to download.
func ComposePrintSheet(first, second []byte, rotateFirst bool) (*image.NRGBA, error) {
	a, err := imaging.Decode(bytes.NewReader(first))
	if err != nil {
		return nil, fmt.Errorf("decode first card: %w", err)
	}
	b, err := imaging.Decode(bytes.NewReader(second))
	if err != nil {
		return nil, fmt.Errorf("decode second card: %w", err)
	}

	if rotateFirst {
		a = imaging.Rotate90(a)
	}

	canvas := imaging.New(SheetWidth, SheetHeight, color.White)
	canvas = imaging.Overlay(canvas, imaging.Resize(a, CardWidth, CardHeight, imaging.Lanczos), FirstSlot, 1.0)
	canvas = imaging.Overlay(canvas, imaging.Resize(b, CardWidth, CardHeight, imaging.Lanczos), SecondSlot, 1.0)
	return canvas, nil
}

// WritePrintSheet composes a sheet and writes it to dst as a 300 DPI JPEG.
func WritePrintSheet(dst string, first, second []byte, rotateFirst bool) error {
	sheet, err := ComposePrintSheet(first, second, rotateFirst)
	if err != nil {
		return err
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if err := EncodeJPEG(f, sheet); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", dst, err)
	}
	return f.Close()
}
