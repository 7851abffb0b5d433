package imagepkg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

var errNotJPEG = errors.New("not a jpeg stream")

// EncodeJPEG writes img as a JPEG carrying a JFIF header that declares
// SheetDPI, so print services size the sheet at 6x4 inches.
func EncodeJPEG(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return err
	}
	out, err := withDensity(buf.Bytes(), SheetDPI)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// withDensity returns jpg with its APP0 JFIF segment set to dpi dots per inch.
// An existing APP0 segment is replaced, otherwise one is inserted after SOI.
func withDensity(jpg []byte, dpi int) ([]byte, error) {
	if len(jpg) < 4 || jpg[0] != 0xFF || jpg[1] != 0xD8 {
		return nil, errNotJPEG
	}

	app0 := make([]byte, 18)
	app0[0], app0[1] = 0xFF, 0xE0
	binary.BigEndian.PutUint16(app0[2:], 16)
	copy(app0[4:], "JFIF\x00")
	app0[9], app0[10] = 1, 1 // version 1.01
	app0[11] = 1             // density in dots per inch
	binary.BigEndian.PutUint16(app0[12:], uint16(dpi))
	binary.BigEndian.PutUint16(app0[14:], uint16(dpi))
	// app0[16], app0[17]: no thumbnail

	rest := jpg[2:]
	if rest[0] == 0xFF && rest[1] == 0xE0 && len(rest) >= 4 {
		n := int(binary.BigEndian.Uint16(rest[2:]))
		if 2+n <= len(rest) {
			rest = rest[2+n:]
		}
	}

	out := make([]byte, 0, len(jpg)+len(app0))
	out = append(out, 0xFF, 0xD8)
	out = append(out, app0...)
	return append(out, rest...), nil
}
