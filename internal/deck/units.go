package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Length is a distance in EMU, the unit of OOXML drawings.
type Length int64

const (
	emuPerPoint = 12700
	emuPerCm    = 360000
	emuPerInch  = 914400
)

// Pt converts points to EMU.
func Pt(v float64) Length { return Length(v * emuPerPoint) }

// Cm converts centimetres to EMU.
func Cm(v float64) Length { return Length(v * emuPerCm) }

// Inches converts inches to EMU.
func Inches(v float64) Length { return Length(v * emuPerInch) }

// Points returns l in points.
func (l Length) Points() float64 { return float64(l) / emuPerPoint }

// RGB is a solid fill color.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color the way srgbClr stores it, e.g. "D6F5D6".
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// ParseHex parses "D6F5D6" or "#d6f5d6".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}
