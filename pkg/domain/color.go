package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Color is an 8-bit ARGB colour.
type Color struct {
	A, R, G, B uint8
}

var (
	Black = Color{A: 255}
	White = Color{A: 255, R: 255, G: 255, B: 255}
)

// ParseColor converts a hex colour string into a Color. It never fails.
//
// Leading and trailing non-alphanumeric characters are trimmed first, then
// the longest hexadecimal prefix is scanned. The trimmed length selects the
// layout: 3 digits are RGB nibbles (each multiplied by 17), 6 digits are RGB,
// 8 digits are ARGB. Any other length yields opaque black.
func ParseColor(s string) Color {
	hex := strings.TrimFunc(s, func(r rune) bool { return !isAlphanumeric(r) })
	v := scanHex(hex)

	switch utf8.RuneCountInString(hex) {
	case 3:
		return Color{
			A: 255,
			R: uint8((v >> 8) * 17),
			G: uint8((v >> 4 & 0xF) * 17),
			B: uint8((v & 0xF) * 17),
		}
	case 6:
		return Color{A: 255, R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
	case 8:
		return Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
	default:
		return Black
	}
}

// ValidColorString reports whether s has one of the lengths ParseColor understands
// and consists only of hex digits after trimming.
func ValidColorString(s string) bool {
	hex := strings.TrimFunc(s, func(r rune) bool { return !isAlphanumeric(r) })
	switch len(hex) {
	case 3, 6, 8:
	default:
		return false
	}
	for i := 0; i < len(hex); i++ {
		if hexDigit(hex[i]) < 0 {
			return false
		}
	}
	return true
}

// Hex renders the colour as #RRGGBB when opaque and #AARRGGBB otherwise.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

// Components returns the channels normalised to [0, 1] in sRGB order plus opacity.
func (c Color) Components() (r, g, b, opacity float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255
}

func (c Color) String() string { return c.Hex() }

// scanHex reads an optional 0x prefix and then as many hex digits as it can.
// It returns 0 when no digit is found.
func scanHex(s string) uint64 {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') && hexDigit(s[2]) >= 0 {
		s = s[2:]
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		d := hexDigit(s[i])
		if d < 0 {
			break
		}
		if v > (^uint64(0))>>4 {
			return ^uint64(0)
		}
		v = v<<4 | uint64(d)
	}
	return v
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
