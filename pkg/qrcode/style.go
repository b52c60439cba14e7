package qrcode

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

const (
	// Margin is the quiet zone around every generated code, in modules
	Margin = 1

	DefaultPrimaryColor    = "#000000"
	DefaultBackgroundColor = "#FFFFFF"
	DefaultSize            = "medium"
	DefaultErrorLevel      = "M"
	DefaultDesign          = "square"
)

var sizePixels = map[string]int{
	"tiny":   100,
	"small":  200,
	"medium": 300,
	"large":  400,
	"xlarge": 500,
}

var recoveryLevels = map[string]goqrcode.RecoveryLevel{
	"L": goqrcode.Low,
	"M": goqrcode.Medium,
	"Q": goqrcode.High,
	"H": goqrcode.Highest,
}

var designs = map[string]bool{
	"square":  true,
	"rounded": true,
	"dots":    true,
}

// Style is the user-facing look of a code
type Style struct {
	Design          string
	PrimaryColor    string
	BackgroundColor string
	Size            string
	ErrorCorrection string
	HasLogo         bool
	CustomText      string
}

// SizePixels maps a named size to its pixel width; unknown names map to medium
func SizePixels(size string) int {
	if px, ok := sizePixels[strings.ToLower(size)]; ok {
		return px
	}
	return sizePixels[DefaultSize]
}

// NormalizeSize returns the canonical size name, falling back to medium
func NormalizeSize(size string) string {
	s := strings.ToLower(strings.TrimSpace(size))
	if _, ok := sizePixels[s]; ok {
		return s
	}
	return DefaultSize
}

// NormalizeErrorLevel returns L, M, Q or H, falling back to M
func NormalizeErrorLevel(level string) string {
	l := strings.ToUpper(strings.TrimSpace(level))
	if _, ok := recoveryLevels[l]; ok {
		return l
	}
	return DefaultErrorLevel
}

func NormalizeDesign(design string) string {
	d := strings.ToLower(strings.TrimSpace(design))
	if designs[d] {
		return d
	}
	return DefaultDesign
}

// Normalized fills defaults and maps unrecognized enum values to their fallbacks.
// Colors are only defaulted when empty; they are validated at render time.
func (s Style) Normalized() Style {
	out := s
	out.Design = NormalizeDesign(s.Design)
	out.Size = NormalizeSize(s.Size)
	out.ErrorCorrection = NormalizeErrorLevel(s.ErrorCorrection)
	out.PrimaryColor = strings.TrimSpace(s.PrimaryColor)
	if out.PrimaryColor == "" {
		out.PrimaryColor = DefaultPrimaryColor
	}
	out.BackgroundColor = strings.TrimSpace(s.BackgroundColor)
	if out.BackgroundColor == "" {
		out.BackgroundColor = DefaultBackgroundColor
	}
	out.CustomText = strings.TrimSpace(s.CustomText)
	return out
}

// Width is the rendered pixel width for the style's size
func (s Style) Width() int {
	return SizePixels(s.Size)
}

func (s Style) recoveryLevel() goqrcode.RecoveryLevel {
	return recoveryLevels[NormalizeErrorLevel(s.ErrorCorrection)]
}

// parseHexColor accepts #RGB, #RRGGBB and #RRGGBBAA
func parseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 || !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
