package qrcode

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBadFormat    = errors.New("bad format: supported formats are svg and png")
	ErrRenderFailed = errors.New("failed to render QR code")
)

// Format is a downloadable output format
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg" or "png" in any case
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w (got %q)", ErrBadFormat, s)
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) Extension() string {
	return string(f)
}

func renderErr(stage string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrRenderFailed, stage, err)
}
