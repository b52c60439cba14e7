package qrcode

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// baseDPI is the density at which an SVG user unit maps to one CSS pixel
const baseDPI = 72

// SVGToPNG rasterizes previously stored SVG markup. Used when the original target URL
// was not kept, so the code cannot be re-encoded. The output is upscaled by
// densityDPI/72 because small codes lose fidelity when rasterized at native size.
func SVGToPNG(svg string, style Style, densityDPI int) ([]byte, error) {
	if densityDPI <= 0 {
		densityDPI = baseDPI
	}
	style = style.Normalized()
	width := int(math.Round(float64(style.Width()) * float64(densityDPI) / baseDPI))
	return rasterize([]byte(svg), style, width)
}

// rasterize draws svg into a width-pixel-wide PNG. oksvg skips <text>, so the caption
// is painted separately into the band below the square code area.
func rasterize(svg []byte, style Style, width int) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, renderErr("parse svg", err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, renderErr("parse svg", fmt.Errorf("missing viewBox"))
	}

	height := int(math.Round(float64(width) * icon.ViewBox.H / icon.ViewBox.W))
	if width <= 0 || height <= 0 {
		return nil, renderErr("raster", fmt.Errorf("invalid dimensions %dx%d", width, height))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	icon.SetTarget(0, 0, float64(width), float64(height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	if style.CustomText != "" && height > width {
		dark, err := parseHexColor(style.PrimaryColor)
		if err != nil {
			return nil, renderErr("primary color", err)
		}
		drawCaption(img, image.Rect(0, width, width, height), style.CustomText, image.NewUniform(dark))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, renderErr("encode png", err)
	}
	return buf.Bytes(), nil
}

// drawCaption renders text with the fixed 7x13 face and scales it into band
func drawCaption(dst *image.RGBA, band image.Rectangle, text string, src image.Image) {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	if textWidth == 0 {
		return
	}

	const pad = 2
	glyphs := image.NewRGBA(image.Rect(0, 0, textWidth+2*pad, face.Height+2*pad))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  src,
		Face: face,
		Dot:  fixed.P(pad, pad+face.Ascent),
	}
	d.DrawString(text)

	scale := float64(band.Dy()) * 0.6 / float64(glyphs.Bounds().Dy())
	w := int(float64(glyphs.Bounds().Dx()) * scale)
	h := int(float64(glyphs.Bounds().Dy()) * scale)
	if w > band.Dx() {
		h = h * band.Dx() / w
		w = band.Dx()
	}
	if w <= 0 || h <= 0 {
		return
	}

	x0 := band.Min.X + (band.Dx()-w)/2
	y0 := band.Min.Y + (band.Dy()-h)/2
	draw.ApproxBiLinear.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), glyphs, glyphs.Bounds(), draw.Over, nil)
}
