package qrcode

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

// captionModules is the height of the caption band under the code, in modules
const captionModules = 3

// matrix builds the module grid without the library's own 4-module border;
// the quiet zone is added by the renderers so Margin stays the single source.
func matrix(content string, style Style) ([][]bool, error) {
	q, err := goqrcode.New(content, style.recoveryLevel())
	if err != nil {
		return nil, renderErr("encode", err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// SVG renders content with the given style as standalone SVG markup.
// Output is deterministic for the same (content, style) pair.
func SVG(content string, style Style) (string, error) {
	style = style.Normalized()

	if _, err := parseHexColor(style.PrimaryColor); err != nil {
		return "", renderErr("primary color", err)
	}
	if _, err := parseHexColor(style.BackgroundColor); err != nil {
		return "", renderErr("background color", err)
	}

	bitmap, err := matrix(content, style)
	if err != nil {
		return "", err
	}

	total := len(bitmap) + 2*Margin
	viewHeight := total
	if style.CustomText != "" {
		viewHeight += captionModules
	}
	width := style.Width()
	height := width * viewHeight / total

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`+"\n",
		width, height, total, viewHeight)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", total, viewHeight, style.BackgroundColor)

	switch style.Design {
	case "rounded":
		fmt.Fprintf(&b, `<g fill="%s">`+"\n", style.PrimaryColor)
		eachDark(bitmap, func(x, y int) {
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="1" rx="0.3" ry="0.3"/>`+"\n", x+Margin, y+Margin)
		})
		b.WriteString("</g>\n")
	case "dots":
		fmt.Fprintf(&b, `<g fill="%s">`+"\n", style.PrimaryColor)
		eachDark(bitmap, func(x, y int) {
			fmt.Fprintf(&b, `<circle cx="%d.5" cy="%d.5" r="0.45"/>`+"\n", x+Margin, y+Margin)
		})
		b.WriteString("</g>\n")
	default:
		fmt.Fprintf(&b, `<path fill="%s" d="%s"/>`+"\n", style.PrimaryColor, squarePath(bitmap))
	}

	if style.CustomText != "" {
		fmt.Fprintf(&b, `<text x="%s" y="%s" font-family="sans-serif" font-size="1.6" text-anchor="middle" fill="%s">`,
			strconv.FormatFloat(float64(total)/2, 'f', -1, 64),
			strconv.FormatFloat(float64(total)+2.1, 'f', -1, 64),
			style.PrimaryColor)
		if err := xml.EscapeText(&b, []byte(style.CustomText)); err != nil {
			return "", renderErr("caption", err)
		}
		b.WriteString("</text>\n")
	}

	b.WriteString("</svg>\n")
	return b.String(), nil
}

// squarePath merges horizontal runs of dark modules into one rectangle each
func squarePath(bitmap [][]bool) string {
	var d strings.Builder
	for y, row := range bitmap {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			run := x - start
			fmt.Fprintf(&d, "M%d %dh%dv1h-%dz", start+Margin, y+Margin, run, run)
		}
	}
	return d.String()
}

func eachDark(bitmap [][]bool, fn func(x, y int)) {
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fn(x, y)
			}
		}
	}
}

// PNG renders content straight to PNG at the style's pixel width.
// It shares the SVG geometry so both formats stay visually identical.
func PNG(content string, style Style) ([]byte, error) {
	style = style.Normalized()
	svg, err := SVG(content, style)
	if err != nil {
		return nil, err
	}
	return rasterize([]byte(svg), style, style.Width())
}

// DataURL wraps data as a base64 data URI
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
