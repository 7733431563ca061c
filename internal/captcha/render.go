package captcha

import (
	"fmt"
	"html"
	"math"
	"strings"
)

const (
	glyphWidth  = 24
	imagePadX   = 16
	imageHeight = 64
)

// RenderSVG draws the code skewed, with the noise strokes on top
func RenderSVG(code string, noise []Stroke) []byte {
	width := len(code)*glyphWidth + 2*imagePadX

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img" aria-label="CAPTCHA image">`,
		width, imageHeight, width, imageHeight)
	b.WriteString(`<defs><linearGradient id="bg" x1="0" y1="0" x2="1" y2="1">`)
	b.WriteString(`<stop offset="0" stop-color="#f7fafc"/><stop offset="1" stop-color="#e2e8f0"/></linearGradient></defs>`)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="url(#bg)"/>`, width, imageHeight)

	b.WriteString(`<g transform="skewX(-10)" font-family="monospace" font-size="28" fill="#1a202c">`)
	for i, r := range code {
		x := imagePadX + i*glyphWidth + glyphWidth/2
		fmt.Fprintf(&b, `<text x="%d" y="42" text-anchor="middle">%s</text>`, x, html.EscapeString(string(r)))
	}
	b.WriteString(`</g>`)

	for _, s := range noise {
		x1 := s.Left / 100 * float64(width)
		y1 := s.Top / 100 * float64(imageHeight)
		rad := s.Rotate * math.Pi / 180
		x2 := x1 + math.Sin(rad)*s.Height
		y2 := y1 + math.Cos(rad)*s.Height
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#a0aec0" stroke-width="1" opacity="0.5"/>`,
			x1, y1, x2, y2)
	}

	b.WriteString(`</svg>`)
	return []byte(b.String())
}
