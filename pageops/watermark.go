package pageops

import (
	"fmt"
	"io"
)

// TextWatermark defines a text-based watermark.
type TextWatermark struct {
	Text     string   `json:"text" yaml:"text"`
	FontSize float64  `json:"font_size,omitempty" yaml:"font_size,omitempty"` // points (default: 60)
	Color    RGBColor `json:"color,omitempty" yaml:"color,omitempty"`         // default: light gray
	Opacity  float64  `json:"opacity,omitempty" yaml:"opacity,omitempty"`     // 0.0 to 1.0 (default: 0.3)
	Angle    float64  `json:"angle,omitempty" yaml:"angle,omitempty"`         // degrees (default: 45)
}

// RGBColor represents an RGB color value.
type RGBColor struct {
	R int `json:"r" yaml:"r"`
	G int `json:"g" yaml:"g"`
	B int `json:"b" yaml:"b"`
}

func (wm TextWatermark) withDefaults() TextWatermark {
	if wm.FontSize <= 0 {
		wm.FontSize = 60
	}
	if wm.Opacity <= 0 || wm.Opacity > 1 {
		wm.Opacity = 0.3
	}
	if wm.Angle == 0 {
		wm.Angle = 45
	}
	if wm.Color == (RGBColor{}) {
		wm.Color = RGBColor{200, 200, 200}
	}
	return wm
}

// AddTextWatermark stamps wm over every page of doc and writes the result to
// w. It returns the number of pages written.
func AddTextWatermark(w io.Writer, doc []byte, wm TextWatermark) (int, error) {
	if wm.Text == "" {
		return 0, fmt.Errorf("pageops: watermark text is empty")
	}
	wm = wm.withDefaults()

	im := newImporter()
	defer im.cleanup()
	n, err := im.appendDocument(doc, func(_ int, pw, ph float64) {
		drawTextWatermark(im, wm, pw, ph)
	})
	if err != nil {
		return 0, fmt.Errorf("pageops: watermark: %w", err)
	}
	if err := im.output(w); err != nil {
		return 0, fmt.Errorf("pageops: watermark: %w", err)
	}
	return n, nil
}

// drawTextWatermark renders the watermark text centered on the current page.
func drawTextWatermark(im *importer, wm TextWatermark, pageW, pageH float64) {
	pdf := im.pdf
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := tr(wm.Text)

	pdf.SetFont("Helvetica", "B", wm.FontSize)
	pdf.SetTextColor(wm.Color.R, wm.Color.G, wm.Color.B)
	pdf.SetAlpha(wm.Opacity, "Normal")

	textW := pdf.GetStringWidth(text)
	cx := pageW / 2
	cy := pageH / 2

	pdf.TransformBegin()
	pdf.TransformRotate(wm.Angle, cx, cy)
	pdf.Text(cx-textW/2, cy+wm.FontSize/3, text)
	pdf.TransformEnd()

	pdf.SetAlpha(1.0, "Normal")
	pdf.SetTextColor(0, 0, 0)
}
