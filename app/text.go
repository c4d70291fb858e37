package app

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type OverlayVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

type OverlayItem struct {
	Text     string
	Position [2]float32 // pixels from the top-left corner
	Scale    float32
	Color    [4]float32
}

type glyphInfo struct {
	uvMin [2]float32
	uvMax [2]float32
	size  [2]float32
	off   [2]float32
	adv   float32
}

// OverlayText rasterizes the debug overlay (frame stats, pass timings) into
// a CPU-side glyph atlas once, then emits screen-space quads per frame.
type OverlayText struct {
	Atlas  *image.Alpha
	glyphs map[rune]glyphInfo
	face   font.Face
}

// NewOverlayText bakes an ASCII atlas from the font at fontPath, or from the
// bundled Go Regular face when fontPath is empty.
func NewOverlayText(fontPath string, fontSize float64) (*OverlayText, error) {
	fontBytes := goregular.TTF
	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		fontBytes = b
	}

	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}

	const atlasSize = 512
	atlas := image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize))
	glyphs := make(map[rune]glyphInfo)

	x, y := 2, 2
	rowHeight := 0

	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}

		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()

		if x+w >= atlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= atlasSize {
			break
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		glyphs[r] = glyphInfo{
			uvMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			uvMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			size:  [2]float32{float32(w), float32(h)},
			off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			adv:   float32(adv) / 64.0,
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &OverlayText{Atlas: atlas, glyphs: glyphs, face: face}, nil
}

// BuildVertices converts overlay items into clip-space triangles.
func (ot *OverlayText) BuildVertices(items []OverlayItem, screenW, screenH int) []OverlayVertex {
	vertices := make([]OverlayVertex, 0, len(items)*6)

	sw := float32(screenW)
	sh := float32(screenH)
	metrics := ot.face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	for _, item := range items {
		startX := item.Position[0]
		posX := startX
		posY := item.Position[1] + ascent*item.Scale

		for _, r := range item.Text {
			if r == '\n' {
				posX = startX
				posY += lineHeight * item.Scale
				continue
			}

			g, ok := ot.glyphs[r]
			if !ok {
				continue
			}

			x0 := (posX+g.off[0]*item.Scale)/sw*2.0 - 1.0
			y0 := 1.0 - (posY+g.off[1]*item.Scale)/sh*2.0
			x1 := (posX+(g.off[0]+g.size[0])*item.Scale)/sw*2.0 - 1.0
			y1 := 1.0 - (posY+(g.off[1]+g.size[1])*item.Scale)/sh*2.0

			vertices = append(vertices,
				OverlayVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.uvMin[0], g.uvMin[1]}, Color: item.Color},
				OverlayVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: item.Color},
				OverlayVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: item.Color},
				OverlayVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: item.Color},
				OverlayVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.uvMax[0], g.uvMax[1]}, Color: item.Color},
				OverlayVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: item.Color},
			)

			posX += g.adv * item.Scale
		}
	}

	return vertices
}

func (ot *OverlayText) LineHeight(scale float32) float32 {
	if ot == nil {
		return 0
	}
	return float32(ot.face.Metrics().Height.Ceil()) * scale
}
