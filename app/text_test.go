package app

import "testing"

func TestOverlayTextBundledFont(t *testing.T) {
	ot, err := NewOverlayText("", 16)
	if err != nil {
		t.Fatalf("NewOverlayText: %v", err)
	}

	if len(ot.glyphs) == 0 {
		t.Fatal("atlas baked no glyphs")
	}
	for _, r := range "AZaz09 .:%" {
		if _, ok := ot.glyphs[r]; !ok {
			t.Errorf("glyph %q missing from atlas", r)
		}
	}

	nonEmpty := false
	for _, a := range ot.Atlas.Pix {
		if a != 0 {
			nonEmpty = true
			break
		}
	}
	if !nonEmpty {
		t.Error("atlas image is entirely transparent")
	}
}

func TestOverlayTextMissingFontFile(t *testing.T) {
	if _, err := NewOverlayText("/nonexistent/font.ttf", 16); err == nil {
		t.Fatal("expected error for missing font file")
	}
}

func TestBuildVerticesQuadPerGlyph(t *testing.T) {
	ot, err := NewOverlayText("", 16)
	if err != nil {
		t.Fatalf("NewOverlayText: %v", err)
	}

	items := []OverlayItem{{
		Text:     "ab\ncd",
		Position: [2]float32{10, 10},
		Scale:    1,
		Color:    [4]float32{1, 1, 1, 1},
	}}
	verts := ot.BuildVertices(items, 640, 480)

	// Four visible glyphs, six vertices each. The newline emits nothing.
	if len(verts) != 24 {
		t.Fatalf("got %d vertices, want 24", len(verts))
	}

	for i, v := range verts {
		if v.Pos[0] < -1 || v.Pos[0] > 1 || v.Pos[1] < -1 || v.Pos[1] > 1 {
			t.Fatalf("vertex %d outside clip space: %v", i, v.Pos)
		}
		if v.UV[0] < 0 || v.UV[0] > 1 || v.UV[1] < 0 || v.UV[1] > 1 {
			t.Fatalf("vertex %d UV out of range: %v", i, v.UV)
		}
	}

	// The second line sits below the first in pixel space, so its clip-space
	// y is smaller.
	if verts[12].Pos[1] >= verts[0].Pos[1] {
		t.Error("second line not positioned below the first")
	}
}

func TestLineHeightScales(t *testing.T) {
	ot, err := NewOverlayText("", 16)
	if err != nil {
		t.Fatalf("NewOverlayText: %v", err)
	}

	base := ot.LineHeight(1)
	if base <= 0 {
		t.Fatalf("line height = %v, want > 0", base)
	}
	if got := ot.LineHeight(2); got != base*2 {
		t.Errorf("scaled line height = %v, want %v", got, base*2)
	}

	var nilOt *OverlayText
	if nilOt.LineHeight(1) != 0 {
		t.Error("nil receiver should report zero height")
	}
}
