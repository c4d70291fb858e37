package lightmap

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/sschneiders/magiclight2d/core"
)

// Viewport maps a texel grid onto a world-space rectangle. Origin is the
// world position of the lower-left texel corner.
type Viewport struct {
	Origin    mgl32.Vec2
	TexelSize float32
	W, H      int
}

// WorldAt returns the world position of the texel center (x, y).
func (v Viewport) WorldAt(x, y int) mgl32.Vec2 {
	return mgl32.Vec2{
		v.Origin.X() + (float32(x)+0.5)*v.TexelSize,
		v.Origin.Y() + (float32(y)+0.5)*v.TexelSize,
	}
}

// TexelAt maps a world position to fractional texel-center coordinates.
func (v Viewport) TexelAt(p mgl32.Vec2) (float32, float32) {
	return (p.X()-v.Origin.X())/v.TexelSize - 0.5,
		(p.Y()-v.Origin.Y())/v.TexelSize - 0.5
}

// Field is a signed distance field over a viewport: negative inside
// occluders, positive outside, clamped at Saturation.
type Field struct {
	View       Viewport
	D          []float32
	Saturation float32
}

func newField(view Viewport, saturation float32) *Field {
	return &Field{
		View:       view,
		D:          make([]float32, view.W*view.H),
		Saturation: saturation,
	}
}

func (f *Field) at(x, y int) float32 {
	x = clampi(x, 0, f.View.W-1)
	y = clampi(y, 0, f.View.H-1)
	return f.D[y*f.View.W+x]
}

// Eval bilinearly samples the field at a world position.
func (f *Field) Eval(p mgl32.Vec2) float32 {
	fx, fy := f.View.TexelAt(p)
	x0 := int(floor32(fx))
	y0 := int(floor32(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	top := f.at(x0, y0)*(1-tx) + f.at(x0+1, y0)*tx
	bot := f.at(x0, y0+1)*(1-tx) + f.at(x0+1, y0+1)*tx
	return top*(1-ty) + bot*ty
}

// Visibility sphere-traces from one world point toward another through the
// field, using the local distance as a safe step size. Returns 1 when the
// segment is unobstructed, 0 when an occluder blocks it.
func (f *Field) Visibility(from, to mgl32.Vec2) float32 {
	delta := to.Sub(from)
	dist := delta.Len()
	if dist <= f.View.TexelSize {
		return 1
	}
	dir := delta.Mul(1 / dist)

	surface := f.View.TexelSize * 0.5
	minStep := f.View.TexelSize * 0.5

	const maxSteps = 64
	t := f.View.TexelSize
	for i := 0; i < maxSteps && t < dist; i++ {
		d := f.Eval(from.Add(dir.Mul(t)))
		if d < surface {
			// Hits at the destination itself do not count as occlusion.
			if dist-t > f.View.TexelSize*2 {
				return 0
			}
			return 1
		}
		if d < minStep {
			d = minStep
		}
		t += d
	}
	return 1
}

// SDFBuilder rasterizes occluders into a Field, reusing the previous field
// when neither the geometry revision nor the viewport changed.
type SDFBuilder struct {
	Saturation float32

	field    *Field
	lastRev  uint64
	lastView Viewport
	built    bool
}

// Build returns the field for the given viewport and occluder set. The
// second return value reports whether a rebuild actually happened.
func (b *SDFBuilder) Build(view Viewport, occluders []core.Occluder, rev uint64) (*Field, bool) {
	if b.built && rev == b.lastRev && view == b.lastView {
		return b.field, false
	}

	f := b.field
	if f == nil || f.View != view {
		f = newField(view, b.Saturation)
	}
	f.Saturation = b.Saturation

	for y := 0; y < view.H; y++ {
		for x := 0; x < view.W; x++ {
			p := view.WorldAt(x, y)
			d := b.Saturation
			for _, occ := range occluders {
				od := occ.Distance(p)
				if od < d {
					d = od
				}
			}
			// Degenerate shapes must not poison the field: a non-finite
			// distance reads as no obstruction at this texel.
			if math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) {
				d = b.Saturation
			}
			if d > b.Saturation {
				d = b.Saturation
			}
			if d < -b.Saturation {
				d = -b.Saturation
			}
			f.D[y*view.W+x] = d
		}
	}

	b.field = f
	b.lastRev = rev
	b.lastView = view
	b.built = true
	return f, true
}

func floor32(v float32) float32 {
	return float32(math.Floor(float64(v)))
}
