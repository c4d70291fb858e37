package main

import (
	"flag"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/sschneiders/magiclight2d/app"
	"github.com/sschneiders/magiclight2d/core"
)

func init() {
	runtime.LockOSThread()
}

type demoScene struct {
	torch     core.LightId
	sway      *gween.Tween
	swayRight bool
	occluders []core.Occluder
}

func buildScene(scene *core.Scene) *demoScene {
	d := &demoScene{}

	d.occluders = []core.Occluder{
		{Center: mgl32.Vec2{-220, 0}, HalfExtent: mgl32.Vec2{20, 160}},
		{Center: mgl32.Vec2{220, 0}, HalfExtent: mgl32.Vec2{20, 160}},
		{Center: mgl32.Vec2{0, 180}, HalfExtent: mgl32.Vec2{240, 20}},
		{Center: mgl32.Vec2{0, -180}, HalfExtent: mgl32.Vec2{100, 20}},
		{Center: mgl32.Vec2{60, 40}, HalfExtent: mgl32.Vec2{30, 30}, Rotation: 0.6},
	}
	for _, o := range d.occluders {
		scene.AddOccluder(o)
	}

	d.torch = scene.AddLight(core.OmniLight{
		Position:          mgl32.Vec2{-120, -60},
		Color:             [3]float32{1.0, 0.6, 0.25},
		Intensity:         6,
		FalloffRadius:     260,
		JitterIntensity:   0.8,
		JitterTranslation: 2,
	})
	scene.AddLight(core.OmniLight{
		Position:      mgl32.Vec2{140, 100},
		Color:         [3]float32{0.3, 0.5, 1.0},
		Intensity:     4,
		FalloffRadius: 320,
	})

	scene.Skylight = core.Skylight{Color: [3]float32{0.4, 0.5, 0.7}, Intensity: 0.35}
	// The walled room blocks the sky.
	scene.AddSkylightMask(core.SkylightMask{
		Center:     mgl32.Vec2{0, 0},
		HalfExtent: mgl32.Vec2{240, 200},
	})

	// Sway the torch left and right forever.
	d.sway = gween.New(-120, 60, 4, ease.InOutQuad)
	d.swayRight = true

	return d
}

func (d *demoScene) update(scene *core.Scene, dt float32) {
	x, done := d.sway.Update(dt)
	if done {
		if d.swayRight {
			d.sway = gween.New(60, -120, 4, ease.InOutQuad)
		} else {
			d.sway = gween.New(-120, 60, 4, ease.InOutQuad)
		}
		d.swayRight = !d.swayRight
	}
	if l := scene.Light(d.torch); l != nil {
		l.Position[0] = x
	}
}

// uploadLayers paints the compositing inputs procedurally: a checkered
// floor, the occluder footprints as walls, and a couple of bright props.
func uploadLayers(a *app.App, d *demoScene) {
	floor := &a.Targets.Floor
	if floor.Tex == nil {
		return
	}
	w, h := int(floor.W), int(floor.H)
	origin, texel := a.Scene.Camera.WorldViewport(w, h)

	floorPix := make([]byte, w*h*4)
	wallPix := make([]byte, w*h*4)
	objPix := make([]byte, w*h*4)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			p := mgl32.Vec2{
				origin.X() + (float32(x)+0.5)*texel,
				origin.Y() + (float32(y)+0.5)*texel,
			}

			shade := byte(92)
			if (int(p.X()/40)+int(p.Y()/40))%2 == 0 {
				shade = 110
			}
			floorPix[i], floorPix[i+1], floorPix[i+2], floorPix[i+3] = shade, shade, shade, 255

			for _, o := range d.occluders {
				if o.Distance(p) <= 0 {
					wallPix[i], wallPix[i+1], wallPix[i+2], wallPix[i+3] = 70, 64, 58, 255
					break
				}
			}

			for _, c := range [][3]float32{{-120, -60, 6}, {140, 100, 6}} {
				dx, dy := p.X()-c[0], p.Y()-c[1]
				if dx*dx+dy*dy < c[2]*c[2] {
					objPix[i], objPix[i+1], objPix[i+2], objPix[i+3] = 255, 240, 200, 255
				}
			}
		}
	}

	if err := a.WriteLayer(app.LayerFloor, floorPix); err != nil {
		a.Log.Errorf("floor layer upload failed: %v", err)
	}
	if err := a.WriteLayer(app.LayerWalls, wallPix); err != nil {
		a.Log.Errorf("walls layer upload failed: %v", err)
	}
	if err := a.WriteLayer(app.LayerObjects, objPix); err != nil {
		a.Log.Errorf("objects layer upload failed: %v", err)
	}
}

func main() {
	debug := flag.Bool("debug", false, "Enable the stats overlay and debug logging")
	flag.Parse()

	logger := core.NewDefaultLogger("magiclight", *debug)

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(1280, 720, "Magic Light 2D", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application := app.NewApp(window, core.DefaultSettings(), logger)
	application.DebugMode = *debug
	if err := application.Init(); err != nil {
		panic(err)
	}

	demo := buildScene(application.Scene)
	uploadLayers(application, demo)

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
		uploadLayers(application, demo)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
		if key == glfw.KeyF3 && action == glfw.Press {
			application.DebugMode = !application.DebugMode
			logger.SetDebug(application.DebugMode)
		}
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		cam := application.Scene.Camera
		cam.Zoom *= 1 + float32(yoff)*0.1
		if cam.Zoom < 0.1 {
			cam.Zoom = 0.1
		}
		if cam.Zoom > 10 {
			cam.Zoom = 10
		}
	})

	lastTime := glfw.GetTime()
	for !window.ShouldClose() {
		glfw.PollEvents()

		now := glfw.GetTime()
		dt := float32(now - lastTime)
		lastTime = now

		cam := application.Scene.Camera
		pan := 300 * dt / cam.Zoom
		if window.GetKey(glfw.KeyA) == glfw.Press {
			cam.Position[0] -= pan
		}
		if window.GetKey(glfw.KeyD) == glfw.Press {
			cam.Position[0] += pan
		}
		if window.GetKey(glfw.KeyS) == glfw.Press {
			cam.Position[1] -= pan
		}
		if window.GetKey(glfw.KeyW) == glfw.Press {
			cam.Position[1] += pan
		}

		demo.update(application.Scene, dt)

		application.ClearText()
		application.Update()
		application.Render()
	}
}
