// Command occlusion-view opens a window showing a culler's active occluder
// set from an orbiting observer camera. Occludee boxes are drawn red when
// culled.
//
// Controls: A/D and arrows orbit, W/S pitch, Q/E zoom, Space switches the
// culling camera between the observer and a fly-through path, a left click
// logs the culler's verdicts for the occludee under the cursor, Esc quits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	stdmath "math"
	"os"
	"runtime"

	"github.com/tanema/gween/ease"

	"occlusion-engine/core"
	"occlusion-engine/internal/demo"
	"occlusion-engine/internal/opengl"
	"occlusion-engine/internal/window"
	"occlusion-engine/math"
	"occlusion-engine/occlusion"
	"occlusion-engine/scene"
)

func init() {
	// GLFW and OpenGL calls must stay on the main thread.
	runtime.LockOSThread()
}

var (
	skyColor    = core.Color{R: 0.08, G: 0.08, B: 0.1, A: 1}
	visibleTint = core.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}
	culledTint  = core.Color{R: 1, G: 0.2, B: 0.2, A: 1}
	cullCamTint = core.ColorYellow
)

const cullCamBoxHalf = 0.4

// controller turns key state into observer camera motion and the
// fly-through toggle.
type controller struct {
	orbitSpeed   float32
	zoomSpeed    float32
	flying       bool
	spaceWasDown bool
	clickWasDown bool
	clicked      bool
}

func (cc *controller) update(win *window.Window, cam *scene.OrbitCamera, dt float32) {
	var yaw, pitch, zoom float32
	if win.IsKeyPressed(window.KeyA) || win.IsKeyPressed(window.KeyLeft) {
		yaw -= cc.orbitSpeed * dt
	}
	if win.IsKeyPressed(window.KeyD) || win.IsKeyPressed(window.KeyRight) {
		yaw += cc.orbitSpeed * dt
	}
	if win.IsKeyPressed(window.KeyW) || win.IsKeyPressed(window.KeyUp) {
		pitch += cc.orbitSpeed * dt
	}
	if win.IsKeyPressed(window.KeyS) || win.IsKeyPressed(window.KeyDown) {
		pitch -= cc.orbitSpeed * dt
	}
	if win.IsKeyPressed(window.KeyQ) {
		zoom -= cc.zoomSpeed * dt
	}
	if win.IsKeyPressed(window.KeyE) {
		zoom += cc.zoomSpeed * dt
	}
	if yaw != 0 || pitch != 0 {
		cam.Orbit(yaw, pitch)
	}
	if zoom != 0 {
		cam.Zoom(zoom)
	}

	// debounced so one press toggles once
	spaceDown := win.IsKeyPressed(window.KeySpace)
	if spaceDown && !cc.spaceWasDown {
		cc.flying = !cc.flying
	}
	cc.spaceWasDown = spaceDown

	clickDown := win.IsMouseButtonPressed(window.MouseButtonLeft)
	cc.clicked = clickDown && !cc.clickWasDown
	cc.clickWasDown = clickDown
}

// pick returns the index of the nearest occludee under the cursor, or -1.
func pick(win *window.Window, cam *scene.Camera, boxes []math.AABB) int {
	x, y := win.GetCursorPos()
	w, h := win.GetSize()
	ray := cam.ScreenRay(float32(x), float32(y), float32(max(w, 1)), float32(max(h, 1)))

	best, bestT := -1, float32(stdmath.MaxFloat32)
	for i, b := range boxes {
		if t, ok := ray.IntersectAABB(b); ok && t < bestT {
			best, bestT = i, t
		}
	}
	return best
}

func main() {
	var (
		files      demo.Files
		configPath string
		blocks     int
		seed       int64
		grid       int
		verbose    bool
	)
	flag.StringVar(&files.Set, "set", "", "JSON occluder set to load")
	flag.StringVar(&files.OBJ, "obj", "", "OBJ file whose faces become polygon occluders")
	flag.StringVar(&files.GLTF, "gltf", "", "glTF/GLB file whose triangles become polygon occluders")
	flag.StringVar(&configPath, "config", "", "culler config file, re-read when it changes")
	flag.IntVar(&blocks, "blocks", 6, "city size when no file is given")
	flag.Int64Var(&seed, "seed", 1, "city seed")
	flag.IntVar(&grid, "grid", 16, "occludee lattice size for loaded files")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	occlusion.SetLogger(logger)

	var (
		s   *demo.Scene
		err error
	)
	if files == (demo.Files{}) {
		s = demo.NewCity(blocks, seed)
	} else if s, err = demo.Load(files, grid); err != nil {
		logger.Error("load scene", "err", err)
		os.Exit(1)
	}

	cfg := occlusion.DefaultConfig()
	if configPath != "" {
		if cfg, err = occlusion.LoadConfig(configPath); err != nil {
			logger.Error("load config", "err", err)
			os.Exit(1)
		}
	}
	if err := run(s, cfg, configPath, logger); err != nil {
		logger.Error("occlusion-view failed", "err", err)
		os.Exit(1)
	}
}

func run(s *demo.Scene, cfg occlusion.Config, configPath string, logger *slog.Logger) error {
	win, err := window.New(window.DefaultConfig())
	if err != nil {
		return err
	}
	defer win.Destroy()

	r, err := opengl.NewRenderer()
	if err != nil {
		return err
	}
	defer r.Destroy()
	logger.Info("renderer ready", "gl", r.Version(), "scene", s.String())

	culler, err := occlusion.New(cfg)
	if err != nil {
		return err
	}
	var watcher *occlusion.ConfigWatcher
	if configPath != "" {
		watcher = occlusion.NewConfigWatcher(configPath, 60, culler)
	}

	center := s.Bounds.Center()
	extent := s.Bounds.Size().Length()
	fbW, fbH := win.GetFramebufferSize()
	observer := scene.NewOrbitCamera(center, extent, stdmath.Pi/3, float32(fbW)/float32(max(fbH, 1)))
	observer.FarPlane = max(observer.FarPlane, extent*4)

	cullCam := scene.NewCamera(stdmath.Pi/3, observer.AspectRatio, 0.1, observer.FarPlane)
	lookAt := center
	lookAt.Y = s.Path[0].Y
	path := scene.NewCameraPath(s.Path, 2, ease.InOutSine)
	path.Loop = true

	gridMesh := scene.CreateGrid(max(s.Bounds.Size().X, s.Bounds.Size().Z)*1.5, 24)
	boxMesh := scene.CreateUnitBoxWireframe()
	var debugMesh *scene.Mesh

	cc := &controller{orbitSpeed: 1.5, zoomSpeed: extent / 2}
	diag := &occlusion.Diagnostics{}
	lastTime := win.Time()
	titleTime := lastTime
	frames := 0

	for !win.ShouldClose() {
		now := win.Time()
		dt := float32(now - lastTime)
		lastTime = now

		win.PollEvents()
		if win.IsKeyPressed(window.KeyEscape) {
			break
		}
		cc.update(win, observer, dt)

		if w, h := win.GetFramebufferSize(); w != fbW || h != fbH {
			fbW, fbH = w, h
			r.SetViewport(w, h)
			observer.UpdateAspectRatio(float32(w), float32(h))
			cullCam.UpdateAspectRatio(float32(w), float32(h))
		}

		if watcher != nil {
			_, _ = watcher.Tick()
		}

		var view occlusion.View
		if cc.flying {
			pos, _ := path.Update(dt)
			cullCam.SetPosition(pos)
			cullCam.LookAt(lookAt, math.Vec3Up)
			view = occlusion.ViewFromCamera(cullCam)
		} else {
			view = occlusion.ViewFromCamera(&observer.Camera)
		}
		culler.Prepare(s.Pool, s.IDs, view, diag)

		vp := observer.GetViewProjectionMatrix()
		r.BeginFrame(skyColor)
		r.DrawMesh(gridMesh, vp, core.ColorWhite)

		if m := culler.DebugMesh(); m != debugMesh {
			if debugMesh != nil {
				r.ReleaseMesh(debugMesh)
			}
			debugMesh = m
		}
		r.DrawMesh(debugMesh, vp, core.ColorWhite)

		for _, box := range s.Occludees {
			tint := visibleTint
			if culler.CullAABB(box) {
				tint = culledTint
			}
			r.DrawMesh(boxMesh, scene.AABBModelMatrix(box).Mul(vp), tint)
		}
		if cc.flying {
			half := math.Vec3{X: cullCamBoxHalf, Y: cullCamBoxHalf, Z: cullCamBoxHalf}
			marker := math.AABB{Min: cullCam.Position.Sub(half), Max: cullCam.Position.Add(half)}
			r.DrawMesh(boxMesh, scene.AABBModelMatrix(marker).Mul(vp), cullCamTint)
		}

		if cc.clicked {
			if i := pick(win, &observer.Camera, s.Occludees); i >= 0 {
				box := s.Occludees[i]
				logger.Info("occludee",
					"index", i,
					"center", box.Center(),
					"culled", culler.CullAABB(box),
					"culled_by_polys", culler.CullAABBToPolys(box),
					"checksum", fmt.Sprintf("%016x", culler.Checksum()))
			}
		}

		win.SwapBuffers()
		frames++

		if now-titleTime >= 1 {
			n := max(frames, 1)
			st := diag.Stats
			win.SetTitle(fmt.Sprintf("Occlusion Viewer | %d fps | spheres %d polys %d (whittled %d) | culled %d/%d",
				frames, st.SpheresSelected/n, st.PolysSelected/n, st.PolysWhittled/n,
				(st.CulledBySphere+st.CulledByPoly)/n, len(s.Occludees)))
			diag.Reset()
			frames = 0
			titleTime = now
		}
	}
	return nil
}
