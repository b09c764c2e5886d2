// Command occlusion-bench flies a camera through an occluder scene without a
// window, running Prepare and a set of occludee queries every frame, and
// prints what the culler selected and how much it culled.
//
// With no input files it generates a city:
//
//	occlusion-bench -blocks 8 -frames 600 -png last.png
//	occlusion-bench -set level.json -config culler.json -v
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	stdmath "math"
	"os"
	"time"

	"github.com/tanema/gween/ease"

	"occlusion-engine/internal/demo"
	"occlusion-engine/internal/snapshot"
	"occlusion-engine/math"
	"occlusion-engine/occluder"
	"occlusion-engine/occlusion"
	"occlusion-engine/scene"
)

type options struct {
	files       demo.Files
	configPath  string
	savePath    string
	pngPath     string
	blocks      int
	seed        int64
	grid        int
	frames      int
	fps         float64
	boxPolys    bool
	skipWhittle bool
	verbose     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.files.Set, "set", "", "JSON occluder set to load")
	flag.StringVar(&opts.files.OBJ, "obj", "", "OBJ file whose faces become polygon occluders")
	flag.StringVar(&opts.files.GLTF, "gltf", "", "glTF/GLB file whose triangles become polygon occluders")
	flag.StringVar(&opts.configPath, "config", "", "culler config file, re-read when it changes")
	flag.StringVar(&opts.savePath, "save", "", "write the scene's occluders as a JSON set and exit")
	flag.StringVar(&opts.pngPath, "png", "", "write a snapshot of the last frame")
	flag.IntVar(&opts.blocks, "blocks", 6, "city size when no file is given")
	flag.Int64Var(&opts.seed, "seed", 1, "city seed")
	flag.IntVar(&opts.grid, "grid", 16, "occludee lattice size for loaded files")
	flag.IntVar(&opts.frames, "frames", 300, "frames to simulate")
	flag.Float64Var(&opts.fps, "fps", 60, "simulated frame rate")
	flag.BoolVar(&opts.boxPolys, "boxpolys", false, "also run the box-to-polygon query")
	flag.BoolVar(&opts.skipWhittle, "nowhittle", false, "keep every selected polygon")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	occlusion.SetLogger(logger)

	if err := run(opts, logger); err != nil {
		logger.Error("occlusion-bench failed", "err", err)
		os.Exit(1)
	}
}

func loadScene(opts options) (*demo.Scene, error) {
	if opts.files == (demo.Files{}) {
		return demo.NewCity(opts.blocks, opts.seed), nil
	}
	return demo.Load(opts.files, opts.grid)
}

func run(opts options, logger *slog.Logger) error {
	s, err := loadScene(opts)
	if err != nil {
		return err
	}
	logger.Info("scene ready", "scene", s.String())

	if opts.savePath != "" {
		if err := occluder.SaveSet(s.Pool, opts.savePath); err != nil {
			return err
		}
		logger.Info("occluder set written", "path", opts.savePath)
		return nil
	}

	cfg := occlusion.DefaultConfig()
	if opts.configPath != "" {
		if cfg, err = occlusion.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	culler, err := occlusion.New(cfg)
	if err != nil {
		return err
	}
	var watcher *occlusion.ConfigWatcher
	if opts.configPath != "" {
		watcher = occlusion.NewConfigWatcher(opts.configPath, 30, culler)
	}

	cam := scene.NewCamera(stdmath.Pi/3, 16.0/9.0, 0.1, 1000)
	target := s.Bounds.Center()
	target.Y = s.Path[0].Y
	path := scene.NewCameraPath(s.Path, 2, ease.InOutQuad)
	path.Loop = true

	dt := float32(1 / max(opts.fps, 1))
	diag := &occlusion.Diagnostics{SkipWhittle: opts.skipWhittle}
	var (
		prepareTime, queryTime time.Duration
		culled, boxCulled      int
		markers                []snapshot.Marker
	)

	for frame := 0; frame < opts.frames; frame++ {
		if watcher != nil {
			// a broken edit keeps the previous config; Tick has logged it
			_, _ = watcher.Tick()
		}

		pos, _ := path.Update(dt)
		cam.SetPosition(pos)
		cam.LookAt(target, math.Vec3Up)
		view := occlusion.ViewFromCamera(cam)

		start := time.Now()
		culler.Prepare(s.Pool, s.IDs, view, diag)
		prepareTime += time.Since(start)

		last := frame == opts.frames-1
		start = time.Now()
		for _, box := range s.Occludees {
			hidden := culler.CullAABB(box)
			if hidden {
				culled++
			}
			if opts.boxPolys && culler.CullAABBToPolys(box) {
				boxCulled++
			}
			if last && opts.pngPath != "" {
				markers = append(markers, snapshot.Marker{Center: box.Center(), Culled: hidden})
			}
		}
		queryTime += time.Since(start)

		if last && opts.pngPath != "" {
			err := snapshot.WritePNG(opts.pngPath, culler, view, markers, snapshot.Options{
				Width:  960,
				Height: 540,
				Lines: []string{
					fmt.Sprintf("frame %d", frame),
					fmt.Sprintf("spheres %d polys %d", len(culler.ActiveSpheres()), len(culler.ActivePolys())),
					fmt.Sprintf("checksum %016x", culler.Checksum()),
				},
			})
			if err != nil {
				return err
			}
			logger.Info("snapshot written", "path", opts.pngPath)
		}
	}

	printReport(os.Stdout, opts, len(s.Occludees), diag.Stats, culled, boxCulled, prepareTime, queryTime)
	return nil
}

func printReport(w io.Writer, opts options, occludees int, st occlusion.Stats, culled, boxCulled int, prepareTime, queryTime time.Duration) {
	frames := max(opts.frames, 1)
	perFrame := func(n int) float64 { return float64(n) / float64(frames) }

	fmt.Fprintf(w, "frames            %d\n", opts.frames)
	fmt.Fprintf(w, "occludees/frame   %d\n", occludees)
	fmt.Fprintf(w, "candidates/frame  %.1f\n", perFrame(st.Candidates))
	fmt.Fprintf(w, "spheres/frame     %.1f\n", perFrame(st.SpheresSelected))
	fmt.Fprintf(w, "polys/frame       %.1f (whittled %.1f, holes dropped %.1f)\n",
		perFrame(st.PolysSelected), perFrame(st.PolysWhittled), perFrame(st.HolesDropped))
	if occludees > 0 {
		fmt.Fprintf(w, "culled            %.1f%% (sphere %d, poly %d)\n",
			100*float64(culled)/float64(occludees*frames), st.CulledBySphere, st.CulledByPoly)
	}
	if opts.boxPolys {
		fmt.Fprintf(w, "box-poly culled   %.1f/frame (%d of %d queries)\n",
			perFrame(boxCulled), st.BoxCulledByPoly, st.BoxQueries)
	}
	fmt.Fprintf(w, "prepare           %v/frame\n", prepareTime/time.Duration(frames))
	fmt.Fprintf(w, "queries           %v/frame\n", queryTime/time.Duration(frames))
}
