package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/scenekit/internal/assets"
	"github.com/Faultbox/scenekit/internal/config"
	"github.com/Faultbox/scenekit/internal/engine/camera"
	"github.com/Faultbox/scenekit/internal/engine/geometry"
	"github.com/Faultbox/scenekit/internal/engine/lighting"
	"github.com/Faultbox/scenekit/internal/engine/model"
	"github.com/Faultbox/scenekit/internal/engine/texture"
	"github.com/Faultbox/scenekit/pkg/formats"
	"github.com/Faultbox/scenekit/pkg/math"
)

var errNoScene = errors.New("no scene given and scene.path is not configured")

type app struct {
	cfg    *config.Config
	log    *zap.Logger
	assets *assets.Manager
}

// bakeResult is everything produced by one parse and bake pass.
type bakeResult struct {
	scene  *formats.Scene
	baked  *geometry.Baked
	packer *texture.Packer
}

func (a *app) scenePath(fs *flag.FlagSet) (string, error) {
	if fs.NArg() > 0 {
		return fs.Arg(0), nil
	}
	if a.cfg.Scene.Path != "" {
		return a.cfg.Scene.Path, nil
	}
	return "", errNoScene
}

func (a *app) parse(fs *flag.FlagSet) (*formats.Scene, error) {
	path, err := a.scenePath(fs)
	if err != nil {
		return nil, err
	}
	return formats.ParseSceneFile(path)
}

// assetManager returns the shared asset manager, creating it on first use.
func (a *app) assetManager() (*assets.Manager, error) {
	if a.assets != nil {
		return a.assets, nil
	}
	m := assets.NewManager()
	for _, dir := range a.cfg.Assets.Dirs {
		if err := m.AddRoot(dir); err != nil {
			m.Close()
			return nil, err
		}
	}
	a.log.Debug("asset manager ready", zap.Strings("roots", m.Roots()))
	a.assets = m
	return m, nil
}

func (a *app) close() {
	if a.assets != nil {
		a.assets.Close()
	}
}

func (a *app) bake(path string) (*bakeResult, error) {
	scene, err := formats.ParseSceneFile(path)
	if err != nil {
		return nil, err
	}

	m, err := a.assetManager()
	if err != nil {
		return nil, err
	}

	importer := model.NewImporter(m, model.WithLogger(a.log.Named("import")))
	packer := texture.NewPacker(m,
		texture.WithLayerSize(a.cfg.Bake.AtlasSize),
		texture.WithLogger(a.log.Named("atlas")))

	baked, err := geometry.Bake(scene, importer, packer, geometry.WithLogger(a.log.Named("bake")))
	if err != nil {
		return nil, err
	}
	hits, misses, cached := m.Stats()
	a.log.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses), zap.Int("files", cached))
	return &bakeResult{scene: scene, baked: baked, packer: packer}, nil
}

func (a *app) cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)

	scene, err := a.parse(fs)
	if err != nil {
		return err
	}
	return scene.Describe(os.Stdout)
}

func (a *app) cmdBake(args []string) error {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	fs.Parse(args)

	path, err := a.scenePath(fs)
	if err != nil {
		return err
	}
	res, err := a.bake(path)
	if err != nil {
		return err
	}
	printBaked(res)
	return nil
}

func printBaked(res *bakeResult) {
	b := res.baked
	fmt.Printf("Meshes:    %d\n", len(b.Meshes))
	fmt.Printf("Triangles: %d\n", b.TriangleCount)
	fmt.Printf("Vertices:  %d\n", b.VertexCount)
	fmt.Printf("Textures:  %d (%d layers)\n", b.TextureCount, res.packer.LayerCount())
	fmt.Printf("Bounds:    %s - %s\n", vec(b.Bounds.Min), vec(b.Bounds.Max))
	fmt.Printf("Animated:  %v\n", res.scene.Animated)
}

func (a *app) cmdCamera(args []string) error {
	fs := flag.NewFlagSet("camera", flag.ExitOnError)
	from := fs.Float64("from", float64(a.cfg.Playback.From), "First sample time")
	to := fs.Float64("to", float64(a.cfg.Playback.To), "Last sample time (0 = end of path)")
	step := fs.Float64("step", float64(a.cfg.Playback.Step), "Seconds between samples")
	fs.Parse(args)

	if *step <= 0 {
		return fmt.Errorf("step must be positive, got %v", *step)
	}

	scene, err := a.parse(fs)
	if err != nil {
		return err
	}
	path := camera.NewPath(scene.Cameras)
	if path.Empty() {
		fmt.Println("No camera keyframes")
		return nil
	}
	a.log.Debug("camera path", zap.Int("keyframes", path.Len()), zap.Float32("period", path.Period()))

	end := float32(*to)
	if end == 0 {
		end = scene.Cameras[0].Time + path.Period()
	}
	for i := 0; ; i++ {
		t := float32(*from) + float32(i)*float32(*step)
		if t > end {
			break
		}
		pose := path.State(t)
		fmt.Printf("t=%-8.3f eye=%s lookat=%s up=%s\n", t, vec(pose.Eye), vec(pose.LookAt), vec(pose.Up))
	}
	return nil
}

func (a *app) cmdLights(args []string) error {
	fs := flag.NewFlagSet("lights", flag.ExitOnError)
	at := fs.Float64("t", 0, "Playback time in seconds")
	fs.Parse(args)

	scene, err := a.parse(fs)
	if err != nil {
		return err
	}

	lights := lighting.ResolveLights(scene.Lights, float32(*at))
	if len(lights) < len(scene.Lights) {
		a.log.Warn("lights dropped", zap.Int("total", len(scene.Lights)), zap.Int("max", lighting.MaxPointLights))
	}
	for i, l := range lights {
		fmt.Printf("%2d position=%s emission=%s radius=%g\n", i, vec(l.Position), vec(l.Emission), l.Radius)
	}
	return nil
}

func (a *app) cmdAtlas(args []string) error {
	fs := flag.NewFlagSet("atlas", flag.ExitOnError)
	out := fs.String("out", a.cfg.Bake.AtlasDir, "Output directory")
	fs.Parse(args)

	path, err := a.scenePath(fs)
	if err != nil {
		return err
	}
	res, err := a.bake(path)
	if err != nil {
		return err
	}

	files, err := res.packer.CreateArray().Save(*out)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	a.log.Info("atlas written", zap.String("dir", *out), zap.Int("layers", len(files)))
	return nil
}

func (a *app) cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	fs.Parse(args)

	path, err := a.scenePath(fs)
	if err != nil {
		return err
	}
	path = filepath.Clean(path)

	m, err := a.assetManager()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	meshes := a.rebake(path)
	a.watchMeshDirs(watcher, meshes)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name := filepath.Clean(ev.Name)
			// Cached files are dropped even when no mesh references them anymore.
			cached := m.Invalidate(name)
			if name != path && !cached && !meshes[name] {
				continue
			}
			a.log.Debug("input changed", zap.String("path", name), zap.Stringer("op", ev.Op), zap.Bool("cached", cached))
			if next := a.rebake(path); next != nil {
				meshes = next
				a.watchMeshDirs(watcher, meshes)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watcher error", zap.Error(err))
		case <-interrupt:
			return nil
		}
	}
}

// rebake bakes once and logs failures without stopping the watch loop. It
// returns the mesh files the scene references, or nil when the scene could
// not be parsed.
func (a *app) rebake(path string) map[string]bool {
	res, err := a.bake(path)
	if err != nil {
		var perr *formats.ParseError
		if errors.As(err, &perr) {
			a.log.Error("scene parse failed", zap.String("path", path), zap.Int("line", perr.Line), zap.Error(perr.Err))
			return nil
		}
		a.log.Error("bake failed", zap.String("path", path), zap.Error(err))
		if scene, err := formats.ParseSceneFile(path); err == nil {
			return meshFiles(scene)
		}
		return nil
	}
	printBaked(res)
	return meshFiles(res.scene)
}

func meshFiles(scene *formats.Scene) map[string]bool {
	files := make(map[string]bool, len(scene.Meshes))
	for _, m := range scene.Meshes {
		files[filepath.Clean(filepath.Join(scene.Folder, m.File))] = true
	}
	return files
}

// watchMeshDirs adds the directories holding mesh files. Adding a directory
// twice is a no-op.
func (a *app) watchMeshDirs(watcher *fsnotify.Watcher, meshes map[string]bool) {
	for file := range meshes {
		dir := filepath.Dir(file)
		if err := watcher.Add(dir); err != nil {
			a.log.Warn("cannot watch mesh directory", zap.String("dir", dir), zap.Error(err))
		}
	}
}

func (a *app) cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.String("save", "", "Write the effective config to this path")
	user := fs.Bool("user", false, "Write the effective config to the user config directory")
	fs.Parse(args)

	switch {
	case *save != "":
		if err := a.cfg.SaveTo(*save); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		a.log.Info("config saved", zap.String("path", *save))
	case *user:
		if err := a.cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		a.log.Info("config saved", zap.String("path", config.UserPath()))
	default:
		data, err := a.cfg.Marshal()
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
	}
	return nil
}

func vec(v math.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
