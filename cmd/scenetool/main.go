// scenetool parses, bakes and samples scenes from the command line.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/scenekit/internal/config"
	"github.com/Faultbox/scenekit/internal/logger"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	a := &app{cfg: cfg, log: logger.Log}
	defer a.close()

	command := args[0]
	rest := args[1:]

	switch command {
	case "info":
		err = a.cmdInfo(rest)
	case "bake":
		err = a.cmdBake(rest)
	case "camera", "cam":
		err = a.cmdCamera(rest)
	case "lights":
		err = a.cmdLights(rest)
	case "atlas":
		err = a.cmdAtlas(rest)
	case "watch":
		err = a.cmdWatch(rest)
	case "config":
		err = a.cmdConfig(rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Log.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - scene parsing and baking utility

Usage:
  scenetool [global flags] <command> [options]

Commands:
  info <scene>                           Print the parsed scene
  bake <scene>                           Bake geometry and report totals
  camera [-from t] [-to t] [-step s] <scene>
                                         Sample the camera path
  lights [-t time] <scene>               Print light positions at a time
  atlas [-out dir] <scene>               Bake and write texture atlas layers
  watch <scene>                          Re-bake whenever the scene or a mesh changes
  config [-save path] [-user]            Print or save the effective config

Global flags:
  -config path      Config file (default ./scenekit.yaml or user config dir)
  -debug            Enable debug logging
  -log-file path    Also write logs to a rotated file
  -atlas-size n     Atlas layer size in pixels
  -asset-dir dirs   Extra asset directories, comma separated

Examples:
  scenetool info scenes/cornell.txt
  scenetool -debug bake scenes/cornell.txt
  scenetool camera -step 0.25 scenes/flythrough.txt
  scenetool -atlas-size 2048 atlas -out build/atlas scenes/cornell.txt
  scenetool -debug -asset-dir textures config -save scenekit.yaml`)
}
