package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gekko3d/svoray"
	"github.com/gekko3d/svoray/voxelrt/rt/app"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred releases happen before exit.
func run(args []string) int {
	flags := flag.NewFlagSet("svoray", flag.ContinueOnError)
	configPath := flags.String("config", "", "world config (.yaml or .jsonc); defaults are used when empty")
	regionDir := flags.String("regions", "", "override the region directory")
	out := flags.String("out", "out", "directory for the serialized chunk and palette buffers")
	useGPU := flags.Bool("gpu", false, "upload the buffers to a headless WebGPU device")
	debug := flags.Bool("debug", false, "log every chunk and unmapped block")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg := svoray.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = svoray.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if *regionDir != "" {
		cfg.RegionDir = *regionDir
	}
	if *debug {
		cfg.Debug = true
	}

	logger := svoray.NewDefaultLogger(cfg.LogPrefix, cfg.Debug)
	application := app.NewApp(cfg, logger)
	defer application.Release()

	if err := application.Load(); err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	if err := application.Export(*out); err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	if *useGPU {
		if err := application.InitGPU(); err != nil {
			logger.Errorf("gpu: %v", err)
			return 1
		}
		if err := application.Upload(); err != nil {
			logger.Errorf("%v", err)
			return 1
		}
	}
	logger.Infof("\n%s", application.Profiler)
	return 0
}
