package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Config holds the command line options
type Config struct {
	SceneType  string
	Width      int
	Samples    int
	DoF        bool
	DoFSamples int
	Focal      float64
	Aperture   float64
	Seed       uint64
	Workers    int
	MaxDepth   int
	TileSize   int
	Passes     int
	Weighted   bool
	OutputDir  string
	Raw        bool
	List       bool
	Help       bool

	// Explicit lists the sampling settings given on the command line whose
	// zero value is meaningful (-aperture 0, -seed 0, -dof=false ...)
	Explicit []scene.SamplingField
}

// explicitFlags maps flag names to the sampling settings they control
var explicitFlags = map[string]scene.SamplingField{
	"aperture":          scene.FieldApertureRadius,
	"seed":              scene.FieldSeed,
	"workers":           scene.FieldNumWorkers,
	"dof":               scene.FieldUseDepthOfField,
	"weight-dielectric": scene.FieldWeightDielectricDirectLight,
}

// newFlagSet binds every option to config
func newFlagSet(config *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)

	fs.StringVar(&config.SceneType, "scene", "showcase", "Scene ID (see -list) or path to a .ply mesh")
	fs.IntVar(&config.Width, "width", 0, "Image width in pixels (0 = scene default)")
	fs.IntVar(&config.Samples, "spp", 0, "Samples per pixel (0 = scene default)")
	fs.BoolVar(&config.DoF, "dof", false, "Enable depth of field")
	fs.IntVar(&config.DoFSamples, "dof-samples", 0, "Aperture samples per pixel when -dof is set")
	fs.Float64Var(&config.Focal, "focal", 0, "Focal length for depth of field")
	fs.Float64Var(&config.Aperture, "aperture", 0, "Aperture radius for depth of field")
	fs.Uint64Var(&config.Seed, "seed", 0, "Sampling seed (0 = scene default)")
	fs.IntVar(&config.Workers, "workers", 0, "Concurrent tiles (0 = one per CPU)")
	fs.IntVar(&config.MaxDepth, "depth", 0, "Maximum recursion depth (0 = scene default)")
	fs.IntVar(&config.TileSize, "tile", 0, "Tile size in pixels (0 = scene default)")
	fs.IntVar(&config.Passes, "passes", 1, "Progressive passes; only the last is saved")
	fs.BoolVar(&config.Weighted, "weight-dielectric", false, "Scale direct light on glass by (1-kr)")
	fs.StringVar(&config.OutputDir, "output", "output", "Output directory")
	fs.BoolVar(&config.Raw, "raw", false, "Also write the raw RGB buffer as a .ppm")
	fs.BoolVar(&config.List, "list", false, "List available scenes and exit")
	fs.BoolVar(&config.Help, "help", false, "Show help information")

	return fs
}

func parseFlags(args []string) (Config, error) {
	var config Config
	fs := newFlagSet(&config)
	if err := fs.Parse(args); err != nil {
		return config, err
	}
	fs.Visit(func(f *flag.Flag) {
		if field, ok := explicitFlags[f.Name]; ok {
			config.Explicit = append(config.Explicit, field)
		}
	})
	if config.Passes < 1 {
		return config, fmt.Errorf("passes must be at least 1, got %d", config.Passes)
	}
	return config, nil
}

func main() {
	config, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	if config.Help {
		showHelp()
		return
	}
	if config.List {
		if err := listScenes(); err != nil {
			fmt.Printf("Error listing scenes: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, config); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Println("Recursive Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	var config Config
	fs := newFlagSet(&config)
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Output will be saved to <output>/<scene>/render_<timestamp>.png")
}

func listScenes() error {
	response, err := scene.ListAllScenes()
	if err != nil {
		return err
	}
	for _, group := range response.Groups {
		fmt.Printf("%s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Printf("  %-20s %s\n", info.ID, info.Description)
		}
	}
	return nil
}

// printSystemInfo logs the host the render runs on
func printSystemInfo(logger core.Logger) {
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		logger.Printf("CPU: %s (%.0f MHz)\n", infos[0].ModelName, infos[0].Mhz)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		logger.Printf("Memory: %.1f GB\n", float64(vm.Total)/(1<<30))
	}
}

// createScene resolves a registry ID or a .ply path into a scene
func createScene(sceneType string, width int, logger core.Logger) (*scene.Scene, error) {
	var overrides []geometry.CameraConfig
	if width > 0 {
		overrides = append(overrides, geometry.CameraConfig{Width: width})
	}

	if strings.HasSuffix(strings.ToLower(sceneType), ".ply") {
		return scene.NewPLYScene(sceneType, logger, overrides...)
	}
	return scene.LoadScene(sceneType, logger, overrides...)
}

// samplingOverrides maps the sampling flags onto a partial config
func samplingOverrides(config Config) scene.SamplingConfig {
	return scene.SamplingConfig{
		SamplesPerPixel:             config.Samples,
		UseDepthOfField:             config.DoF,
		DofSampleNum:                config.DoFSamples,
		FocalLength:                 config.Focal,
		ApertureRadius:              config.Aperture,
		MaxDepth:                    config.MaxDepth,
		Seed:                        config.Seed,
		TileSize:                    config.TileSize,
		NumWorkers:                  config.Workers,
		WeightDielectricDirectLight: config.Weighted,
	}
}

// sceneDirName turns a scene ID or mesh path into a directory name
func sceneDirName(sceneType string) string {
	name := strings.TrimPrefix(sceneType, "ply:")
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if name == "" || name == "." {
		return "scene"
	}
	return name
}

func run(ctx context.Context, config Config) error {
	logger := renderer.NewDefaultLogger()
	logger.Printf("Starting Recursive Raytracer...\n")
	printSystemInfo(logger)

	s, err := createScene(config.SceneType, config.Width, logger)
	if err != nil {
		return fmt.Errorf("failed to create scene: %w", err)
	}
	s.SamplingConfig = scene.MergeSamplingConfig(s.SamplingConfig, samplingOverrides(config), config.Explicit...)

	rt, err := renderer.NewRaytracer(s, logger)
	if err != nil {
		return err
	}

	startTime := time.Now()
	frame, stats, err := render(ctx, rt, config.Passes)
	if err != nil {
		return err
	}

	logger.Printf("Render completed in %v\n", time.Since(startTime))
	logger.Printf("Samples per pixel: %.1f over %d tiles with %d workers\n",
		stats.AverageSamples(), stats.Tiles, stats.Workers)

	outputDir := filepath.Join(config.OutputDir, sceneDirName(config.SceneType))
	files, err := saveFrame(frame, outputDir, time.Now().Format("20060102_150405"), config.Raw)
	if err != nil {
		return err
	}
	for _, file := range files {
		logger.Printf("Render saved as %s\n", file)
	}
	logger.Printf("Average luminance: %.4f\n", renderer.CalculateAverageLuminance(frame.Image()))
	return nil
}

// render runs a single frame, or progressive passes keeping the last
func render(ctx context.Context, rt *renderer.Raytracer, passes int) (*renderer.Frame, renderer.RenderStats, error) {
	if passes <= 1 {
		return rt.RenderFrame(ctx, nil)
	}

	pr := renderer.NewProgressiveRaytracer(rt, renderer.ProgressiveConfig{InitialSamples: 1, MaxPasses: passes})
	passChan, _, errChan := pr.RenderProgressive(ctx, renderer.RenderOptions{})

	var last renderer.PassResult
	for pass := range passChan {
		last = pass
	}
	if err := <-errChan; err != nil {
		return nil, renderer.RenderStats{}, err
	}
	return last.Frame, last.Stats, nil
}

// saveFrame writes render_<timestamp>.png, and the raw .ppm if requested,
// returning the paths written
func saveFrame(frame *renderer.Frame, outputDir, timestamp string, raw bool) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Join(outputDir, fmt.Sprintf("render_%s", timestamp))
	pngPath := base + ".png"
	if err := writeFile(pngPath, func(f *os.File) error { return png.Encode(f, frame.Image()) }); err != nil {
		return nil, err
	}
	files := []string{pngPath}

	if raw {
		ppmPath := base + ".ppm"
		if err := writeFile(ppmPath, func(f *os.File) error { return frame.WriteRaw(f) }); err != nil {
			return files, err
		}
		files = append(files, ppmPath)
	}
	return files, nil
}

func writeFile(path string, write func(*os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
