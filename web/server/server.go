package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"runtime"
	"strconv"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	// DefaultScene is rendered when a request names none
	DefaultScene = "showcase"
	// DefaultTileSize is the tile edge used for streamed renders
	DefaultTileSize = 32

	minWidth      = 16
	maxWidth      = 2000
	maxSamples    = 256
	maxPasses     = 64
	maxDepthLimit = 32
	maxDoFSamples = 64
)

// Server handles web requests for the raytracer
type Server struct {
	port      int
	staticDir string
	echo      *echo.Echo
}

// NewServer creates a new web server serving static files from staticDir
func NewServer(port int, staticDir string) *Server {
	s := &Server{port: port, staticDir: staticDir}

	e := echo.New()
	e.HideBanner = true
	e.Use(corsMiddleware)

	e.GET("/api/health", s.handleHealth)
	e.GET("/api/scenes", s.handleScenes)
	e.GET("/api/scene-config", s.handleSceneConfig)
	e.GET("/api/render", s.handleRender)
	e.GET("/api/render.png", s.handleRenderPNG)
	e.GET("/api/inspect", s.handleInspect)
	e.Static("/", staticDir)

	s.echo = e
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}

		return next(c)
	}
}

// errorResponse is the JSON body of every failed API call
type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(c echo.Context, format string, args ...interface{}) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// HealthResponse reports liveness and the host the server renders on
type HealthResponse struct {
	Status      string `json:"status"`
	CPUModel    string `json:"cpuModel,omitempty"`
	LogicalCPUs int    `json:"logicalCpus"`
	MemoryTotal uint64 `json:"memoryTotal,omitempty"`
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	response := HealthResponse{Status: "ok", LogicalCPUs: runtime.NumCPU()}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		response.CPUModel = infos[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		response.MemoryTotal = vm.Total
	}
	return c.JSON(http.StatusOK, response)
}

// handleScenes lists built-in and mesh scenes grouped for the UI
func (s *Server) handleScenes(c echo.Context) error {
	response, err := scene.ListAllScenes()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, response)
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene           string  `json:"scene"`           // Scene ID (e.g., "cornell-box")
	Width           int     `json:"width"`           // Image width, 0 for the scene default
	SamplesPerPixel int     `json:"samplesPerPixel"` // 0 for the scene default
	MaxPasses       int     `json:"maxPasses"`       // Progressive passes
	MaxDepth        int     `json:"maxDepth"`        // 0 for the scene default
	UseDoF          bool    `json:"useDoF"`
	DoFSamples      int     `json:"dofSamples"`
	FocalLength     float64 `json:"focalLength"`
	Aperture        float64 `json:"aperture"`
	Seed            uint64  `json:"seed"`

	// Explicit lists the settings present in the query whose zero value is
	// meaningful, such as aperture=0
	Explicit []scene.SamplingField `json:"-"`
}

// explicitParams maps query parameters to the sampling settings they control
var explicitParams = map[string]scene.SamplingField{
	"aperture": scene.FieldApertureRadius,
	"seed":     scene.FieldSeed,
	"dof":      scene.FieldUseDepthOfField,
}

// parseCommonSceneParams parses the parameters every scene endpoint shares
func (s *Server) parseCommonSceneParams(values url.Values, req *RenderRequest) error {
	req.Scene = values.Get("scene")
	if req.Scene == "" {
		req.Scene = DefaultScene
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, minWidth, maxWidth); err != nil {
		return err
	}
	return nil
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(values, req); err != nil {
		return nil, err
	}

	var err error
	if req.SamplesPerPixel, err = parseIntParam(values, "spp", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(values, "maxPasses", 1, 1, maxPasses); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", 0, 1, maxDepthLimit); err != nil {
		return nil, err
	}
	if req.DoFSamples, err = parseIntParam(values, "dofSamples", 0, 1, maxDoFSamples); err != nil {
		return nil, err
	}
	if req.FocalLength, err = parseFloatParam(values, "focal", 0, 0.01, 1000); err != nil {
		return nil, err
	}
	if req.Aperture, err = parseFloatParam(values, "aperture", 0, 0, 10); err != nil {
		return nil, err
	}
	if seed := values.Get("seed"); seed != "" {
		if req.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", seed)
		}
	}
	req.UseDoF = values.Get("dof") == "true"
	for key, field := range explicitParams {
		if values.Has(key) {
			req.Explicit = append(req.Explicit, field)
		}
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene loads the requested scene with the request's overrides applied
func (s *Server) createScene(req *RenderRequest, logger core.Logger) (*scene.Scene, error) {
	var overrides []geometry.CameraConfig
	if req.Width > 0 {
		overrides = append(overrides, geometry.CameraConfig{Width: req.Width})
	}

	sceneObj, err := scene.LoadScene(req.Scene, logger, overrides...)
	if err != nil {
		return nil, err
	}

	sceneObj.SamplingConfig = scene.MergeSamplingConfig(sceneObj.SamplingConfig, scene.SamplingConfig{
		SamplesPerPixel: req.SamplesPerPixel,
		MaxDepth:        req.MaxDepth,
		UseDepthOfField: req.UseDoF,
		DofSampleNum:    req.DoFSamples,
		FocalLength:     req.FocalLength,
		ApertureRadius:  req.Aperture,
		Seed:            req.Seed,
		TileSize:        DefaultTileSize,
	}, req.Explicit...)
	return sceneObj, nil
}

// newRaytracer builds a raytracer for the request
func (s *Server) newRaytracer(req *RenderRequest, logger core.Logger) (*renderer.Raytracer, error) {
	sceneObj, err := s.createScene(req, logger)
	if err != nil {
		return nil, err
	}
	return renderer.NewRaytracer(sceneObj, logger)
}

// handleRenderPNG renders a single frame and returns it as a PNG
func (s *Server) handleRenderPNG(c echo.Context) error {
	req, err := s.parseRenderRequest(c.QueryParams())
	if err != nil {
		return badRequest(c, "Invalid request: %v", err)
	}

	rt, err := s.newRaytracer(req, nil)
	if err != nil {
		return badRequest(c, "%v", err)
	}

	frame, _, err := rt.RenderFrame(c.Request().Context(), nil)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame.Image()); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(c echo.Context) error {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(c.QueryParams(), req); err != nil {
		return badRequest(c, "%v", err)
	}

	sceneObj, err := s.createScene(req, nil)
	if err != nil {
		return badRequest(c, "Unknown scene: %s", req.Scene)
	}

	config := sceneObj.SamplingConfig
	camera := sceneObj.CameraConfig
	response := map[string]interface{}{
		"scene":     req.Scene,
		"triangles": sceneObj.TriangleCount(),
		"lights":    len(sceneObj.Lights),
		"defaults": map[string]interface{}{
			"width":           camera.Width,
			"height":          camera.Height(),
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"useDoF":          config.UseDepthOfField,
			"dofSamples":      config.DofSampleNum,
			"focalLength":     config.FocalLength,
			"aperture":        config.ApertureRadius,
			"seed":            config.Seed,
		},
		"limits": map[string]interface{}{
			"width":      map[string]int{"min": minWidth, "max": maxWidth},
			"spp":        map[string]int{"min": 1, "max": maxSamples},
			"maxPasses":  map[string]int{"min": 1, "max": maxPasses},
			"maxDepth":   map[string]int{"min": 1, "max": maxDepthLimit},
			"dofSamples": map[string]int{"min": 1, "max": maxDoFSamples},
		},
	}

	return c.JSON(http.StatusOK, response)
}
