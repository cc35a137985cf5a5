package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
	"github.com/labstack/echo/v4"
)

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	X           int    `json:"x"` // Pixel position of the tile's top-left corner
	Y           int    `json:"y"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate summarizes a finished pass
type PassUpdate struct {
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ElapsedMs      int64   `json:"elapsedMs"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	Workers        int     `json:"workers"`
	TriangleCount  int     `json:"triangleCount"`
	IsLast         bool    `json:"isLast"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// renderSession carries what the event loop needs for one request
type renderSession struct {
	raytracer   *renderer.Raytracer
	totalPasses int
	startTime   time.Time
}

// handleRender streams a progressive render as Server-Sent Events
func (s *Server) handleRender(c echo.Context) error {
	w := c.Response()
	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()

	// Every event goes through one writer goroutine
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, sseEventChan)
	}()

	consoleChan, webLogger := s.setupConsoleLogging()
	consoleStop := make(chan struct{})
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleStop, consoleChan, sseEventChan)
	}()

	err := s.runRender(ctx, c, sseEventChan, webLogger)

	// Stop the only other sender so the final event is the last one written
	close(consoleStop)
	<-consoleDone

	final := SSEEvent{Type: "complete", Data: "Rendering completed"}
	if err != nil {
		final = SSEEvent{Type: "error", Data: err.Error()}
	}
	select {
	case sseEventChan <- final:
	case <-ctx.Done():
	}

	close(sseEventChan)
	<-writerDone
	return nil
}

// runRender parses the request, renders and queues the resulting events
func (s *Server) runRender(ctx context.Context, c echo.Context, sseEventChan chan<- SSEEvent, logger core.Logger) error {
	req, err := s.parseRenderRequest(c.QueryParams())
	if err != nil {
		return fmt.Errorf("Invalid request: %v", err)
	}

	rt, err := s.newRaytracer(req, logger)
	if err != nil {
		return err
	}

	session := renderSession{raytracer: rt, totalPasses: req.MaxPasses, startTime: time.Now()}
	pr := renderer.NewProgressiveRaytracer(rt, renderer.ProgressiveConfig{InitialSamples: 1, MaxPasses: req.MaxPasses})
	passChan, tileChan, errChan := pr.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})

	return s.handleRenderingEvents(ctx, sseEventChan, passChan, tileChan, errChan, session)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents writes queued events until the channel closes or the client leaves
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				return
			}
			if flusher != nil {
				flusher.Flush()
			}

		case <-ctx.Done():
			return
		}
	}
}

// streamConsoleMessages forwards logger output until stop closes. Messages
// are dropped rather than blocking the render when the event queue is full.
func (s *Server) streamConsoleMessages(ctx context.Context, stop <-chan struct{}, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	forward := func(consoleMsg ConsoleMessage) {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			return
		}
		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		default:
		}
	}

	for {
		select {
		case consoleMsg := <-consoleChan:
			forward(consoleMsg)

		case <-stop:
			// Flush what the render logged before finishing
			for {
				select {
				case consoleMsg := <-consoleChan:
					forward(consoleMsg)
				default:
					return
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

// handleRenderingEvents forwards pass and tile results until rendering ends
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan<- SSEEvent,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	session renderSession) error {

	for passChan != nil || tileChan != nil {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			s.handlePassComplete(ctx, sseEventChan, passResult, session)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, sseEventChan, tileResult, session.totalPasses)

		case <-ctx.Done():
			// Client disconnected
			return ctx.Err()
		}
	}

	if err := <-errChan; err != nil {
		return fmt.Errorf("Rendering failed: %v", err)
	}
	return nil
}

// handlePassComplete processes and sends pass completion events
func (s *Server) handlePassComplete(ctx context.Context, sseEventChan chan<- SSEEvent, passResult renderer.PassResult, session renderSession) {
	update := PassUpdate{
		PassNumber:     passResult.PassNumber,
		TotalPasses:    session.totalPasses,
		ElapsedMs:      time.Since(session.startTime).Milliseconds(),
		TotalPixels:    passResult.Stats.TotalPixels,
		TotalSamples:   passResult.Stats.TotalSamples,
		AverageSamples: passResult.Stats.AverageSamples(),
		Workers:        passResult.Stats.Workers,
		TriangleCount:  session.raytracer.Scene().TriangleCount(),
		IsLast:         passResult.IsLast,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling pass update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "passComplete", Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan<- SSEEvent, tileResult renderer.TileCompletionResult, totalPasses int) {
	tile := tileResult.Tile
	tileData, err := s.imageToBase64PNG(tileResult.Frame.SubImage(tile.Bounds))
	if err != nil {
		log.Printf("Error encoding tile image (%d, %d): %v", tile.TileX, tile.TileY, err)
		return
	}

	update := TileUpdate{
		TileX:       tile.TileX,
		TileY:       tile.TileY,
		X:           tile.Bounds.Min.X,
		Y:           tile.Bounds.Min.Y,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: totalPasses,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling tile update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "tile", Data: string(data)}:
	case <-ctx.Done():
	}
}
