package server

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

func doRequest(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	s := NewServer(0, t.TempDir())
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := doRequest(t, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status ok, got %q", response.Status)
	}
	if response.LogicalCPUs < 1 {
		t.Errorf("Expected at least one CPU, got %d", response.LogicalCPUs)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header on API responses")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := NewServer(0, t.TempDir())
	req := httptest.NewRequest(http.MethodOptions, "/api/render", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", rec.Code)
	}
}

func TestHandleScenes(t *testing.T) {
	rec := doRequest(t, "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response scene.ScenesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Groups) == 0 || response.Groups[0].Name != "Built-in Scenes" {
		t.Fatalf("Expected built-in scenes first, got %+v", response.Groups)
	}

	found := false
	for _, info := range response.Groups[0].Scenes {
		if info.ID == "sphere" {
			found = true
		}
	}
	if !found {
		t.Error("Expected the sphere scene to be listed")
	}
}

func TestHandleSceneConfig(t *testing.T) {
	rec := doRequest(t, "/api/scene-config?scene=sphere")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response struct {
		Scene    string `json:"scene"`
		Lights   int    `json:"lights"`
		Defaults struct {
			Width    int `json:"width"`
			MaxDepth int `json:"maxDepth"`
		} `json:"defaults"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Scene != "sphere" || response.Lights != 1 {
		t.Errorf("Unexpected scene summary: %+v", response)
	}
	if response.Defaults.Width != 128 || response.Defaults.MaxDepth != 5 {
		t.Errorf("Unexpected defaults: %+v", response.Defaults)
	}

	if rec := doRequest(t, "/api/scene-config?scene=nonexistent"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown scene, got %d", rec.Code)
	}
}

func TestParseRenderRequest(t *testing.T) {
	s := NewServer(0, t.TempDir())

	req, err := s.parseRenderRequest(url.Values{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if req.Scene != DefaultScene || req.MaxPasses != 1 || req.Width != 0 {
		t.Errorf("Unexpected defaults: %+v", req)
	}

	req, err = s.parseRenderRequest(url.Values{"dof": {"true"}, "seed": {"9"}, "spp": {"4"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !req.UseDoF || req.Seed != 9 || req.SamplesPerPixel != 4 {
		t.Errorf("Parameters not parsed: %+v", req)
	}

	req, err = s.parseRenderRequest(url.Values{"focal": {"2.5"}, "aperture": {"0"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if req.FocalLength != 2.5 || req.Aperture != 0 || len(req.Explicit) != 1 {
		t.Errorf("Parameters not parsed: %+v", req)
	}

	invalid := []url.Values{
		{"width": {"8"}},
		{"width": {"abc"}},
		{"spp": {"0"}},
		{"maxPasses": {"1000"}},
		{"aperture": {"-1"}},
		{"seed": {"-3"}},
	}
	for _, values := range invalid {
		if _, err := s.parseRenderRequest(values); err == nil {
			t.Errorf("Expected error for %v", values)
		}
	}
}

func TestCreateScene_ExplicitZeroAperture(t *testing.T) {
	s := NewServer(0, t.TempDir())

	tests := []struct {
		name     string
		values   url.Values
		aperture float64
		seed     uint64
	}{
		{"defaults", url.Values{"scene": {"sphere"}}, scene.DefaultSamplingConfig().ApertureRadius, scene.DefaultSamplingConfig().Seed},
		{"explicit zero", url.Values{"scene": {"sphere"}, "dof": {"true"}, "aperture": {"0"}, "seed": {"0"}}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := s.parseRenderRequest(tt.values)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			sceneObj, err := s.createScene(req, nil)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			config := sceneObj.SamplingConfig
			if config.ApertureRadius != tt.aperture {
				t.Errorf("Expected aperture %f, got %f", tt.aperture, config.ApertureRadius)
			}
			if config.Seed != tt.seed {
				t.Errorf("Expected seed %d, got %d", tt.seed, config.Seed)
			}
		})
	}
}

func TestHandleRenderPNG(t *testing.T) {
	rec := doRequest(t, "/api/render.png?scene=sphere&width=16")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Failed to decode png: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 16 {
		t.Errorf("Expected 16x16 image, got %v", img.Bounds())
	}

	if rec := doRequest(t, "/api/render.png?width=5"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a too-small width, got %d", rec.Code)
	}
}

func TestHandleInspect(t *testing.T) {
	rec := doRequest(t, "/api/inspect?scene=sphere&width=64&x=32&y=32")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response InspectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !response.Hit || response.Surface != "sphere" || response.MaterialType != "diffuse" {
		t.Errorf("Unexpected inspection: %+v", response)
	}
	if response.Distance < 3.9 || response.Distance > 4.1 {
		t.Errorf("Expected distance near 4, got %f", response.Distance)
	}
	if response.Properties["color"] != "#cc4c33" {
		t.Errorf("Expected sphere color #cc4c33, got %v", response.Properties["color"])
	}

	tests := []struct {
		name   string
		target string
		code   int
		hit    bool
	}{
		{"miss", "/api/inspect?scene=sphere&width=64&x=0&y=0", http.StatusOK, false},
		{"out of bounds", "/api/inspect?scene=sphere&width=64&x=64&y=0", http.StatusBadRequest, false},
		{"bad coordinate", "/api/inspect?scene=sphere&x=a&y=0", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, tt.target)
			if rec.Code != tt.code {
				t.Fatalf("Expected %d, got %d", tt.code, rec.Code)
			}
			if tt.code == http.StatusOK {
				var response InspectResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if response.Hit != tt.hit {
					t.Errorf("Expected hit %v, got %v", tt.hit, response.Hit)
				}
			}
		})
	}
}

func TestHandleRender_StreamsEvents(t *testing.T) {
	rec := doRequest(t, "/api/render?scene=sphere&width=16&maxPasses=2&spp=2")
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}

	body := rec.Body.String()
	if strings.Contains(body, "event: error") {
		t.Fatalf("Unexpected error event: %s", body)
	}
	// One 32px tile covers the image, once per pass
	if got := strings.Count(body, "event: tile\n"); got != 2 {
		t.Errorf("Expected 2 tile events, got %d", got)
	}
	if got := strings.Count(body, "event: passComplete\n"); got != 2 {
		t.Errorf("Expected 2 pass events, got %d", got)
	}
	if !strings.HasSuffix(body, "event: complete\ndata: Rendering completed\n\n") {
		t.Error("Expected the stream to end with a complete event")
	}
}

func TestHandleRender_InvalidRequest(t *testing.T) {
	rec := doRequest(t, "/api/render?scene=nonexistent")
	body := rec.Body.String()
	if !strings.Contains(body, "event: error") {
		t.Errorf("Expected an error event, got %q", body)
	}
	if strings.Contains(body, "event: complete") {
		t.Error("Expected no complete event after an error")
	}
}
