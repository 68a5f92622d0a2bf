package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/df07/go-sphere-tracer/pkg/integrator"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// Request limits shared by the render and inspect endpoints
const (
	minWidth, maxWidth     = 16, 2000
	minSamples, maxSamples = 1, 10000
	minDepth, maxDepth     = 1, 1000
)

// Server handles web requests for the sphere tracer
type Server struct {
	port int
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string `json:"scene"`      // Scene ID (e.g., "default" or "json:three-spheres")
	Width      int    `json:"width"`      // Image width; height follows the scene aspect ratio
	Samples    int    `json:"samples"`    // Samples per pixel
	MaxDepth   int    `json:"maxDepth"`   // Maximum scatter depth
	Seed       int64  `json:"seed"`       // Base random seed
	Integrator string `json:"integrator"` // "path" or "normal"; empty = scene preference
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/image", s.handleImage)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and file scenes grouped by category
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// parseRenderRequest parses request parameters, falling back to the scene's defaults
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene"), Integrator: query.Get("integrator")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, minWidth, maxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, minSamples, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, minDepth, maxDepth); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", int(renderer.DefaultParallelConfig().Seed), 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	if req.Integrator != "" && !slices.Contains(integrator.Names(), req.Integrator) {
		return nil, fmt.Errorf("unknown integrator %q (available: %v)", req.Integrator, integrator.Names())
	}

	// Performance warning
	if req.Width > 1000 && req.Samples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// createScene builds the requested scene with the request's overrides applied
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	sceneObj, err := scene.Create(req.Scene, renderer.CameraConfig{Width: req.Width})
	if err != nil {
		return nil, err
	}
	if req.Samples > 0 {
		sceneObj.SamplingConfig.SamplesPerPixel = req.Samples
	}
	if req.MaxDepth > 0 {
		sceneObj.SamplingConfig.MaxDepth = req.MaxDepth
	}
	return sceneObj, nil
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

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := scene.Create(sceneName)
	if err != nil {
		writeSceneError(w, err)
		return
	}

	config := sceneObj.GetSamplingConfig()
	cameraConfig := sceneObj.CameraConfig
	preferredIntegrator := sceneObj.Integrator
	if preferredIntegrator == "" {
		preferredIntegrator = "path"
	}

	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":              config.Width,
			"height":             config.Height,
			"samplesPerPixel":    config.SamplesPerPixel,
			"maxDepth":           config.MaxDepth,
			"adaptiveMinSamples": config.AdaptiveMinSamples,
			"adaptiveThreshold":  config.AdaptiveThreshold,
			"integrator":         preferredIntegrator,
		},
		"camera": map[string]interface{}{
			"lookFrom":      [3]float64{cameraConfig.Center.X, cameraConfig.Center.Y, cameraConfig.Center.Z},
			"lookAt":        [3]float64{cameraConfig.LookAt.X, cameraConfig.LookAt.Y, cameraConfig.LookAt.Z},
			"vfov":          cameraConfig.VFov,
			"aspectRatio":   cameraConfig.AspectRatio,
			"aperture":      cameraConfig.Aperture,
			"focusDistance": cameraConfig.FocusDistance,
		},
		"spheres": sceneObj.GetPrimitiveCount(),
		"limits": map[string]interface{}{
			"width":    map[string]int{"min": minWidth, "max": maxWidth},
			"samples":  map[string]int{"min": minSamples, "max": maxSamples},
			"maxDepth": map[string]int{"min": minDepth, "max": maxDepth},
		},
		"integrators": integrator.Names(),
	}

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeSceneError maps unknown scenes to 404 and everything else to 400
func writeSceneError(w http.ResponseWriter, err error) {
	if errors.Is(err, scene.ErrUnknownScene) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
