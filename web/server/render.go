package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/integrator"
	"github.com/df07/go-sphere-tracer/pkg/output"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// consoleBufferSize bounds the log lines returned with a render
const consoleBufferSize = 256

// RenderResponse is the JSON body returned by /api/render
type RenderResponse struct {
	Scene      string               `json:"scene"`
	Width      int                  `json:"width"`
	Height     int                  `json:"height"`
	Integrator string               `json:"integrator"`
	ImageData  string               `json:"imageData"` // Base64 PNG
	Stats      renderer.RenderStats `json:"stats"`
	ElapsedMs  int64                `json:"elapsedMs"`
	Console    []ConsoleMessage     `json:"console"`
}

// renderImage runs one complete tiled render for the request
func (s *Server) renderImage(r *http.Request, req *RenderRequest, logger *WebLogger) (*image.RGBA, *scene.Scene, string, renderer.RenderStats, error) {
	sceneObj, err := s.createScene(req)
	if err != nil {
		return nil, nil, "", renderer.RenderStats{}, err
	}

	integratorName := req.Integrator
	if integratorName == "" {
		integratorName = sceneObj.Integrator
	}
	if integratorName == "" {
		integratorName = "path"
	}
	integratorInst, err := integrator.New(integratorName, sceneObj.SamplingConfig)
	if err != nil {
		return nil, nil, "", renderer.RenderStats{}, err
	}

	config := renderer.DefaultParallelConfig()
	config.Seed = req.Seed

	logger.Printf("Rendering %s at %dx%d, %d spp, max depth %d, %s integrator\n",
		req.Scene, sceneObj.SamplingConfig.Width, sceneObj.SamplingConfig.Height,
		sceneObj.SamplingConfig.SamplesPerPixel, sceneObj.SamplingConfig.MaxDepth, integratorName)

	raytracer := renderer.NewParallelRaytracer(sceneObj, integratorInst, config, logger)
	img, stats, err := raytracer.Render(r.Context(), nil)
	if err != nil {
		return nil, nil, "", renderer.RenderStats{}, err
	}
	return img, sceneObj, integratorName, stats, nil
}

// handleRender renders a scene and returns the PNG with statistics as JSON
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	consoleChan := make(chan ConsoleMessage, consoleBufferSize)
	logger := &WebLogger{renderID: fmt.Sprintf("render-%d", time.Now().UnixNano()), consoleChan: consoleChan}

	start := time.Now()
	img, sceneObj, integratorName, stats, err := s.renderImage(r, req, logger)
	if err != nil {
		writeRenderError(w, err)
		return
	}
	elapsed := time.Since(start)

	var buf bytes.Buffer
	if err := output.Encode(&buf, img, output.PNG); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{
		Scene:      req.Scene,
		Width:      sceneObj.SamplingConfig.Width,
		Height:     sceneObj.SamplingConfig.Height,
		Integrator: integratorName,
		ImageData:  base64.StdEncoding.EncodeToString(buf.Bytes()),
		Stats:      stats,
		ElapsedMs:  elapsed.Milliseconds(),
		Console:    drainConsole(consoleChan),
	})
}

// handleImage renders a scene and returns the raw encoded image
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	formatName := r.URL.Query().Get("format")
	if formatName == "" {
		formatName = string(output.PNG)
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger := &WebLogger{renderID: fmt.Sprintf("image-%d", time.Now().UnixNano())}
	img, sceneObj, integratorName, _, err := s.renderImage(r, req, logger)
	if err != nil {
		writeRenderError(w, err)
		return
	}

	if r.URL.Query().Get("annotate") == "true" {
		img = output.Annotate(img, fmt.Sprintf("%s  %d spp  %s", req.Scene, sceneObj.SamplingConfig.SamplesPerPixel, integratorName))
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, img, format); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(buf.Bytes())
}

// writeRenderError reports a failed render. A cancelled request means the
// client has gone, so nothing is written.
func writeRenderError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Printf("Render abandoned: %v", err)
		return
	}
	writeSceneError(w, err)
}

func contentType(format output.Format) string {
	switch format {
	case output.PNG:
		return "image/png"
	case output.BMP:
		return "image/bmp"
	case output.TIFF:
		return "image/tiff"
	default:
		return "image/x-portable-pixmap"
	}
}
