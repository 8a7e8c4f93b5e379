package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/autobrr/go-mediainfo-refs/internal/manifest"
	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

// ComposeRequest represents the request body for the compose endpoint
type ComposeRequest struct {
	// Manifest is relative to the server root.
	Manifest string   `json:"manifest" binding:"required"`
	Options  []string `json:"options"`
	// Output is "json" (default) or "text".
	Output string `json:"output"`
}

type Track struct {
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields"`
	// Order keeps the field order of the report.
	Order []string `json:"order"`
}

// ComposeResponse represents the response body for the compose endpoint
type ComposeResponse struct {
	Ref      string   `json:"ref"`
	Tracks   []Track  `json:"tracks"`
	Problems []string `json:"problems,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errOutsideRoot = errors.New("manifest outside of the served directory")

// HealthHandler handles GET /health requests
func (s *Server) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// VersionHandler handles GET /api/v1/version requests
func (s *Server) VersionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    mediainfo.AppName,
		"version": mediainfo.FormatVersion(mediainfo.AppVersion),
	})
}

// ComposeHandler handles POST /api/v1/compose requests
func (s *Server) ComposeHandler(c *gin.Context) {
	var req ComposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	path, err := s.manifestPath(req.Manifest)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := manifest.Compose(c.Request.Context(), path, manifest.ComposeOptions{
		Logger:   s.log,
		Settings: req.Options,
		Root:     s.root,
	})
	if err != nil {
		s.log.Warn("compose failed", zap.String("manifest", req.Manifest), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	if strings.EqualFold(req.Output, "text") {
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(mediainfo.RenderText([]mediainfo.Report{*result.Report})))
		return
	}
	c.JSON(http.StatusOK, newComposeResponse(result))
}

// manifestPath resolves name inside the server root.
func (s *Server) manifestPath(name string) (string, error) {
	name = filepath.FromSlash(name)
	if !filepath.IsLocal(name) {
		return "", errOutsideRoot
	}
	if !manifest.IsManifest(name) {
		return "", errors.New("manifest must be a .yaml or .yml file")
	}
	return filepath.Join(s.root, name), nil
}

func newComposeResponse(result *manifest.Result) ComposeResponse {
	report := result.Report
	resp := ComposeResponse{Ref: report.Ref}
	resp.Tracks = append(resp.Tracks, newTrack(report.General))
	for _, stream := range report.Streams {
		resp.Tracks = append(resp.Tracks, newTrack(stream))
	}
	for _, problem := range result.Problems {
		resp.Problems = append(resp.Problems, problem.Error())
	}
	return resp
}

func newTrack(stream mediainfo.Stream) Track {
	track := Track{Type: string(stream.Kind), Fields: make(map[string]string, len(stream.Fields))}
	for _, field := range stream.Fields {
		track.Fields[field.Name] = field.Value
		track.Order = append(track.Order, field.Name)
	}
	return track
}
