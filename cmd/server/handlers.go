package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kahikatea/seiscan/pkg/logger"
	"github.com/kahikatea/seiscan/pkg/seiscan"
)

// Server serves stored detections over HTTP.
type Server struct {
	service seiscan.Service
	config  *ServerConfig
	log     seiscan.Logger
	started time.Time
}

// NewServer creates a new server instance.
func NewServer(service seiscan.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// Start blocks serving HTTP on the configured address.
func (s *Server) Start() error {
	s.started = time.Now()
	s.log.Infof("seiscan API listening on %s (db: %s)", s.config.Addr, s.config.DBPath)
	return http.ListenAndServe(s.config.Addr, s.setupRoutes())
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "seiscan API",
		"endpoints": map[string]string{
			"health":           "GET /health",
			"detections":       "GET /api/detections",
			"byTemplate":       "GET /api/detections/{template}",
			"deleteAll":        "DELETE /api/detections",
			"deleteByTemplate": "DELETE /api/detections/{template}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// handleDetections handles GET and DELETE on /api/detections
func (s *Server) handleDetections(w http.ResponseWriter, r *http.Request) {
	s.serveDetections(w, r, "")
}

// handleTemplateDetections handles GET and DELETE on /api/detections/{template}
func (s *Server) handleTemplateDetections(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/detections/")
	if name == "" || strings.Contains(name, "/") {
		s.respondError(w, http.StatusBadRequest, "template name required")
		return
	}
	s.serveDetections(w, r, name)
}

func (s *Server) serveDetections(w http.ResponseWriter, r *http.Request, templateName string) {
	switch r.Method {
	case http.MethodGet:
		dets, err := s.service.ListDetections(templateName)
		if err != nil {
			s.log.Errorf("listing detections: %v", err)
			s.respondError(w, http.StatusInternalServerError, "failed to list detections")
			return
		}
		resp := DetectionsListResponse{
			Detections: make([]DetectionResponse, len(dets)),
			Count:      len(dets),
		}
		for i, d := range dets {
			resp.Detections[i] = DetectionResponse(d)
		}
		s.respondJSON(w, http.StatusOK, resp)
	case http.MethodDelete:
		n, err := s.service.DeleteDetections(templateName)
		if err != nil {
			s.log.Errorf("deleting detections: %v", err)
			s.respondError(w, http.StatusInternalServerError, "failed to delete detections")
			return
		}
		s.respondJSON(w, http.StatusOK, DeleteResponse{Deleted: n})
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "use GET or DELETE")
	}
}
