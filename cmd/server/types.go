package main

import "time"

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	DBPath         string
	AllowedOrigins []string
}

// ErrorResponse is the JSON shape of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DetectionResponse is one stored detection as served over the API.
type DetectionResponse struct {
	ID           string    `json:"id"`
	TemplateName string    `json:"template_name"`
	DetectTime   time.Time `json:"detect_time"`
	NoChans      int       `json:"no_chans"`
	Chans        []string  `json:"chans"`
	DetectVal    float64   `json:"detect_val"`
	Threshold    float64   `json:"threshold"`
	TypeOfDet    string    `json:"type_of_det"`
}

// DetectionsListResponse wraps GET /api/detections.
type DetectionsListResponse struct {
	Detections []DetectionResponse `json:"detections"`
	Count      int                 `json:"count"`
}

// DeleteResponse wraps DELETE /api/detections.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}
