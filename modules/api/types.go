package api

import (
	"context"

	"github.com/magbay/LAN-Chat/modules/uploads"
)

// ImageStore stores and serves uploaded images.
type ImageStore interface {
	SaveImage(ctx context.Context, filename string, data []byte) (uploads.StoredImage, error)
	OpenImage(ctx context.Context, id, name string) ([]byte, uploads.StoredImage, error)
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadResponse is returned for an accepted image upload.
type UploadResponse struct {
	URL string `json:"url"`
}

// RosterResponse lists the nicknames currently in the room.
type RosterResponse struct {
	Nicknames []string `json:"nicknames"`
	Count     int      `json:"count"`
}

// NicknameResponse carries a generated nickname.
type NicknameResponse struct {
	Nickname string `json:"nickname"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
