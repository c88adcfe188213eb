package uploads

import "time"

// StoredImage describes an uploaded image.
type StoredImage struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Digest      string    `json:"digest,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
