package upload

import "time"

type (
	InitResponse struct {
		SessionID string `json:"session_id"`
		BlobKey   string `json:"blob_key"`
	}

	ChunkResponse struct {
		ProgressPercent int  `json:"progress_percent"`
		IsComplete      bool `json:"is_complete"`
	}

	StatusResponse struct {
		SessionID string    `json:"session_id"`
		BlobKey   string    `json:"blob_key"`
		PartCount int       `json:"part_count"`
		CreatedAt time.Time `json:"created_at"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	StatsResponse struct {
		SessionCount      int `json:"session_count"`
		TotalTrackedParts int `json:"total_tracked_parts"`
	}
)
