package ports

import (
	"context"

	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/upload"
)

type (
	InitUploadRequest struct {
		FileName     string
		RelativePath string
		FileSize     uint64
		ParentID     *item.ID
	}

	InitUploadResult struct {
		SessionID string
		BlobKey   string
	}

	ChunkRequest struct {
		BlobKey     string
		PartIndex   int
		TotalChunks int
		Body        []byte
	}

	ChunkResult struct {
		ProgressPercent int
		IsComplete      bool
	}

	CompleteUploadRequest struct {
		BlobKey     string
		FileName    string
		FileSize    uint64
		TotalChunks int
		MimeType    string
	}
)

type UploadService interface {
	InitUploadSession(ctx context.Context, ownerUUID user.UUID, req InitUploadRequest) (*InitUploadResult, error)
	UploadChunk(ctx context.Context, sessionID string, req ChunkRequest) (*ChunkResult, error)
	CompleteUpload(ctx context.Context, ownerUUID user.UUID, sessionID string, req CompleteUploadRequest) (*item.Item, error)
	CancelUpload(ctx context.Context, sessionID string) error
	SessionStatus(sessionID string) (*upload.SessionStatus, error)
	TrackerStats() upload.Stats
}
