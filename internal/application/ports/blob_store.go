package ports

import (
	"context"
	"time"

	"filevault-api/internal/domain/user"
	"filevault-api/internal/upload"
)

type (
	// MultipartInit identifies a freshly opened multipart upload on the blob
	// store. Key is the final object key, UploadID the store's handle.
	MultipartInit struct {
		UploadID string
		Key      string
	}

	CompletedObject struct {
		Key string
		URL string
	}

	BlobDeleteError struct {
		Key    string
		Reason string
	}

	// BlobDeleteResult reports a batched delete. Failed keys are orphaned
	// objects the caller chose to tolerate, not a fatal condition.
	BlobDeleteResult struct {
		Deleted []string
		Failed  []BlobDeleteError
	}
)

type BlobStore interface {
	InitMultipart(ctx context.Context, fileName string, ownerID user.ID) (*MultipartInit, error)
	UploadPart(ctx context.Context, uploadID, key string, partNumber int32, body []byte) (string, error)
	CompleteMultipart(ctx context.Context, uploadID, key string, parts []upload.Part) (*CompletedObject, error)
	AbortMultipart(ctx context.Context, uploadID, key string) error
	DeleteObjects(ctx context.Context, keys []string) (*BlobDeleteResult, error)
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
}
