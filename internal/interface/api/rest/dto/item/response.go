package item

import (
	"github.com/google/uuid"
)

type (
	Item struct {
		ID        uint64    `json:"id"`
		UUID      uuid.UUID `json:"uuid"`
		ParentID  *uint64   `json:"parent_id"`
		Name      string    `json:"name"`
		Kind      string    `json:"kind"`
		SizeBytes uint64    `json:"size_bytes"`
		MimeType  string    `json:"mime_type,omitempty"`
	}
	Items        []Item
	ResponseData struct {
		Data Items `json:"data"`
	}

	PathEntry struct {
		ID   *uint64 `json:"id"`
		Name string  `json:"name"`
	}
	PathResult struct {
		FolderID   *uint64     `json:"folder_id"`
		FolderName string      `json:"folder_name"`
		Path       []PathEntry `json:"path"`
		CreatedIDs []uint64    `json:"created_ids,omitempty"`
	}

	DeletionResult struct {
		BytesFreed       uint64   `json:"bytes_freed"`
		ItemsDeleted     int64    `json:"items_deleted"`
		OrphanedBlobKeys []string `json:"orphaned_blob_keys,omitempty"`
	}

	StorageSummary struct {
		StorageUsed  uint64 `json:"storage_used"`
		StorageLimit uint64 `json:"storage_limit"`
		FileCount    int64  `json:"file_count"`
		FolderCount  int64  `json:"folder_count"`
		Reconciled   bool   `json:"reconciled"`
	}
)
