package ports

import (
	"context"

	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
)

type (
	// DeletionResult sums up a cascading subtree delete. OrphanedBlobKeys are
	// objects whose blob-store delete failed; their rows are gone regardless.
	DeletionResult struct {
		BytesFreed       uint64
		ItemsDeleted     int64
		OrphanedBlobKeys []string
	}

	StorageSummary struct {
		StorageUsed  uint64
		StorageLimit uint64
		FileCount    int64
		FolderCount  int64
		Reconciled   bool
	}
)

type ItemService interface {
	ResolvePath(ctx context.Context, ownerUUID user.UUID, segments []string, createMissing bool) (*item.PathResult, error)
	ListFolder(ctx context.Context, ownerUUID user.UUID, parentID *item.ID, page int) (item.Items, error)
	DeleteItem(ctx context.Context, ownerUUID user.UUID, itemID item.ID) (*DeletionResult, error)
	PresignDownload(ctx context.Context, ownerUUID user.UUID, itemID item.ID) (string, error)
	StorageSummary(ctx context.Context, ownerUUID user.UUID, reconcile bool) (*StorageSummary, error)
}
