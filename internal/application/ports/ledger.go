package ports

import (
	"context"

	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
)

type (
	ReconcileResult struct {
		ActualUsed  uint64
		Drifted     bool
		FileCount   int64
		FolderCount int64
		TotalCount  int64
	}
)

// StorageLedger keeps the per-user usage counter in step with the item tree.
// CheckQuota is advisory only: it does not reserve bytes, so two concurrent
// uploads can both pass and jointly overshoot the limit. Reconcile repairs
// whatever drift that (or a crash) produced.
type StorageLedger interface {
	CheckQuota(ctx context.Context, ownerID user.ID, additionalBytes uint64) error
	ApplyDelta(ctx context.Context, ownerID user.ID, deltaBytes int64) error
	Reconcile(ctx context.Context, ownerID user.ID) (*ReconcileResult, error)
	Snapshot(ctx context.Context, ownerID user.ID) (*user.Storage, error)
	Usage(ctx context.Context, ownerID user.ID) (*item.UsageSummary, error)
}
