package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/mq"
)

type DeletionService struct {
	itemRepository item.Repository
	blobStore      ports.BlobStore
	ledger         ports.StorageLedger
	mq             ports.RabbitMQ
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
}

func NewDeletionService(
	itemRepository item.Repository,
	blobStore ports.BlobStore,
	ledger ports.StorageLedger,
	rbMQ ports.RabbitMQ,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) *DeletionService {
	return &DeletionService{
		itemRepository: itemRepository,
		blobStore:      blobStore,
		ledger:         ledger,
		mq:             rbMQ,
		logger:         logger,
		mCounter:       mCounter,
	}
}

// DeleteSubtree removes the item and every descendant. Blob objects go first
// in one batched delete; per-key blob failures are logged, reported in the
// result and do not stop the row delete, so the tree never keeps rows that
// point at half-deleted subtrees. The cost is possible orphaned objects in
// the blob store. A single file is just a one-element subtree.
func (ds *DeletionService) DeleteSubtree(ctx context.Context, ownerID user.ID, rootID item.ID) (*ports.DeletionResult, error) {
	root, err := ds.itemRepository.FetchByID(ctx, ownerID, rootID)
	if err != nil {
		return nil, err
	}

	// iterative level-by-level walk, no recursion on tree depth
	all := item.Items{root}
	frontier := []item.ID{root.ID}
	for len(frontier) > 0 {
		children, err := ds.itemRepository.ListChildren(ctx, ownerID, frontier)
		if err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, child := range children {
			all = append(all, child)
			if child.IsFolder() {
				frontier = append(frontier, child.ID)
			}
		}
	}

	var (
		ids        = make([]item.ID, 0, len(all))
		blobKeys   []string
		bytesFreed uint64
	)
	for _, it := range all {
		ids = append(ids, it.ID)
		bytesFreed += it.ChargeableBytes()
		if it.IsFile() && it.BlobKey != nil {
			blobKeys = append(blobKeys, *it.BlobKey)
		}
	}

	res := &ports.DeletionResult{BytesFreed: bytesFreed}

	if len(blobKeys) > 0 {
		delRes, err := ds.blobStore.DeleteObjects(ctx, blobKeys)
		if err != nil {
			// whole-batch failure: every key is now a potential orphan
			ds.logger.Error("blob batch delete failed, proceeding with row delete",
				zap.Uint64("owner_id", uint64(ownerID)),
				zap.Int("keys", len(blobKeys)),
				zap.Error(err),
			)
			res.OrphanedBlobKeys = blobKeys
		} else {
			for _, f := range delRes.Failed {
				ds.logger.Warn("blob delete failed, object orphaned",
					zap.String("key", f.Key),
					zap.String("reason", f.Reason),
				)
				res.OrphanedBlobKeys = append(res.OrphanedBlobKeys, f.Key)
			}
		}

		if n := len(res.OrphanedBlobKeys); n > 0 {
			ds.mCounter.WithLabelValues("blob_delete_failures_total").Add(float64(n))
			ds.mq.GetInputChan() <- mq.Event{
				Id:      uuid.New(),
				TS:      time.Now(),
				Action:  mq.ActionBlobOrphaned,
				Payload: res.OrphanedBlobKeys,
			}
		}
	}

	deleted, err := ds.itemRepository.BulkDelete(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}
	res.ItemsDeleted = deleted

	if err = ds.ledger.ApplyDelta(ctx, ownerID, -int64(bytesFreed)); err != nil {
		return nil, err
	}

	ds.mCounter.WithLabelValues("items_deleted_total").Add(float64(deleted))

	return res, nil
}
