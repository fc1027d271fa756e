package services

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"filevault-api/config"
	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
)

// QuotaExceededError reports a rejected quota check along with the bytes the
// user still has, so clients can say how much would fit.
type QuotaExceededError struct {
	Requested uint64
	Available uint64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("storage limit exceeded: requested %d bytes, %d available", e.Requested, e.Available)
}

type LedgerService struct {
	userRepository user.Repository
	itemRepository item.Repository
	defaultLimit   uint64
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
}

func NewLedgerService(
	userRepository user.Repository,
	itemRepository item.Repository,
	cfg config.Quota,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.StorageLedger {
	return &LedgerService{
		userRepository: userRepository,
		itemRepository: itemRepository,
		defaultLimit:   uint64(cfg.DefaultLimitBytes),
		logger:         logger,
		mCounter:       mCounter,
	}
}

// a user row with no explicit limit falls back to the configured default
func (ls *LedgerService) applyDefaultLimit(st *user.Storage) {
	if st.StorageLimit == 0 {
		st.StorageLimit = ls.defaultLimit
	}
}

// CheckQuota compares used+additional against the limit. It is advisory: no
// bytes are reserved, and a concurrent upload that also passes can push the
// user over the limit until Reconcile runs. Closing that race would need a
// per-user serialized section around init+complete; we keep the source
// behavior and stay best-effort.
func (ls *LedgerService) CheckQuota(ctx context.Context, ownerID user.ID, additionalBytes uint64) error {
	st, err := ls.userRepository.FetchStorage(ctx, ownerID)
	if err != nil {
		return err
	}
	ls.applyDefaultLimit(st)

	if st.StorageUsed+additionalBytes > st.StorageLimit {
		return &QuotaExceededError{
			Requested: additionalBytes,
			Available: st.Available(),
		}
	}

	return nil
}

func (ls *LedgerService) ApplyDelta(ctx context.Context, ownerID user.ID, deltaBytes int64) error {
	if deltaBytes == 0 {
		return nil
	}
	return ls.userRepository.AddStorageUsed(ctx, ownerID, deltaBytes)
}

// Reconcile recomputes storage_used as the exact sum over the user's live
// file items and overwrites the counter when it drifted.
func (ls *LedgerService) Reconcile(ctx context.Context, ownerID user.ID) (*ports.ReconcileResult, error) {
	usage, err := ls.itemRepository.SumActualUsage(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	st, err := ls.userRepository.FetchStorage(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	res := &ports.ReconcileResult{
		ActualUsed:  usage.Bytes,
		FileCount:   usage.FileCount,
		FolderCount: usage.FolderCount,
		TotalCount:  usage.TotalCount,
	}

	if st.StorageUsed != usage.Bytes {
		res.Drifted = true
		if err = ls.userRepository.UpdateStorageUsed(ctx, ownerID, usage.Bytes); err != nil {
			return nil, err
		}

		ls.logger.Warn("storage counter drifted, reconciled",
			zap.Uint64("owner_id", uint64(ownerID)),
			zap.Uint64("stored", st.StorageUsed),
			zap.Uint64("actual", usage.Bytes),
		)
		ls.mCounter.WithLabelValues("ledger_reconciled_total").Inc()
	}

	return res, nil
}

func (ls *LedgerService) Snapshot(ctx context.Context, ownerID user.ID) (*user.Storage, error) {
	st, err := ls.userRepository.FetchStorage(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ls.applyDefaultLimit(st)

	return st, nil
}

func (ls *LedgerService) Usage(ctx context.Context, ownerID user.ID) (*item.UsageSummary, error) {
	return ls.itemRepository.SumActualUsage(ctx, ownerID)
}
