package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/mq"
)

type ItemService struct {
	itemRepository item.Repository
	userRepository user.Repository
	resolver       *PathResolver
	deletion       *DeletionService
	ledger         ports.StorageLedger
	blobStore      ports.BlobStore
	mq             ports.RabbitMQ
	presignTTL     time.Duration
	logger         *zap.Logger
}

func NewItemService(
	itemRepository item.Repository,
	userRepository user.Repository,
	resolver *PathResolver,
	deletion *DeletionService,
	ledger ports.StorageLedger,
	blobStore ports.BlobStore,
	rbMQ ports.RabbitMQ,
	presignTTL time.Duration,
	logger *zap.Logger,
) ports.ItemService {
	return &ItemService{
		itemRepository: itemRepository,
		userRepository: userRepository,
		resolver:       resolver,
		deletion:       deletion,
		ledger:         ledger,
		blobStore:      blobStore,
		mq:             rbMQ,
		presignTTL:     presignTTL,
		logger:         logger,
	}
}

func (is *ItemService) ResolvePath(ctx context.Context, ownerUUID user.UUID, segments []string, createMissing bool) (*item.PathResult, error) {
	ownerID, err := is.userRepository.FetchInternalID(ctx, ownerUUID)
	if err != nil {
		return nil, err
	}

	return is.resolver.Resolve(ctx, ownerID, segments, ResolveOptions{CreateMissing: createMissing})
}

func (is *ItemService) ListFolder(ctx context.Context, ownerUUID user.UUID, parentID *item.ID, page int) (item.Items, error) {
	ownerID, err := is.userRepository.FetchInternalID(ctx, ownerUUID)
	if err != nil {
		return nil, err
	}

	return is.itemRepository.ListFolderItems(ctx, ownerID, parentID, page)
}

func (is *ItemService) DeleteItem(ctx context.Context, ownerUUID user.UUID, itemID item.ID) (*ports.DeletionResult, error) {
	ownerID, err := is.userRepository.FetchInternalID(ctx, ownerUUID)
	if err != nil {
		return nil, err
	}

	res, err := is.deletion.DeleteSubtree(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	is.mq.GetInputChan() <- mq.Event{
		Id:        uuid.New(),
		TS:        time.Now(),
		Action:    mq.ActionItemDeleted,
		OwnerUUID: ownerUUID.String(),
		Payload: map[string]any{
			"item_id":       itemID,
			"bytes_freed":   res.BytesFreed,
			"items_deleted": res.ItemsDeleted,
		},
	}

	return res, nil
}

func (is *ItemService) PresignDownload(ctx context.Context, ownerUUID user.UUID, itemID item.ID) (string, error) {
	ownerID, err := is.userRepository.FetchInternalID(ctx, ownerUUID)
	if err != nil {
		return "", err
	}

	it, err := is.itemRepository.FetchByID(ctx, ownerID, itemID)
	if err != nil {
		return "", err
	}
	if !it.IsFile() || it.BlobKey == nil {
		return "", item.ErrNotFound
	}

	return is.blobStore.PresignDownload(ctx, *it.BlobKey, is.presignTTL)
}

func (is *ItemService) StorageSummary(ctx context.Context, ownerUUID user.UUID, reconcile bool) (*ports.StorageSummary, error) {
	ownerID, err := is.userRepository.FetchInternalID(ctx, ownerUUID)
	if err != nil {
		return nil, err
	}

	sum := &ports.StorageSummary{}

	if reconcile {
		rec, err := is.ledger.Reconcile(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		sum.Reconciled = rec.Drifted
		sum.FileCount = rec.FileCount
		sum.FolderCount = rec.FolderCount
	} else {
		usage, err := is.ledger.Usage(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		sum.FileCount = usage.FileCount
		sum.FolderCount = usage.FolderCount
	}

	st, err := is.ledger.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sum.StorageUsed = st.StorageUsed
	sum.StorageLimit = st.StorageLimit

	return sum, nil
}
