package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"filevault-api/config"
	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/mq"
	"filevault-api/internal/upload"
)

type (
	// ValidationError is a request the caller can fix and retry.
	ValidationError struct {
		Msg string
	}

	// IncompleteUploadError reports which chunk indices never arrived.
	IncompleteUploadError struct {
		Missing []int
	}

	// ChunkCountMismatchError means the exported part list does not line up
	// with the declared chunk count.
	ChunkCountMismatchError struct {
		Exported int
		Declared int
	}
)

func (e *ValidationError) Error() string { return e.Msg }

func (e *IncompleteUploadError) Error() string {
	return fmt.Sprintf("upload incomplete: %d chunk(s) missing", len(e.Missing))
}

func (e *ChunkCountMismatchError) Error() string {
	return fmt.Sprintf("chunk count mismatch: %d parts exported, %d declared", e.Exported, e.Declared)
}

type UploadService struct {
	tracker        *upload.Tracker
	blobStore      ports.BlobStore
	resolver       *PathResolver
	ledger         ports.StorageLedger
	itemRepository item.Repository
	userRepository user.Repository
	mq             ports.RabbitMQ
	cfg            config.Upload
	logger         *zap.Logger
	mCounter       *prometheus.CounterVec
}

func NewUploadService(
	tracker *upload.Tracker,
	blobStore ports.BlobStore,
	resolver *PathResolver,
	ledger ports.StorageLedger,
	itemRepository item.Repository,
	userRepository user.Repository,
	rbMQ ports.RabbitMQ,
	cfg config.Upload,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.UploadService {
	return &UploadService{
		tracker:        tracker,
		blobStore:      blobStore,
		resolver:       resolver,
		ledger:         ledger,
		itemRepository: itemRepository,
		userRepository: userRepository,
		mq:             rbMQ,
		cfg:            cfg,
		logger:         logger,
		mCounter:       mCounter,
	}
}

// InitUploadSession resolves (and materializes) the target folder, checks
// quota, opens the multipart upload on the blob store and registers the
// session. The resolved parent is frozen into the session so later tree
// changes cannot redirect in-flight chunks.
func (us *UploadService) InitUploadSession(ctx context.Context, ownerUUID user.UUID, req ports.InitUploadRequest) (*ports.InitUploadResult, error) {
	if req.FileSize == 0 {
		return nil, &ValidationError{Msg: "file_size must be greater than zero"}
	}
	if us.cfg.MaxFileSizeBytes > 0 && req.FileSize > uint64(us.cfg.MaxFileSizeBytes) {
		return nil, &ValidationError{Msg: "file_size exceeds the allowed maximum"}
	}
	if strings.TrimSpace(req.FileName) == "" {
		return nil, &ValidationError{Msg: "file_name is required"}
	}

	ownerID, err := us.userRepository.FetchInternalID(ctx, ownerUUID)
	if err != nil {
		return nil, err
	}

	pathRes, err := us.resolver.Resolve(ctx, ownerID, SplitPath(req.RelativePath), ResolveOptions{
		CreateMissing: true,
		RootParentID:  req.ParentID,
	})
	if err != nil {
		return nil, err
	}

	if err = us.ledger.CheckQuota(ctx, ownerID, req.FileSize); err != nil {
		return nil, err
	}

	mp, err := us.blobStore.InitMultipart(ctx, sanitizeFileName(req.FileName), ownerID)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	if err = us.tracker.InitSession(sessionID, upload.SessionMeta{
		BlobKey:        mp.Key,
		UploadID:       mp.UploadID,
		OwnerID:        ownerID,
		TargetParentID: pathRes.FolderID,
		FileSize:       req.FileSize,
	}); err != nil {
		return nil, err
	}

	us.mCounter.WithLabelValues("uploads_started_total").Inc()

	return &ports.InitUploadResult{
		SessionID: sessionID,
		BlobKey:   mp.Key,
	}, nil
}

// UploadChunk pushes one chunk to the blob store and records its etag.
// Chunks for the same session may arrive concurrently and in any order.
func (us *UploadService) UploadChunk(ctx context.Context, sessionID string, req ports.ChunkRequest) (*ports.ChunkResult, error) {
	if req.PartIndex < 0 || req.TotalChunks <= 0 || req.PartIndex >= req.TotalChunks {
		return nil, &ValidationError{Msg: "part_index must be within [0, total_chunks)"}
	}
	if len(req.Body) == 0 {
		return nil, &ValidationError{Msg: "chunk body is empty"}
	}

	meta, err := us.tracker.Meta(sessionID)
	if err != nil {
		return nil, err
	}
	if req.BlobKey != "" && req.BlobKey != meta.BlobKey {
		return nil, &ValidationError{Msg: "blob_key does not belong to this session"}
	}

	// blob store part numbers are 1-based
	etag, err := us.blobStore.UploadPart(ctx, meta.UploadID, meta.BlobKey, int32(req.PartIndex)+1, req.Body)
	if err != nil {
		return nil, err
	}

	count, err := us.tracker.RecordPart(sessionID, req.PartIndex, etag)
	if err != nil {
		// session expired between the store write and the record
		return nil, err
	}

	us.mCounter.WithLabelValues("upload_chunks_total").Inc()

	return &ports.ChunkResult{
		ProgressPercent: count * 100 / req.TotalChunks,
		IsComplete:      count == req.TotalChunks,
	}, nil
}

// CompleteUpload finalizes the multipart object, creates the file item and
// charges the ledger. On any failure the session stays tracked so the client
// can retry completion; only success removes it.
func (us *UploadService) CompleteUpload(ctx context.Context, ownerUUID user.UUID, sessionID string, req ports.CompleteUploadRequest) (*item.Item, error) {
	if req.TotalChunks <= 0 {
		return nil, &ValidationError{Msg: "total_chunks must be greater than zero"}
	}

	meta, err := us.tracker.Meta(sessionID)
	if err != nil {
		return nil, err
	}

	ownerID, err := us.userRepository.FetchInternalID(ctx, ownerUUID)
	if err != nil {
		return nil, err
	}
	if meta.OwnerID != ownerID {
		return nil, upload.ErrUnknownSession
	}
	if meta.FileSize > 0 && req.FileSize != meta.FileSize {
		return nil, &ValidationError{Msg: "file_size does not match the initialized session"}
	}

	done, err := us.tracker.IsComplete(sessionID, req.TotalChunks)
	if err != nil {
		return nil, err
	}
	if !done {
		missing, err := us.tracker.MissingIndices(sessionID, req.TotalChunks)
		if err != nil {
			return nil, err
		}
		return nil, &IncompleteUploadError{Missing: missing}
	}

	parts, err := us.tracker.ExportParts(sessionID)
	if err != nil {
		return nil, err
	}
	if len(parts) != req.TotalChunks {
		return nil, &ChunkCountMismatchError{Exported: len(parts), Declared: req.TotalChunks}
	}

	if _, err = us.blobStore.CompleteMultipart(ctx, meta.UploadID, meta.BlobKey, parts); err != nil {
		return nil, err
	}

	blobKey := meta.BlobKey
	created, _, err := us.itemRepository.Insert(ctx, &item.Item{
		OwnerID:   ownerID,
		ParentID:  meta.TargetParentID,
		Name:      sanitizeFileName(req.FileName),
		Kind:      item.KindFile,
		SizeBytes: req.FileSize,
		BlobKey:   &blobKey,
		MimeType:  req.MimeType,
	})
	if err != nil {
		return nil, err
	}

	if err = us.ledger.ApplyDelta(ctx, ownerID, int64(req.FileSize)); err != nil {
		return nil, err
	}

	us.tracker.Expire(sessionID)

	us.mq.GetInputChan() <- mq.Event{
		Id:        uuid.New(),
		TS:        time.Now(),
		Action:    mq.ActionUploadCompleted,
		OwnerUUID: ownerUUID.String(),
		Payload:   map[string]any{"item_uuid": created.UUID.String(), "size_bytes": created.SizeBytes},
	}
	us.mCounter.WithLabelValues("uploads_completed_total").Inc()

	return created, nil
}

// CancelUpload drops the session and makes a best-effort attempt to abort the
// remote multipart upload so the blob store can reclaim parts early.
func (us *UploadService) CancelUpload(ctx context.Context, sessionID string) error {
	meta, err := us.tracker.Meta(sessionID)
	if err != nil {
		return err
	}

	us.tracker.Expire(sessionID)

	if err = us.blobStore.AbortMultipart(ctx, meta.UploadID, meta.BlobKey); err != nil {
		us.logger.Warn("multipart abort failed, left for blob store GC",
			zap.String("session_id", sessionID),
			zap.String("blob_key", meta.BlobKey),
			zap.Error(err),
		)
	}

	return nil
}

func (us *UploadService) SessionStatus(sessionID string) (*upload.SessionStatus, error) {
	return us.tracker.Status(sessionID)
}

func (us *UploadService) TrackerStats() upload.Stats {
	return us.tracker.Stats()
}

const maxFileNameLen = 100

var windowsReserved = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// sanitizeFileName folds a client-supplied name to a safe ASCII base name.
func sanitizeFileName(original string) string {
	s := strings.TrimSpace(original)
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(s)
	if s == "." || s == ".." || s == "" {
		return "file"
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, s)

	ext := path.Ext(s)
	base := strings.TrimSuffix(s, ext)
	ext = strings.ToLower(ext)

	var b strings.Builder
	b.Grow(len(base))
	prevDash := false
	for _, r := range base {
		switch {
		case r >= '0' && r <= '9' || r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			prevDash = false
		case r == '-' || r == '_' || r == '.' || unicode.IsSpace(r):
			if !prevDash {
				b.WriteRune('-')
				prevDash = true
			}
		default:
		}
	}
	base = strings.Trim(b.String(), "-")

	if base == "" {
		base = "file"
	}
	if _, bad := windowsReserved[base]; bad {
		base = "_" + base
	}
	if len(base)+len(ext) > maxFileNameLen {
		base = base[:maxFileNameLen-len(ext)]
	}

	return base + ext
}
