package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/config"
	"filevault-api/internal/application/ports"
	"filevault-api/internal/application/services"
	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/jwt"
	itemDTO "filevault-api/internal/interface/api/rest/dto/item"
	uploadDTO "filevault-api/internal/interface/api/rest/dto/upload"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/internal/interface/api/rest/validator"
	"filevault-api/internal/upload"
)

// fallback when the chunk size is not configured
const defaultChunkSizeBytes = int64(5 << 20)

type UploadController struct {
	uploadService ports.UploadService
	logger        *zap.Logger
	maxChunkBytes int64
}

func NewUploadController(
	r *gin.Engine,
	uploadService ports.UploadService,
	logger *zap.Logger,
	jwtService *jwt.Service,
	cfg config.Upload,
) *UploadController {
	maxChunk := cfg.ChunkSizeBytes
	if maxChunk <= 0 {
		maxChunk = defaultChunkSizeBytes
	}
	uc := &UploadController{
		uploadService: uploadService,
		logger:        logger,
		maxChunkBytes: maxChunk,
	}

	auth := middleware.AuthMiddleware(jwtService)
	r.POST(RouteUploads, auth, uc.InitUploadHandler)
	r.GET(RouteUploads, auth, uc.GetStatsHandler)
	r.GET(RouteUpload, auth, uc.GetStatusHandler)
	r.PUT(RouteUploadChunk, auth, uc.UploadChunkHandler)
	r.POST(RouteUploadFinish, auth, uc.CompleteUploadHandler)
	r.DELETE(RouteUpload, auth, uc.CancelUploadHandler)

	return uc
}

func (uc *UploadController) InitUploadHandler(c *gin.Context) {
	ok, ownerUUID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	var req uploadDTO.InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}

	if errs := validator.ValidateInitUpload(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	var parentID *item.ID
	if req.ParentID != nil {
		id := item.ID(*req.ParentID)
		parentID = &id
	}

	res, err := uc.uploadService.InitUploadSession(c.Request.Context(), ownerUUID, ports.InitUploadRequest{
		FileName:     req.FileName,
		RelativePath: req.RelativePath,
		FileSize:     req.FileSize,
		ParentID:     parentID,
	})
	if err != nil {
		uc.respondUploadError(c, err, "InitUploadSession() error")
		return
	}

	c.JSON(http.StatusCreated, uploadDTO.ToResponseInit(res))
}

func (uc *UploadController) UploadChunkHandler(c *gin.Context) {
	index, total, err := validator.ValidateChunkIndex(c.Param("index"), c.Query("total_chunks"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, uc.maxChunkBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read chunk body"})
		return
	}
	if int64(len(body)) > uc.maxChunkBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "chunk too large"})
		return
	}

	res, err := uc.uploadService.UploadChunk(c.Request.Context(), c.Param("session_id"), ports.ChunkRequest{
		BlobKey:     c.Query("blob_key"),
		PartIndex:   index,
		TotalChunks: total,
		Body:        body,
	})
	if err != nil {
		uc.respondUploadError(c, err, "UploadChunk() error")
		return
	}

	c.JSON(http.StatusOK, uploadDTO.ToResponseChunk(res))
}

func (uc *UploadController) CompleteUploadHandler(c *gin.Context) {
	ok, ownerUUID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	var req uploadDTO.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}

	created, err := uc.uploadService.CompleteUpload(c.Request.Context(), ownerUUID, c.Param("session_id"), ports.CompleteUploadRequest{
		BlobKey:     req.BlobKey,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		TotalChunks: req.TotalChunks,
		MimeType:    req.MimeType,
	})
	if err != nil {
		uc.respondUploadError(c, err, "CompleteUpload() error")
		return
	}

	c.JSON(http.StatusCreated, itemDTO.ToResponseItem(*created))
}

func (uc *UploadController) CancelUploadHandler(c *gin.Context) {
	if err := uc.uploadService.CancelUpload(c.Request.Context(), c.Param("session_id")); err != nil {
		uc.respondUploadError(c, err, "CancelUpload() error")
		return
	}

	c.Status(http.StatusNoContent)
}

func (uc *UploadController) GetStatusHandler(c *gin.Context) {
	st, err := uc.uploadService.SessionStatus(c.Param("session_id"))
	if err != nil {
		uc.respondUploadError(c, err, "SessionStatus() error")
		return
	}

	c.JSON(http.StatusOK, uploadDTO.ToResponseStatus(st))
}

func (uc *UploadController) GetStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, uploadDTO.ToResponseStats(uc.uploadService.TrackerStats()))
}

func (uc *UploadController) respondUploadError(c *gin.Context, err error, logMsg string) {
	var (
		validationErr *services.ValidationError
		quotaErr      *services.QuotaExceededError
		incompleteErr *services.IncompleteUploadError
		mismatchErr   *services.ChunkCountMismatchError
		pathErr       *item.PathNotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
	case errors.As(err, &quotaErr):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":           quotaErr.Error(),
			"available_bytes": quotaErr.Available,
		})
	case errors.As(err, &incompleteErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":           incompleteErr.Error(),
			"missing_indices": incompleteErr.Missing,
		})
	case errors.As(err, &mismatchErr):
		c.JSON(http.StatusConflict, gin.H{"error": mismatchErr.Error()})
	case errors.As(err, &pathErr):
		c.JSON(http.StatusNotFound, gin.H{"error": pathErr.Error()})
	case errors.Is(err, upload.ErrUnknownSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown upload session"})
	case errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "upload operation failed"},
		)
		uc.logger.Error(logMsg, zap.Error(err))
	}
}
