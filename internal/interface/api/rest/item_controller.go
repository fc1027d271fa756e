package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/application/services"
	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/jwt"
	itemDTO "filevault-api/internal/interface/api/rest/dto/item"
	uploadDTO "filevault-api/internal/interface/api/rest/dto/upload"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/internal/interface/api/rest/validator"
)

type ItemController struct {
	itemService ports.ItemService
	logger      *zap.Logger
}

func NewItemController(
	r *gin.Engine,
	itemService ports.ItemService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *ItemController {
	ic := &ItemController{
		itemService: itemService,
		logger:      logger,
	}

	auth := middleware.AuthMiddleware(jwtService)
	r.POST(RouteFolders, auth, ic.CreateFoldersHandler)
	r.GET(RouteFolderResolve, auth, ic.ResolveFolderHandler)
	r.GET(RouteItems, auth, ic.GetItemsHandler)
	r.DELETE(RouteItem, auth, ic.DeleteItemHandler)
	r.GET(RouteItemDownload, auth, ic.DownloadItemHandler)
	r.GET(RouteStorage, auth, ic.GetStorageHandler)

	return ic
}

func (ic *ItemController) CreateFoldersHandler(c *gin.Context) {
	ok, ownerUUID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	var req uploadDTO.FoldersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}

	res, err := ic.itemService.ResolvePath(c.Request.Context(), ownerUUID, services.SplitPath(req.Path), true)
	if err != nil {
		ic.respondItemError(c, err, "ResolvePath() error")
		return
	}

	c.JSON(http.StatusCreated, itemDTO.ToResponsePathResult(res))
}

func (ic *ItemController) ResolveFolderHandler(c *gin.Context) {
	ok, ownerUUID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	res, err := ic.itemService.ResolvePath(c.Request.Context(), ownerUUID, services.SplitPath(c.Query("path")), false)
	if err != nil {
		ic.respondItemError(c, err, "ResolvePath() error")
		return
	}

	c.JSON(http.StatusOK, itemDTO.ToResponsePathResult(res))
}

func (ic *ItemController) GetItemsHandler(c *gin.Context) {
	ok, ownerUUID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	var parentID *item.ID
	if s := c.Query("parent_id"); s != "" {
		id, err := validator.ValidateID(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parent_id " + err.Error()})
			return
		}
		pid := item.ID(id)
		parentID = &pid
	}

	items, err := ic.itemService.ListFolder(c.Request.Context(), ownerUUID, parentID, page)
	if err != nil {
		ic.respondItemError(c, err, "ListFolder() error")
		return
	}

	c.JSON(http.StatusOK, itemDTO.ResponseData{
		Data: itemDTO.ToResponseItems(items),
	})
}

func (ic *ItemController) DeleteItemHandler(c *gin.Context) {
	ok, ownerUUID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	itemID, err := validator.ValidateID(c.Param("item_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id " + err.Error()})
		return
	}

	res, err := ic.itemService.DeleteItem(c.Request.Context(), ownerUUID, item.ID(itemID))
	if err != nil {
		ic.respondItemError(c, err, "DeleteItem() error")
		return
	}

	c.JSON(http.StatusOK, itemDTO.ToResponseDeletionResult(res))
}

func (ic *ItemController) DownloadItemHandler(c *gin.Context) {
	ok, ownerUUID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	itemID, err := validator.ValidateID(c.Param("item_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id " + err.Error()})
		return
	}

	url, err := ic.itemService.PresignDownload(c.Request.Context(), ownerUUID, item.ID(itemID))
	if err != nil {
		ic.respondItemError(c, err, "PresignDownload() error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"download_url": url})
}

func (ic *ItemController) GetStorageHandler(c *gin.Context) {
	ok, ownerUUID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
		return
	}

	reconcile := c.Query("reconcile") == "1"

	sum, err := ic.itemService.StorageSummary(c.Request.Context(), ownerUUID, reconcile)
	if err != nil {
		ic.respondItemError(c, err, "StorageSummary() error")
		return
	}

	c.JSON(http.StatusOK, itemDTO.ToResponseStorageSummary(sum))
}

func (ic *ItemController) respondItemError(c *gin.Context, err error, logMsg string) {
	var pathErr *item.PathNotFoundError

	switch {
	case errors.As(err, &pathErr):
		c.JSON(http.StatusNotFound, gin.H{
			"error":          "folder path not found",
			"missing_prefix": pathErr.Error(),
		})
	case errors.Is(err, item.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
	case errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "item operation failed"},
		)
		ic.logger.Error(logMsg, zap.Error(err))
	}
}
