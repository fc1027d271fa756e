package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	domainItem "filevault-api/internal/domain/item"
	domainUser "filevault-api/internal/domain/user"
	jwtSvc "filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/interface/api/rest/middleware"
)

type FakeItemService struct {
	ResolvePathFunc     func(ctx context.Context, ownerUUID domainUser.UUID, segments []string, createMissing bool) (*domainItem.PathResult, error)
	ListFolderFunc      func(ctx context.Context, ownerUUID domainUser.UUID, parentID *domainItem.ID, page int) (domainItem.Items, error)
	DeleteItemFunc      func(ctx context.Context, ownerUUID domainUser.UUID, itemID domainItem.ID) (*ports.DeletionResult, error)
	PresignDownloadFunc func(ctx context.Context, ownerUUID domainUser.UUID, itemID domainItem.ID) (string, error)
	StorageSummaryFunc  func(ctx context.Context, ownerUUID domainUser.UUID, reconcile bool) (*ports.StorageSummary, error)
}

func (f *FakeItemService) ResolvePath(ctx context.Context, ownerUUID domainUser.UUID, segments []string, createMissing bool) (*domainItem.PathResult, error) {
	if f.ResolvePathFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ResolvePathFunc(ctx, ownerUUID, segments, createMissing)
}
func (f *FakeItemService) ListFolder(ctx context.Context, ownerUUID domainUser.UUID, parentID *domainItem.ID, page int) (domainItem.Items, error) {
	if f.ListFolderFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ListFolderFunc(ctx, ownerUUID, parentID, page)
}
func (f *FakeItemService) DeleteItem(ctx context.Context, ownerUUID domainUser.UUID, itemID domainItem.ID) (*ports.DeletionResult, error) {
	if f.DeleteItemFunc == nil {
		return nil, errors.New("not used")
	}
	return f.DeleteItemFunc(ctx, ownerUUID, itemID)
}
func (f *FakeItemService) PresignDownload(ctx context.Context, ownerUUID domainUser.UUID, itemID domainItem.ID) (string, error) {
	if f.PresignDownloadFunc == nil {
		return "", errors.New("not used")
	}
	return f.PresignDownloadFunc(ctx, ownerUUID, itemID)
}
func (f *FakeItemService) StorageSummary(ctx context.Context, ownerUUID domainUser.UUID, reconcile bool) (*ports.StorageSummary, error) {
	if f.StorageSummaryFunc == nil {
		return nil, errors.New("not used")
	}
	return f.StorageSummaryFunc(ctx, ownerUUID, reconcile)
}

func setupRouterIC(t *testing.T, is ports.ItemService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	ic := &ItemController{
		itemService: is,
		logger:      zap.NewNop(),
	}

	auth := middleware.AuthMiddleware(jwtSvc.New(testSecret))
	r.POST(RouteFolders, auth, ic.CreateFoldersHandler)
	r.GET(RouteFolderResolve, auth, ic.ResolveFolderHandler)
	r.GET(RouteItems, auth, ic.GetItemsHandler)
	r.DELETE(RouteItem, auth, ic.DeleteItemHandler)
	r.GET(RouteItemDownload, auth, ic.DownloadItemHandler)
	r.GET(RouteStorage, auth, ic.GetStorageHandler)

	return r
}

func TestItemController_CreateFoldersHandler(t *testing.T) {
	okID := uuid.New()

	tests := []struct {
		name       string
		userID     string
		body       any
		mockIS     func() ports.ItemService
		wantStatus int
		wantErr    string
	}{
		{
			name:       "400 invalid uuid",
			userID:     "not-uuid",
			body:       map[string]any{"path": "a/b"},
			mockIS:     func() ports.ItemService { return &FakeItemService{} },
			wantStatus: http.StatusBadRequest,
			wantErr:    "user_id must be a valid UUID",
		},
		{
			name:       "400 invalid json",
			userID:     okID.String(),
			body:       "{bad",
			mockIS:     func() ports.ItemService { return &FakeItemService{} },
			wantStatus: http.StatusBadRequest,
			wantErr:    "invalid json",
		},
		{
			name:   "201 success",
			userID: okID.String(),
			body:   map[string]any{"path": "photos/2024"},
			mockIS: func() ports.ItemService {
				return &FakeItemService{
					ResolvePathFunc: func(ctx context.Context, ownerUUID domainUser.UUID, segments []string, createMissing bool) (*domainItem.PathResult, error) {
						assert.True(t, createMissing)
						assert.Equal(t, []string{"photos", "2024"}, segments)
						id := domainItem.ID(5)
						return &domainItem.PathResult{FolderID: &id, FolderName: "2024", CreatedIDs: []domainItem.ID{4, 5}}, nil
					},
				}
			},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouterIC(t, tt.mockIS())
			rr := doReq(t, r, http.MethodPost, "/api/v1/users/"+tt.userID+"/folders", tt.body, authHeader(t, tt.userID))
			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantErr != "" {
				var resp map[string]any
				_ = json.Unmarshal(rr.Body.Bytes(), &resp)
				assert.Equal(t, tt.wantErr, resp["error"])
			}
			if tt.wantStatus == http.StatusCreated {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, float64(5), resp["folder_id"])
				assert.Equal(t, "2024", resp["folder_name"])
			}
		})
	}
}

func TestItemController_ResolveFolderHandler(t *testing.T) {
	okID := uuid.New()
	base := "/api/v1/users/" + okID.String() + "/folders/resolve"

	t.Run("404 strict miss reports prefix", func(t *testing.T) {
		r := setupRouterIC(t, &FakeItemService{
			ResolvePathFunc: func(ctx context.Context, ownerUUID domainUser.UUID, segments []string, createMissing bool) (*domainItem.PathResult, error) {
				assert.False(t, createMissing)
				return nil, &domainItem.PathNotFoundError{Prefix: []string{"a", "b"}}
			},
		})
		rr := doReq(t, r, http.MethodGet, base+"?path=a/b/c", nil, authHeader(t, okID.String()))
		require.Equal(t, http.StatusNotFound, rr.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "/a/b", resp["missing_prefix"])
	})

	t.Run("200 success", func(t *testing.T) {
		r := setupRouterIC(t, &FakeItemService{
			ResolvePathFunc: func(ctx context.Context, ownerUUID domainUser.UUID, segments []string, createMissing bool) (*domainItem.PathResult, error) {
				id := domainItem.ID(9)
				return &domainItem.PathResult{FolderID: &id, FolderName: "c"}, nil
			},
		})
		rr := doReq(t, r, http.MethodGet, base+"?path=a/b/c", nil, authHeader(t, okID.String()))
		require.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestItemController_DeleteItemHandler(t *testing.T) {
	okID := uuid.New()
	base := "/api/v1/users/" + okID.String() + "/items/"

	tests := []struct {
		name       string
		itemID     string
		mockIS     func() ports.ItemService
		wantStatus int
		wantErr    string
	}{
		{
			name:       "400 bad item id",
			itemID:     "abc",
			mockIS:     func() ports.ItemService { return &FakeItemService{} },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "404 not found",
			itemID: "42",
			mockIS: func() ports.ItemService {
				return &FakeItemService{
					DeleteItemFunc: func(ctx context.Context, ownerUUID domainUser.UUID, itemID domainItem.ID) (*ports.DeletionResult, error) {
						return nil, domainItem.ErrNotFound
					},
				}
			},
			wantStatus: http.StatusNotFound,
			wantErr:    "item not found",
		},
		{
			name:   "200 success with orphans",
			itemID: "42",
			mockIS: func() ports.ItemService {
				return &FakeItemService{
					DeleteItemFunc: func(ctx context.Context, ownerUUID domainUser.UUID, itemID domainItem.ID) (*ports.DeletionResult, error) {
						assert.Equal(t, domainItem.ID(42), itemID)
						return &ports.DeletionResult{
							BytesFreed:       1000,
							ItemsDeleted:     4,
							OrphanedBlobKeys: []string{"blob/b"},
						}, nil
					},
				}
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouterIC(t, tt.mockIS())
			rr := doReq(t, r, http.MethodDelete, base+tt.itemID, nil, authHeader(t, okID.String()))
			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantErr != "" {
				var resp map[string]any
				_ = json.Unmarshal(rr.Body.Bytes(), &resp)
				assert.Equal(t, tt.wantErr, resp["error"])
			}
			if tt.wantStatus == http.StatusOK {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, float64(1000), resp["bytes_freed"])
				assert.Equal(t, float64(4), resp["items_deleted"])
			}
		})
	}
}

func TestItemController_DownloadItemHandler(t *testing.T) {
	okID := uuid.New()
	base := "/api/v1/users/" + okID.String() + "/items/7/download"

	t.Run("404 folder has no download", func(t *testing.T) {
		r := setupRouterIC(t, &FakeItemService{
			PresignDownloadFunc: func(ctx context.Context, ownerUUID domainUser.UUID, itemID domainItem.ID) (string, error) {
				return "", domainItem.ErrNotFound
			},
		})
		rr := doReq(t, r, http.MethodGet, base, nil, authHeader(t, okID.String()))
		require.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("200 success", func(t *testing.T) {
		r := setupRouterIC(t, &FakeItemService{
			PresignDownloadFunc: func(ctx context.Context, ownerUUID domainUser.UUID, itemID domainItem.ID) (string, error) {
				return "https://blob.example/presigned/key", nil
			},
		})
		rr := doReq(t, r, http.MethodGet, base, nil, authHeader(t, okID.String()))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "https://blob.example/presigned/key", resp["download_url"])
	})
}

func TestItemController_GetStorageHandler(t *testing.T) {
	okID := uuid.New()
	base := "/api/v1/users/" + okID.String() + "/storage"

	t.Run("200 snapshot", func(t *testing.T) {
		r := setupRouterIC(t, &FakeItemService{
			StorageSummaryFunc: func(ctx context.Context, ownerUUID domainUser.UUID, reconcile bool) (*ports.StorageSummary, error) {
				assert.False(t, reconcile)
				return &ports.StorageSummary{StorageUsed: 1000, StorageLimit: 5000, FileCount: 2}, nil
			},
		})
		rr := doReq(t, r, http.MethodGet, base, nil, authHeader(t, okID.String()))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, float64(1000), resp["storage_used"])
	})

	t.Run("200 reconcile on demand", func(t *testing.T) {
		r := setupRouterIC(t, &FakeItemService{
			StorageSummaryFunc: func(ctx context.Context, ownerUUID domainUser.UUID, reconcile bool) (*ports.StorageSummary, error) {
				assert.True(t, reconcile)
				return &ports.StorageSummary{StorageUsed: 900, StorageLimit: 5000, Reconciled: true}, nil
			},
		})
		rr := doReq(t, r, http.MethodGet, base+"?reconcile=1", nil, authHeader(t, okID.String()))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["reconciled"])
	})

	t.Run("404 unknown user", func(t *testing.T) {
		r := setupRouterIC(t, &FakeItemService{
			StorageSummaryFunc: func(ctx context.Context, ownerUUID domainUser.UUID, reconcile bool) (*ports.StorageSummary, error) {
				return nil, domainUser.ErrNotFound
			},
		})
		rr := doReq(t, r, http.MethodGet, base, nil, authHeader(t, okID.String()))
		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestItemController_GetItemsHandler(t *testing.T) {
	okID := uuid.New()
	base := "/api/v1/users/" + okID.String() + "/items"

	t.Run("400 bad parent_id", func(t *testing.T) {
		r := setupRouterIC(t, &FakeItemService{})
		rr := doReq(t, r, http.MethodGet, base+"?parent_id=abc", nil, authHeader(t, okID.String()))
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("200 root listing", func(t *testing.T) {
		r := setupRouterIC(t, &FakeItemService{
			ListFolderFunc: func(ctx context.Context, ownerUUID domainUser.UUID, parentID *domainItem.ID, page int) (domainItem.Items, error) {
				assert.Nil(t, parentID)
				return domainItem.Items{
					{ID: 1, UUID: uuid.New(), Name: "docs", Kind: domainItem.KindFolder},
					{ID: 2, UUID: uuid.New(), Name: "a.pdf", Kind: domainItem.KindFile, SizeBytes: 300},
				}, nil
			},
		})
		rr := doReq(t, r, http.MethodGet, base, nil, authHeader(t, okID.String()))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "folder", resp.Data[0]["kind"])
	})
}
