package item

import (
	"context"

	"filevault-api/internal/domain/user"
)

// Repository is the item tree store. Single operations are atomic on the
// storage side; cross-operation consistency is the caller's problem.
type Repository interface {
	// FindChild returns the non-deleted child of parentID (nil = root) with the
	// given name and kind, or nil when absent.
	FindChild(ctx context.Context, ownerID user.ID, parentID *ID, name string, kind Kind) (*Item, error)
	// Insert creates the item. When a concurrent insert wins the unique race on
	// (owner_id, parent_id, name) among live items, the existing row is fetched
	// and returned instead; the bool reports whether a row was actually created.
	Insert(ctx context.Context, req *Item) (*Item, bool, error)
	FetchByID(ctx context.Context, ownerID user.ID, id ID) (*Item, error)
	// ListChildren returns the non-deleted children of every parent in
	// parentIDs. Used as one BFS level of a subtree walk.
	ListChildren(ctx context.Context, ownerID user.ID, parentIDs []ID) (Items, error)
	ListFolderItems(ctx context.Context, ownerID user.ID, parentID *ID, page int) (Items, error)
	BulkDelete(ctx context.Context, ownerID user.ID, ids []ID) (int64, error)
	SumActualUsage(ctx context.Context, ownerID user.ID) (*UsageSummary, error)
}
