package item

import (
	"time"

	"github.com/google/uuid"

	"filevault-api/internal/domain/user"
)

type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

type (
	ID   uint64
	UUID = uuid.UUID
	Item struct {
		ID      ID
		UUID    UUID
		OwnerID user.ID
		// ParentID is nil for items that live directly under the user's root.
		ParentID *ID
		Name     string
		Kind     Kind

		// SizeBytes is always 0 for folders; folders are never charged against quota.
		SizeBytes uint64
		BlobKey   *string
		MimeType  string

		IsPublic  bool
		IsDeleted bool

		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Items []*Item
)

func (i *Item) IsFolder() bool { return i.Kind == KindFolder }

func (i *Item) IsFile() bool { return i.Kind == KindFile }

// ChargeableBytes is what the item contributes to the owner's storage usage.
func (i *Item) ChargeableBytes() uint64 {
	if i.Kind != KindFile {
		return 0
	}
	return i.SizeBytes
}

// PathEntry is one resolved step of a folder path.
type PathEntry struct {
	ID   *ID
	Name string
}

// PathResult is the outcome of resolving (or materializing) a folder path.
type PathResult struct {
	FolderID     *ID
	FolderName   string
	Path         []PathEntry
	PathSegments []string
	CreatedIDs   []ID
}

// UsageSummary is the exact state of a user's tree as stored.
type UsageSummary struct {
	Bytes       uint64
	FileCount   int64
	FolderCount int64
	TotalCount  int64
}
