package item

import (
	"time"

	"github.com/google/uuid"
)

type (
	Item struct {
		ID      uint64
		UUID    uuid.UUID
		OwnerID uint64

		ParentID  *uint64
		Name      string
		Kind      string
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
