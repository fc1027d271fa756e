package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	ID   uint64
	UUID = uuid.UUID
	User struct {
		UUID         UUID
		Email        string
		PasswordHash *string
		Role         string

		StorageUsed  uint64
		StorageLimit uint64

		CreatedAt time.Time
		UpdatedAt time.Time

		DeletedAt *time.Time
	}
	Users []*User

	// Storage is the per-user quota ledger snapshot.
	Storage struct {
		StorageUsed  uint64
		StorageLimit uint64
	}
)

func (s Storage) Available() uint64 {
	if s.StorageUsed >= s.StorageLimit {
		return 0
	}
	return s.StorageLimit - s.StorageUsed
}
