package user

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	FetchUserByEmail(ctx context.Context, email string) (*User, error)
	FetchInternalID(ctx context.Context, uuid UUID) (ID, error)
	FetchStorage(ctx context.Context, id ID) (*Storage, error)
	UpdateStorageUsed(ctx context.Context, id ID, value uint64) error
	// AddStorageUsed shifts the counter by delta atomically, clamping at zero
	// on the way down.
	AddStorageUsed(ctx context.Context, id ID, delta int64) error
}
