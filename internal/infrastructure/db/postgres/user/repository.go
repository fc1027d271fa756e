package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domain "filevault-api/internal/domain/user"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db DB
}

func NewRepository(db DB) domain.Repository {
	return &Repository{db: db}
}

func (r *Repository) FetchUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := new(User)
	err := r.db.QueryRow(ctx, SelectUserByEmail, email).Scan(
		&u.ID,
		&u.UUID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,

		&u.StorageUsed,
		&u.StorageLimit,

		&u.CreatedAt,
		&u.UpdatedAt,
		&u.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), nil
}

func (r *Repository) FetchInternalID(ctx context.Context, uuid domain.UUID) (domain.ID, error) {
	var id uint64
	err := r.db.QueryRow(ctx, SelectIdByUUID, uuid.String()).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}

	return domain.ID(id), nil
}

func (r *Repository) FetchStorage(ctx context.Context, id domain.ID) (*domain.Storage, error) {
	st := new(domain.Storage)
	err := r.db.QueryRow(ctx, SelectStorage, uint64(id)).Scan(&st.StorageUsed, &st.StorageLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return st, nil
}

func (r *Repository) UpdateStorageUsed(ctx context.Context, id domain.ID, value uint64) error {
	_, err := r.db.Exec(ctx, UpdateStorage, uint64(id), value)
	return err
}

func (r *Repository) AddStorageUsed(ctx context.Context, id domain.ID, delta int64) error {
	_, err := r.db.Exec(ctx, ShiftStorage, uint64(id), delta)
	return err
}
