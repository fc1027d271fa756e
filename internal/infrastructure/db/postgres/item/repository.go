package item

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domain "filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/db/postgres"
)

// DB is the slice of pgxpool.Pool the repository needs. Narrow on purpose so
// tests can swap in a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db DB
}

func NewRepository(db DB) domain.Repository {
	return &Repository{db: db}
}

func scanItem(row pgx.Row) (*Item, error) {
	it := new(Item)
	err := row.Scan(
		&it.ID,
		&it.UUID,
		&it.OwnerID,

		&it.ParentID,
		&it.Name,
		&it.Kind,
		&it.SizeBytes,
		&it.BlobKey,
		&it.MimeType,

		&it.IsPublic,
		&it.IsDeleted,

		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return it, nil
}

func (r *Repository) FindChild(ctx context.Context, ownerID user.ID, parentID *domain.ID, name string, kind domain.Kind) (*domain.Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, SelectChild, uint64(ownerID), parentArg(parentID), name, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(it), nil
}

func (r *Repository) Insert(ctx context.Context, req *domain.Item) (*domain.Item, bool, error) {
	it, err := scanItem(r.db.QueryRow(
		ctx,
		InsertItem,
		uint64(req.OwnerID), parentArg(req.ParentID), req.Name, string(req.Kind),
		req.SizeBytes, req.BlobKey, req.MimeType, req.IsPublic,
	))
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			// a concurrent insert won the (owner_id, parent_id, name) race;
			// hand back the existing row
			existing, ferr := r.FindChild(ctx, req.OwnerID, req.ParentID, req.Name, req.Kind)
			if ferr != nil {
				return nil, false, ferr
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	return fromDBModel(it), true, nil
}

func (r *Repository) FetchByID(ctx context.Context, ownerID user.ID, id domain.ID) (*domain.Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, SelectByID, uint64(ownerID), uint64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return fromDBModel(it), nil
}

func (r *Repository) ListChildren(ctx context.Context, ownerID user.ID, parentIDs []domain.ID) (domain.Items, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, SelectChildren, uint64(ownerID), idsArg(parentIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectItems(rows)
}

func (r *Repository) ListFolderItems(ctx context.Context, ownerID user.ID, parentID *domain.ID, page int) (domain.Items, error) {
	rows, err := r.db.Query(ctx, SelectFolderItems, uint64(ownerID), parentArg(parentID), page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectItems(rows)
}

func collectItems(rows pgx.Rows) (domain.Items, error) {
	var its Items
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		its = append(its, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&its), nil
}

func (r *Repository) BulkDelete(ctx context.Context, ownerID user.ID, ids []domain.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.db.Exec(ctx, DeleteItems, uint64(ownerID), idsArg(ids))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *Repository) SumActualUsage(ctx context.Context, ownerID user.ID) (*domain.UsageSummary, error) {
	sum := new(domain.UsageSummary)
	err := r.db.QueryRow(ctx, SumUsage, uint64(ownerID)).Scan(
		&sum.Bytes,
		&sum.FileCount,
		&sum.FolderCount,
		&sum.TotalCount,
	)
	if err != nil {
		return nil, err
	}

	return sum, nil
}
