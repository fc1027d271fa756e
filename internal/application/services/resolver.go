package services

import (
	"context"
	"strings"

	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
)

// RootDisplayName is what an empty path resolves to at the true tree root.
const RootDisplayName = "Dashboard"

type (
	// ResolveOptions parameterize one path resolution. Memo, when non-nil, is
	// a prefix -> folder id cache shared across the calls of one upload batch
	// so repeated folder prefixes are neither re-queried nor re-created. It is
	// never persisted beyond the batch.
	ResolveOptions struct {
		CreateMissing bool
		RootParentID  *item.ID
		Memo          map[string]item.ID
	}

	PathResolver struct {
		itemRepository item.Repository
	}
)

func NewPathResolver(itemRepository item.Repository) *PathResolver {
	return &PathResolver{itemRepository: itemRepository}
}

// SplitPath turns a client-supplied relative path into folder segments,
// dropping empty ones ("a//b/" -> ["a" "b"]).
func SplitPath(relativePath string) []string {
	var segments []string
	for _, seg := range strings.Split(relativePath, "/") {
		if s := strings.TrimSpace(seg); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// Resolve walks segments from opts.RootParentID, descending into existing
// folders and, with CreateMissing, materializing absent ones. Creation relies
// on the repository's insert-or-fetch semantics, so two parallel resolutions
// of the same new path converge on one folder row.
func (pr *PathResolver) Resolve(ctx context.Context, ownerID user.ID, segments []string, opts ResolveOptions) (*item.PathResult, error) {
	res := &item.PathResult{
		FolderID:     opts.RootParentID,
		FolderName:   RootDisplayName,
		PathSegments: segments,
	}

	if opts.RootParentID != nil {
		root, err := pr.itemRepository.FetchByID(ctx, ownerID, *opts.RootParentID)
		if err != nil {
			return nil, err
		}
		res.FolderName = root.Name
	}

	if len(segments) == 0 {
		return res, nil
	}

	currentParent := opts.RootParentID
	for i, name := range segments {
		prefix := strings.Join(segments[:i+1], "/")

		if opts.Memo != nil {
			if id, ok := opts.Memo[prefix]; ok {
				id := id
				currentParent = &id
				res.FolderID = &id
				res.FolderName = name
				res.Path = append(res.Path, item.PathEntry{ID: &id, Name: name})
				continue
			}
		}

		found, err := pr.itemRepository.FindChild(ctx, ownerID, currentParent, name, item.KindFolder)
		if err != nil {
			return nil, err
		}

		if found == nil {
			if !opts.CreateMissing {
				return nil, &item.PathNotFoundError{Prefix: segments[:i+1]}
			}

			created, wasCreated, err := pr.itemRepository.Insert(ctx, &item.Item{
				OwnerID:  ownerID,
				ParentID: currentParent,
				Name:     name,
				Kind:     item.KindFolder,
			})
			if err != nil {
				return nil, err
			}
			if wasCreated {
				res.CreatedIDs = append(res.CreatedIDs, created.ID)
			}
			found = created
		}

		id := found.ID
		currentParent = &id
		res.FolderID = &id
		res.FolderName = found.Name
		res.Path = append(res.Path, item.PathEntry{ID: &id, Name: found.Name})

		if opts.Memo != nil {
			opts.Memo[prefix] = id
		}
	}

	return res, nil
}
