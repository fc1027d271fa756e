package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault-api/internal/domain/item"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "a/b/c", []string{"a", "b", "c"}},
		{"doubled and trailing slashes", "a//b/", []string{"a", "b"}},
		{"leading slash", "/photos/2024", []string{"photos", "2024"}},
		{"empty", "", nil},
		{"only slashes", "///", nil},
		{"whitespace segments", "a/  /b", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitPath(tt.in))
		})
	}
}

func TestResolve_CreatesMissingFolders(t *testing.T) {
	repo := newMemItemRepo()
	pr := NewPathResolver(repo)

	res, err := pr.Resolve(context.Background(), 1, []string{"photos", "2024", "summer"}, ResolveOptions{CreateMissing: true})
	require.NoError(t, err)

	require.NotNil(t, res.FolderID)
	assert.Equal(t, "summer", res.FolderName)
	assert.Len(t, res.CreatedIDs, 3)
	assert.Len(t, res.Path, 3)
}

func TestResolve_SecondResolutionIsIdempotent(t *testing.T) {
	repo := newMemItemRepo()
	pr := NewPathResolver(repo)
	ctx := context.Background()

	first, err := pr.Resolve(ctx, 1, []string{"docs", "tax"}, ResolveOptions{CreateMissing: true})
	require.NoError(t, err)
	require.Len(t, first.CreatedIDs, 2)

	second, err := pr.Resolve(ctx, 1, []string{"docs", "tax"}, ResolveOptions{CreateMissing: true})
	require.NoError(t, err)

	assert.Equal(t, *first.FolderID, *second.FolderID)
	assert.Empty(t, second.CreatedIDs)
}

func TestResolve_StrictMissReportsPrefix(t *testing.T) {
	repo := newMemItemRepo()
	pr := NewPathResolver(repo)
	ctx := context.Background()

	_, err := pr.Resolve(ctx, 1, []string{"a"}, ResolveOptions{CreateMissing: true})
	require.NoError(t, err)

	_, err = pr.Resolve(ctx, 1, []string{"a", "b", "c"}, ResolveOptions{CreateMissing: false})

	var pnf *item.PathNotFoundError
	require.True(t, errors.As(err, &pnf))
	assert.Equal(t, []string{"a", "b"}, pnf.Prefix)
	assert.Equal(t, "path not found: /a/b", pnf.Error())
}

func TestResolve_EmptyPathIsRoot(t *testing.T) {
	repo := newMemItemRepo()
	pr := NewPathResolver(repo)

	res, err := pr.Resolve(context.Background(), 1, nil, ResolveOptions{CreateMissing: true})
	require.NoError(t, err)

	assert.Nil(t, res.FolderID)
	assert.Equal(t, RootDisplayName, res.FolderName)
	assert.Empty(t, res.CreatedIDs)
}

func TestResolve_MemoSkipsRepeatedPrefixLookups(t *testing.T) {
	repo := newMemItemRepo()
	pr := NewPathResolver(repo)
	ctx := context.Background()
	memo := make(map[string]item.ID)

	_, err := pr.Resolve(ctx, 1, []string{"a", "b"}, ResolveOptions{CreateMissing: true, Memo: memo})
	require.NoError(t, err)
	callsAfterFirst := repo.findCalls

	res, err := pr.Resolve(ctx, 1, []string{"a", "b", "c"}, ResolveOptions{CreateMissing: true, Memo: memo})
	require.NoError(t, err)

	// only "c" misses the memo
	assert.Equal(t, callsAfterFirst+1, repo.findCalls)
	assert.Len(t, res.CreatedIDs, 1)
}

func TestResolve_SameNameDifferentParents(t *testing.T) {
	repo := newMemItemRepo()
	pr := NewPathResolver(repo)
	ctx := context.Background()

	left, err := pr.Resolve(ctx, 1, []string{"a", "shared"}, ResolveOptions{CreateMissing: true})
	require.NoError(t, err)

	right, err := pr.Resolve(ctx, 1, []string{"b", "shared"}, ResolveOptions{CreateMissing: true})
	require.NoError(t, err)

	assert.NotEqual(t, *left.FolderID, *right.FolderID)
}

func TestResolve_ScopedUnderExistingParent(t *testing.T) {
	repo := newMemItemRepo()
	pr := NewPathResolver(repo)
	ctx := context.Background()

	base, err := pr.Resolve(ctx, 1, []string{"base"}, ResolveOptions{CreateMissing: true})
	require.NoError(t, err)

	nested, err := pr.Resolve(ctx, 1, []string{"inner"}, ResolveOptions{CreateMissing: true, RootParentID: base.FolderID})
	require.NoError(t, err)

	got, err := repo.FetchByID(ctx, 1, *nested.FolderID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, *base.FolderID, *got.ParentID)
}
