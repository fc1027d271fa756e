package item

import (
	"filevault-api/internal/application/ports"
	domain "filevault-api/internal/domain/item"
)

func ToResponseItem(iDomain domain.Item) Item {
	var it = Item{
		ID:        uint64(iDomain.ID),
		UUID:      iDomain.UUID,
		ParentID:  idPtr(iDomain.ParentID),
		Name:      iDomain.Name,
		Kind:      string(iDomain.Kind),
		SizeBytes: iDomain.SizeBytes,
		MimeType:  iDomain.MimeType,
	}

	return it
}

func ToResponseItems(iDomain domain.Items) Items {
	its := make(Items, len(iDomain))
	for idx, i := range iDomain {
		its[idx] = ToResponseItem(*i)
	}

	return its
}

func ToResponsePathResult(pr *domain.PathResult) PathResult {
	res := PathResult{
		FolderID:   idPtr(pr.FolderID),
		FolderName: pr.FolderName,
		Path:       make([]PathEntry, len(pr.Path)),
	}
	for idx, e := range pr.Path {
		res.Path[idx] = PathEntry{ID: idPtr(e.ID), Name: e.Name}
	}
	for _, id := range pr.CreatedIDs {
		res.CreatedIDs = append(res.CreatedIDs, uint64(id))
	}

	return res
}

func ToResponseDeletionResult(dr *ports.DeletionResult) DeletionResult {
	return DeletionResult{
		BytesFreed:       dr.BytesFreed,
		ItemsDeleted:     dr.ItemsDeleted,
		OrphanedBlobKeys: dr.OrphanedBlobKeys,
	}
}

func ToResponseStorageSummary(ss *ports.StorageSummary) StorageSummary {
	return StorageSummary{
		StorageUsed:  ss.StorageUsed,
		StorageLimit: ss.StorageLimit,
		FileCount:    ss.FileCount,
		FolderCount:  ss.FolderCount,
		Reconciled:   ss.Reconciled,
	}
}

func idPtr(id *domain.ID) *uint64 {
	if id == nil {
		return nil
	}
	v := uint64(*id)
	return &v
}
