package item

import (
	domain "filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
)

func fromDBModel(model *Item) *domain.Item {
	it := &domain.Item{
		ID:      domain.ID(model.ID),
		UUID:    model.UUID,
		OwnerID: user.ID(model.OwnerID),

		Name:      model.Name,
		Kind:      domain.Kind(model.Kind),
		SizeBytes: model.SizeBytes,
		BlobKey:   model.BlobKey,
		MimeType:  model.MimeType,

		IsPublic:  model.IsPublic,
		IsDeleted: model.IsDeleted,

		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.ParentID != nil {
		pid := domain.ID(*model.ParentID)
		it.ParentID = &pid
	}

	return it
}

func fromDBModels(models *Items) domain.Items {
	its := make(domain.Items, len(*models))
	for idx, m := range *models {
		its[idx] = fromDBModel(m)
	}

	return its
}

func parentArg(parentID *domain.ID) *uint64 {
	if parentID == nil {
		return nil
	}
	v := uint64(*parentID)
	return &v
}

func idsArg(ids []domain.ID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
