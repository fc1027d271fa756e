package item

const itemColumns = `id, uuid, owner_id, parent_id, name, kind, size_bytes, blob_key, mime_type, is_public, is_deleted, created_at, updated_at`

const (
	SelectChild = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND name = $3 AND kind = $4 AND is_deleted = FALSE
	`
	InsertItem = `
		INSERT INTO items (owner_id, parent_id, name, kind, size_bytes, blob_key, mime_type, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + itemColumns + `
	`
	SelectByID = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`
	SelectChildren = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1 AND parent_id = ANY($2) AND is_deleted = FALSE
	`
	SelectFolderItems = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND is_deleted = FALSE
		ORDER BY kind DESC, name
		LIMIT 50 OFFSET ( ($3 - 1) * 50 )
	`
	DeleteItems = `
		DELETE FROM items
		WHERE owner_id = $1 AND id = ANY($2)
	`
	SumUsage = `
		SELECT
		  COALESCE(SUM(size_bytes) FILTER (WHERE kind = 'file'), 0),
		  COUNT(*) FILTER (WHERE kind = 'file'),
		  COUNT(*) FILTER (WHERE kind = 'folder'),
		  COUNT(*)
		FROM items
		WHERE owner_id = $1 AND is_deleted = FALSE
	`
)
