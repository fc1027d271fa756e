package user

const (
	SelectUserByEmail = `
		SELECT id, uuid, email, password_hash, role, storage_used, storage_limit, created_at, updated_at, deleted_at
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`
	SelectIdByUUID = `SELECT id FROM users WHERE uuid = $1::uuid AND deleted_at IS NULL`
	SelectStorage  = `
		SELECT storage_used, storage_limit
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`
	UpdateStorage = `
		UPDATE users
		SET storage_used = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	ShiftStorage = `
		UPDATE users
		SET storage_used = GREATEST(0, storage_used::bigint + $2), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
)
