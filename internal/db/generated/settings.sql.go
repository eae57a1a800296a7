// Bindings for queries/settings.sql.

package dbgen

import (
	"context"
	"database/sql"
)

const getSystemSettings = `-- name: GetSystemSettings :one
SELECT id, organization_name, logo_file_id, accent_color, updated_at FROM system_settings
WHERE id = 1
`

func (q *Queries) GetSystemSettings(ctx context.Context) (SystemSetting, error) {
	row := q.db.QueryRowContext(ctx, getSystemSettings)
	var i SystemSetting
	err := row.Scan(
		&i.ID,
		&i.OrganizationName,
		&i.LogoFileID,
		&i.AccentColor,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertSystemSettings = `-- name: UpsertSystemSettings :one
INSERT INTO system_settings (id, organization_name, logo_file_id, accent_color)
VALUES (1, ?, ?, ?)
ON CONFLICT (id) DO UPDATE
SET organization_name = excluded.organization_name,
    logo_file_id = excluded.logo_file_id,
    accent_color = excluded.accent_color,
    updated_at = CURRENT_TIMESTAMP
RETURNING id, organization_name, logo_file_id, accent_color, updated_at
`

type UpsertSystemSettingsParams struct {
	OrganizationName string         `json:"organization_name"`
	LogoFileID       sql.NullString `json:"logo_file_id"`
	AccentColor      string         `json:"accent_color"`
}

func (q *Queries) UpsertSystemSettings(ctx context.Context, arg UpsertSystemSettingsParams) (SystemSetting, error) {
	row := q.db.QueryRowContext(ctx, upsertSystemSettings, arg.OrganizationName, arg.LogoFileID, arg.AccentColor)
	var i SystemSetting
	err := row.Scan(
		&i.ID,
		&i.OrganizationName,
		&i.LogoFileID,
		&i.AccentColor,
		&i.UpdatedAt,
	)
	return i, err
}
