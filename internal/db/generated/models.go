package dbgen

import (
	"database/sql"
	"time"
)

type Building struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Address     string        `json:"address"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	OpenHour    sql.NullInt64 `json:"open_hour"`
	CloseHour   sql.NullInt64 `json:"close_hour"`
	Timezone    string        `json:"timezone"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type BuildingPhoto struct {
	BuildingID int64  `json:"building_id"`
	FileID     string `json:"file_id"`
	Position   int64  `json:"position"`
}

type File struct {
	ID          string        `json:"id"`
	StorageKey  string        `json:"storage_key"`
	ContentType string        `json:"content_type"`
	SizeBytes   int64         `json:"size_bytes"`
	Width       sql.NullInt64 `json:"width"`
	Height      sql.NullInt64 `json:"height"`
	UploadedBy  sql.NullInt64 `json:"uploaded_by"`
	CreatedAt   time.Time     `json:"created_at"`
}

type Floor struct {
	ID          int64          `json:"id"`
	BuildingID  int64          `json:"building_id"`
	Level       int64          `json:"level"`
	MapFileID   sql.NullString `json:"map_file_id"`
	ImageWidth  int64          `json:"image_width"`
	ImageHeight int64          `json:"image_height"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Place struct {
	ID          int64          `json:"id"`
	FloorID     int64          `json:"floor_id"`
	Name        string         `json:"name"`
	Features    string         `json:"features"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Size        float64        `json:"size"`
	Rotation    float64        `json:"rotation"`
	PhotoFileID sql.NullString `json:"photo_file_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type SystemSetting struct {
	ID               int64          `json:"id"`
	OrganizationName string         `json:"organization_name"`
	LogoFileID       sql.NullString `json:"logo_file_id"`
	AccentColor      string         `json:"accent_color"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type User struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        sql.NullString `json:"phone"`
	PasswordHash string         `json:"password_hash"`
	Role         string         `json:"role"`
	TokenVersion int64          `json:"token_version"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type Visit struct {
	ID             int64        `json:"id"`
	PlaceID        int64        `json:"place_id"`
	UserID         int64        `json:"user_id"`
	StartTime      time.Time    `json:"start_time"`
	EndTime        time.Time    `json:"end_time"`
	Status         string       `json:"status"`
	Visited        bool         `json:"visited"`
	VisitedAt      sql.NullTime `json:"visited_at"`
	CheckinCode    string       `json:"checkin_code"`
	ReminderSentAt sql.NullTime `json:"reminder_sent_at"`
	CancelledAt    sql.NullTime `json:"cancelled_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
