package dto

import "time"

// BulkDeleteRequest lists the ids to remove. Elements are left untyped so
// each one can be reported individually when it is not a positive integer.
type BulkDeleteRequest struct {
	IDs []any `json:"ids"`
}

type NotificationResponse struct {
	ID         int64     `json:"id"`
	Message    string    `json:"message"`
	Type       int       `json:"type"`
	TypeName   string    `json:"type_name"`
	ReadStatus int       `json:"read_status"`
	CreatedAt  time.Time `json:"created_at"`
}
