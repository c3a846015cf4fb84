package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only audit record. Entries are never updated or
// deleted once written.
type Entry struct {
	ID        uuid.UUID      `json:"id"`
	UserID    *uuid.UUID     `json:"user_id,omitempty"`
	Action    string         `json:"action"`
	TableName string         `json:"table_name,omitempty"`
	RecordID  string         `json:"record_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Filters narrows List results. Zero values match everything.
type Filters struct {
	UserID    *uuid.UUID
	Action    string
	TableName string
	DateFrom  *time.Time
	DateTo    *time.Time
}
