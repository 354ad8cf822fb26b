package documents

import "time"

// DocumentID identifier type
type DocumentID string

// Document is an uploaded source file. Immutable after creation except for deletion.
type Document struct {
	ID         DocumentID `json:"id"`
	UserID     string     `json:"user_id"`
	Filename   string     `json:"filename"`    // original name, carries the format extension
	StorageKey string     `json:"storage_key"` // opaque locator resolved by a ByteStore
	CreatedAt  time.Time  `json:"created_at"`
}
