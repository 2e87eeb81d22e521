// Package models defines server-side data models persisted in the database.
package models

import "time"

// File describes a completed, addressable file. The bytes themselves live
// in object storage under ObjectKey; this row is the dedup record.
type File struct {
	ID int64
	// FileName is the original client-supplied name, kept for listing and
	// second-upload lookups.
	FileName string
	// FileSuffix is the file extension without the dot, stored redundantly.
	FileSuffix string
	// FileSize is the size of record in bytes. For merged chunk uploads
	// this is the sum of the uploaded part sizes, not the declared total.
	FileSize int64
	// ObjectKey is the backend-relative key the bytes are stored under.
	ObjectKey string
	// Identifier is the content fingerprint (MD5 of the file bytes) and
	// the dedup key. At most one non-deleted row exists per identifier.
	Identifier string
	// Deleted marks the row as soft-deleted.
	Deleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
