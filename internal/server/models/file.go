// Package models defines server-side data models persisted in the database.
package models

import "time"

// FileKind is the type of a catalog record.
type FileKind string

const (
	KindFolder FileKind = "folder"
	KindFile   FileKind = "file"
	KindImage  FileKind = "image"
)

// Valid reports whether k is one of the known kinds.
func (k FileKind) Valid() bool {
	switch k {
	case KindFolder, KindFile, KindImage:
		return true
	}
	return false
}

// File is a catalog record describing a folder or a stored file. The bytes
// themselves live in the content store under StorageRef.
type File struct {
	ID     string
	UserID string
	Name   string
	Type   FileKind
	// ParentID is common.RootParentID for top-level records.
	ParentID string
	IsPublic bool
	// StorageRef is empty for folders.
	StorageRef string
	// Seq is the insertion sequence used for stable listing order.
	Seq       int64
	CreatedAt time.Time
}

// IsFolder reports whether the record is a folder.
func (f *File) IsFolder() bool {
	return f.Type == KindFolder
}
