package auth

import "github.com/dmitrijs2005/filesmanager/internal/server/models"

// CanRead reports whether requesterID may read f. An empty requesterID is an
// anonymous caller, who can read public records only.
func CanRead(requesterID string, f *models.File) bool {
	if f == nil {
		return false
	}
	if f.IsPublic {
		return true
	}
	return requesterID != "" && requesterID == f.UserID
}

// CanWrite reports whether requesterID may modify f or add children to it.
// Only the owner can.
func CanWrite(requesterID string, f *models.File) bool {
	return f != nil && requesterID != "" && requesterID == f.UserID
}
