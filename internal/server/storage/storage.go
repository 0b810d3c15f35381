// Package storage is the content store: opaque byte blobs addressed by a
// storage reference, with derived blobs (thumbnails) stored next to them.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentStore persists file bytes. Implementations must be safe for
// concurrent use.
type ContentStore interface {
	// Put stores data under a freshly generated reference and returns it.
	// A reference is never reused.
	Put(ctx context.Context, data []byte) (string, error)
	// Get returns the bytes under ref, or common.ErrorNotFound.
	Get(ctx context.Context, ref string) ([]byte, error)
	// PutDerived stores data at DerivedRef(ref, suffix), replacing any
	// previous blob there, and returns that reference.
	PutDerived(ctx context.Context, ref, suffix string, data []byte) (string, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// newRef is a seam for tests.
var newRef = func(now time.Time) string {
	return fmt.Sprintf("files/%d/%d/%d/%v", now.Year(), now.Month(), now.Day(), uuid.New())
}

// DerivedRef is the reference of a blob derived from ref, e.g. "<ref>_250".
func DerivedRef(ref, suffix string) string {
	return ref + "_" + suffix
}

// validRef rejects references that could escape the store root.
func validRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "/") {
		return false
	}
	return path.Clean(ref) == ref && !strings.HasPrefix(ref, "..")
}
