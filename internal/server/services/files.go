package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/auth"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
)

const defaultContentType = "application/octet-stream"

// UploadRequest describes a new catalog record. Data is base64 encoded and
// ignored for folders.
type UploadRequest struct {
	Name     string
	Type     string
	ParentID string
	IsPublic bool
	Data     string
}

// Content is a blob ready to be served.
type Content struct {
	Data        []byte
	ContentType string
}

// FileService manages the catalog and the bytes behind it.
type FileService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	store          storage.ContentStore
	thumbnailSizes []int
	storeTimeout   time.Duration
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store storage.ContentStore, cfg *config.Config) *FileService {
	return &FileService{
		db:             db,
		repomanager:    m,
		store:          store,
		thumbnailSizes: slices.Clone(cfg.ThumbnailSizes),
		storeTimeout:   cfg.StoreTimeout,
	}
}

func validateUpload(req UploadRequest) (models.FileKind, []byte, error) {
	if req.Name == "" {
		return "", nil, common.NewValidationError("Missing name")
	}

	kind := models.FileKind(req.Type)
	if !kind.Valid() {
		return "", nil, common.NewValidationError("Missing type")
	}
	if kind == models.KindFolder {
		return kind, nil, nil
	}

	if req.Data == "" {
		return "", nil, common.NewValidationError("Missing data")
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return "", nil, common.NewValidationError("Invalid data")
	}

	return kind, data, nil
}

func (s *FileService) checkParent(ctx context.Context, userID, parentID string) error {
	if parentID == "" || parentID == common.RootParentID {
		return nil
	}

	parent, err := s.repomanager.Files(s.db).Get(ctx, parentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewValidationError("Parent not found")
		}
		return translate(err)
	}

	// someone else's folder is indistinguishable from a missing one
	if !auth.CanWrite(userID, parent) {
		return common.NewValidationError("Parent not found")
	}
	if !parent.IsFolder() {
		return common.NewValidationError("Parent is not a folder")
	}

	return nil
}

// Upload validates req, stores the bytes of non-folders and records the
// entry. Images also get a thumbnail job, committed together with the record.
func (s *FileService) Upload(ctx context.Context, userID string, req UploadRequest) (*models.File, error) {
	kind, data, err := validateUpload(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	if err := s.checkParent(ctx, userID, req.ParentID); err != nil {
		return nil, err
	}

	f := &models.File{
		UserID:   userID,
		Name:     req.Name,
		Type:     kind,
		ParentID: req.ParentID,
		IsPublic: req.IsPublic,
	}

	if kind != models.KindFolder {
		ref, err := s.store.Put(ctx, data)
		if err != nil {
			return nil, translate(err)
		}
		f.StorageRef = ref
	}

	if kind != models.KindImage {
		created, err := s.repomanager.Files(s.db).Create(ctx, f)
		if err != nil {
			return nil, translate(err)
		}
		return created, nil
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Files(tx).Create(ctx, f); err != nil {
			return err
		}
		_, err := s.repomanager.Jobs(tx).Enqueue(ctx, &models.ThumbnailJob{
			UserID: userID,
			FileID: f.ID,
			Sizes:  slices.Clone(s.thumbnailSizes),
		})
		return err
	})
	if err != nil {
		return nil, translate(err)
	}

	return f, nil
}

// Get returns a record owned by userID. Records of other users are reported
// as missing.
func (s *FileService) Get(ctx context.Context, userID, id string) (*models.File, error) {
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	f, err := s.repomanager.Files(s.db).GetOwned(ctx, id, userID)
	if err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// List returns one page of userID's records under parentID.
func (s *FileService) List(ctx context.Context, userID, parentID string, page int) ([]*models.File, error) {
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	items, err := s.repomanager.Files(s.db).ListChildren(ctx, userID, parentID, page)
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}

// SetPublic changes the visibility of a record owned by userID and returns it
// updated.
func (s *FileService) SetPublic(ctx context.Context, userID, id string, value bool) (*models.File, error) {
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	f, err := s.repomanager.Files(s.db).SetPublic(ctx, id, userID, value)
	if err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// Content returns the bytes of a record, or of its thumbnail when size is
// non-zero. requesterID is empty for anonymous callers. Records the caller may
// not read are reported as missing.
func (s *FileService) Content(ctx context.Context, requesterID, id string, size int) (*Content, error) {
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	f, err := s.repomanager.Files(s.db).Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !auth.CanRead(requesterID, f) {
		return nil, common.ErrorNotFound
	}
	if f.IsFolder() {
		return nil, common.NewInvalidOperationError("A folder doesn't have content")
	}

	ref := f.StorageRef
	if size != 0 {
		if !slices.Contains(s.thumbnailSizes, size) {
			return nil, common.NewValidationError("Invalid size")
		}
		ref = storage.DerivedRef(ref, strconv.Itoa(size))
	}

	data, err := s.store.Get(ctx, ref)
	if err != nil {
		return nil, translate(err)
	}

	return &Content{Data: data, ContentType: contentType(f.Name, size, data)}, nil
}

// contentType is taken from the name of the record. Thumbnails may be
// re-encoded, so their type is sniffed instead.
func contentType(name string, size int, data []byte) string {
	if size != 0 {
		return http.DetectContentType(data)
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return defaultContentType
}
