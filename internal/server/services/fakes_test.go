package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/auth"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/jobs"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/users"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var fastHash = auth.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

func testConfig() *config.Config {
	return &config.Config{
		SessionTTL:     time.Hour,
		StoreTimeout:   time.Second,
		ThumbnailSizes: []int{500, 250, 100},
	}
}

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
	err  error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, x := range f.byID {
		if x.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, x := range f.byID {
		if x.Email == email {
			cp := *x
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	x, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *x
	return &cp, nil
}

func (f *fakeUsers) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.byID)), nil
}

type fakeSessions struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (f *fakeSessions) Create(_ context.Context, userID string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.tokens[token] = userID
	f.mu.Unlock()
	return token, nil
}

func (f *fakeSessions) Resolve(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	uid, ok := f.tokens[token]
	if !ok {
		return "", common.ErrorNotFound
	}
	return uid, nil
}

func (f *fakeSessions) Invalidate(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeSessions) PurgeExpired(context.Context) (int64, error) { return 0, nil }

type fakeFiles struct {
	mu    sync.Mutex
	items []*models.File
	seq   int64
	err   error
}

func (f *fakeFiles) find(id string) *models.File {
	for _, x := range f.items {
		if x.ID == id {
			return x
		}
	}
	return nil
}

func (f *fakeFiles) Create(_ context.Context, rec *models.File) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if rec.ParentID == "" {
		rec.ParentID = common.RootParentID
	}
	f.seq++
	rec.ID = uuid.NewString()
	rec.Seq = f.seq
	rec.CreatedAt = time.Now()
	cp := *rec
	f.items = append(f.items, &cp)
	return rec, nil
}

func (f *fakeFiles) Get(_ context.Context, id string) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	x := f.find(id)
	if x == nil {
		return nil, common.ErrorNotFound
	}
	cp := *x
	return &cp, nil
}

func (f *fakeFiles) GetOwned(ctx context.Context, id, userID string) (*models.File, error) {
	x, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if x.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return x, nil
}

func (f *fakeFiles) ListChildren(_ context.Context, userID, parentID string, page int) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if parentID == "" {
		parentID = common.RootParentID
	}
	out := []*models.File{}
	if page < 0 {
		return out, nil
	}
	var matched []*models.File
	for _, x := range f.items {
		if x.UserID == userID && x.ParentID == parentID {
			matched = append(matched, x)
		}
	}
	for i := page * files.PageSize; i < len(matched) && i < (page+1)*files.PageSize; i++ {
		cp := *matched[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeFiles) SetPublic(_ context.Context, id, userID string, value bool) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	x := f.find(id)
	if x == nil || x.UserID != userID {
		return nil, common.ErrorNotFound
	}
	x.IsPublic = value
	cp := *x
	return &cp, nil
}

func (f *fakeFiles) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.items)), nil
}

type fakeJobs struct {
	mu    sync.Mutex
	items []*models.ThumbnailJob
	err   error
}

func (f *fakeJobs) Enqueue(_ context.Context, job *models.ThumbnailJob) (*models.ThumbnailJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	job.ID = int64(len(f.items) + 1)
	job.Status = models.JobQueued
	cp := *job
	f.items = append(f.items, &cp)
	return job, nil
}

func (f *fakeJobs) Claim(context.Context) (*models.ThumbnailJob, error) {
	return nil, common.ErrorNotFound
}
func (f *fakeJobs) Complete(context.Context, int64) error     { return nil }
func (f *fakeJobs) Fail(context.Context, int64, string) error { return nil }
func (f *fakeJobs) Get(context.Context, int64) (*models.ThumbnailJob, error) {
	return nil, common.ErrorNotFound
}

type fakeRepoManager struct {
	users    *fakeUsers
	sessions *fakeSessions
	files    *fakeFiles
	jobs     *fakeJobs
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    &fakeUsers{byID: map[string]*models.User{}},
		sessions: &fakeSessions{tokens: map[string]string{}},
		files:    &fakeFiles{},
		jobs:     &fakeJobs{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository       { return m.sessions }
func (m *fakeRepoManager) Files(dbx.DBTX) files.Repository             { return m.files }
func (m *fakeRepoManager) Jobs(dbx.DBTX) jobs.Repository               { return m.jobs }

// env bundles services sharing one fake catalog and an in-memory store.
type env struct {
	db     *sql.DB
	mock   sqlmock.Sqlmock
	rm     *fakeRepoManager
	store  *storage.FSStore
	users  *UserService
	files  *FileService
	status *StatusService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := storage.NewFSStore(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	cfg := testConfig()
	rm := newFakeRepoManager()

	us := NewUserService(db, rm, cfg)
	us.hashParams = fastHash

	return &env{
		db:     db,
		mock:   mock,
		rm:     rm,
		store:  store,
		users:  us,
		files:  NewFileService(db, rm, store, cfg),
		status: NewStatusService(db, rm, store, cfg.StoreTimeout),
	}
}

// blockingStore never answers before the context expires.
type blockingStore struct{}

func (blockingStore) Put(ctx context.Context, _ []byte) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingStore) Get(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) PutDerived(ctx context.Context, _, _ string, _ []byte) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingStore) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
