package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
)

// Health reports backend reachability.
type Health struct {
	DB      bool `json:"db"`
	Storage bool `json:"storage"`
}

// Stats are catalog wide counters.
type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

type StatusService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	store        storage.ContentStore
	storeTimeout time.Duration
}

func NewStatusService(db *sql.DB, m repomanager.RepositoryManager, store storage.ContentStore, storeTimeout time.Duration) *StatusService {
	return &StatusService{db: db, repomanager: m, store: store, storeTimeout: storeTimeout}
}

// Status never fails; an unreachable backend is reported as false.
func (s *StatusService) Status(ctx context.Context) Health {
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	return Health{
		DB:      s.db.PingContext(ctx) == nil,
		Storage: s.store.Ping(ctx) == nil,
	}
}

func (s *StatusService) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	users, err := s.repomanager.Users(s.db).Count(ctx)
	if err != nil {
		return nil, translate(err)
	}
	files, err := s.repomanager.Files(s.db).Count(ctx)
	if err != nil {
		return nil, translate(err)
	}

	return &Stats{Users: users, Files: files}, nil
}
