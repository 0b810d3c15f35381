package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/auth"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
)

// UserService registers accounts and manages their sessions.
type UserService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	sessionTTL   time.Duration
	storeTimeout time.Duration
	hashParams   auth.HashParams
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:           db,
		repomanager:  m,
		sessionTTL:   cfg.SessionTTL,
		storeTimeout: cfg.StoreTimeout,
		hashParams:   auth.DefaultHashParams,
	}
}

// Register creates an account. A taken email yields common.ErrorConflict.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, common.NewValidationError("Missing email")
	}
	if password == "" {
		return nil, common.NewValidationError("Missing password")
	}

	hash, err := auth.HashPassword(password, s.hashParams)
	if err != nil {
		return nil, translate(err)
	}

	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// Connect checks the credentials and opens a session, returning its token.
func (s *UserService) Connect(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", translate(err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", translate(err)
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	token, err := s.repomanager.Sessions(s.db).Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return "", translate(err)
	}
	return token, nil
}

// Disconnect ends the session. Unknown or expired tokens are unauthorized.
func (s *UserService) Disconnect(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrorUnauthorized
	}

	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	if err := s.repomanager.Sessions(s.db).Invalidate(ctx, token); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return translate(err)
	}
	return nil
}

// Authenticate resolves token to a user id.
func (s *UserService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthorized
	}

	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	userID, err := s.repomanager.Sessions(s.db).Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", translate(err)
	}
	return userID, nil
}

// Me returns the account behind token.
func (s *UserService) Me(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := bounded(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, translate(err)
	}
	return user, nil
}
