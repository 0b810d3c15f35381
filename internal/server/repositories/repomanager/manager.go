package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/jobs"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either a *sql.DB or a *sql.Tx,
// so services can compose several of them inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Files(db dbx.DBTX) files.Repository
	Jobs(db dbx.DBTX) jobs.Repository
}
