// Package httpapi exposes the files manager over HTTP with JSON bodies.
// Sessions travel in the X-Token header.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// maxBodyBytes bounds JSON bodies, base64 payload included.
const maxBodyBytes = 64 << 20

type UserService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Connect(ctx context.Context, email, password string) (string, error)
	Disconnect(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (string, error)
	Me(ctx context.Context, token string) (*models.User, error)
}

type FileService interface {
	Upload(ctx context.Context, userID string, req services.UploadRequest) (*models.File, error)
	Get(ctx context.Context, userID, id string) (*models.File, error)
	List(ctx context.Context, userID, parentID string, page int) ([]*models.File, error)
	SetPublic(ctx context.Context, userID, id string, value bool) (*models.File, error)
	Content(ctx context.Context, requesterID, id string, size int) (*services.Content, error)
}

type StatusService interface {
	Status(ctx context.Context) services.Health
	Stats(ctx context.Context) (*services.Stats, error)
}

type Server struct {
	address string
	users   UserService
	files   FileService
	status  StatusService
	logger  logging.Logger
}

func NewServer(address string, us UserService, fs FileService, ss StatusService, l logging.Logger) *Server {
	return &Server{
		address: address,
		users:   us,
		files:   fs,
		status:  ss,
		logger:  l,
	}
}

// Handler returns the routed handler wrapped in recovery and access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /stats", s.handleStats)

	mux.HandleFunc("POST /users", s.handleRegister)
	mux.HandleFunc("GET /users/me", s.withSession(s.handleMe))
	mux.HandleFunc("GET /connect", s.handleConnect)
	mux.HandleFunc("GET /disconnect", s.handleDisconnect)

	mux.HandleFunc("POST /files", s.withSession(s.handleUpload))
	mux.HandleFunc("GET /files", s.withSession(s.handleList))
	mux.HandleFunc("GET /files/{id}", s.withSession(s.handleShow))
	mux.HandleFunc("PUT /files/{id}/publish", s.withSession(s.handlePublish(true)))
	mux.HandleFunc("PUT /files/{id}/unpublish", s.withSession(s.handlePublish(false)))
	mux.HandleFunc("GET /files/{id}/data", s.withOptionalSession(s.handleData))

	return s.withRecover(s.withRequestLog(mux))
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.logger.Warn(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
