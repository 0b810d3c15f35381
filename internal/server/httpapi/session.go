package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filesmanager/internal/common"
)

type ctxKey string

const userIDKey ctxKey = "userID"

func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func sessionToken(r *http.Request) string {
	return r.Header.Get(common.SessionTokenHeaderName)
}

// withSession rejects requests without a live session and stores the user id
// in the request context.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}

		id, err := s.users.Authenticate(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	}
}

// withOptionalSession resolves the session when one is presented. Unknown
// tokens are treated as anonymous.
func (s *Server) withOptionalSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next(w, r)
			return
		}

		id, err := s.users.Authenticate(r.Context(), token)
		if err != nil && !errors.Is(err, common.ErrorUnauthorized) {
			s.writeError(w, r, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	}
}
