package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status.Status(r.Context()))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.status.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
		return
	}

	u, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{ID: u.ID, Email: u.Email})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Me(r.Context(), sessionToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: u.ID, Email: u.Email})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok || email == "" {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}

	token, err := s.users.Connect(r.Context(), email, password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, connectResponse{Token: token})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Disconnect(r.Context(), sessionToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
		return
	}

	f, err := s.files.Upload(r.Context(), userID(r.Context()), services.UploadRequest{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: string(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFileResponse(f))
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	f, err := s.files.Get(r.Context(), userID(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFileResponse(f))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	parentID := q.Get("parentId")
	if parentID == "" {
		parentID = common.RootParentID
	}
	page := atoiDefault(q.Get("page"), 0)

	items, err := s.files.List(r.Context(), userID(r.Context()), parentID, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toFileResponses(items))
}

func (s *Server) handlePublish(value bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := s.files.SetPublic(r.Context(), userID(r.Context()), r.PathValue("id"), value)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toFileResponse(f))
	}
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, common.NewValidationError("Invalid size"))
			return
		}
		size = n
	}

	c, err := s.files.Content(r.Context(), userID(r.Context()), r.PathValue("id"), size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", c.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(c.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.Data)
}
