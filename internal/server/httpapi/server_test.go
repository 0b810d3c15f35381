package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	goodToken = "good-token"
	ownerID   = "owner-1"
)

type stubUsers struct {
	registerErr error
	connectErr  error
	disconnects []string
}

func (s *stubUsers) Register(_ context.Context, email, password string) (*models.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	if email == "" {
		return nil, common.NewValidationError("Missing email")
	}
	if password == "" {
		return nil, common.NewValidationError("Missing password")
	}
	return &models.User{ID: "new-id", Email: email}, nil
}

func (s *stubUsers) Connect(_ context.Context, email, password string) (string, error) {
	if s.connectErr != nil {
		return "", s.connectErr
	}
	if email == "bob@dylan.com" && password == "toto1234!" {
		return goodToken, nil
	}
	return "", common.ErrorUnauthorized
}

func (s *stubUsers) Disconnect(_ context.Context, token string) error {
	if token != goodToken {
		return common.ErrorUnauthorized
	}
	s.disconnects = append(s.disconnects, token)
	return nil
}

func (s *stubUsers) Authenticate(_ context.Context, token string) (string, error) {
	if token != goodToken {
		return "", common.ErrorUnauthorized
	}
	return ownerID, nil
}

func (s *stubUsers) Me(ctx context.Context, token string) (*models.User, error) {
	id, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Email: "bob@dylan.com"}, nil
}

type stubFiles struct {
	lastUpload  services.UploadRequest
	lastList    [3]string
	lastContent [2]string
	lastSize    int
	err         error
	panicOnGet  bool
}

func (s *stubFiles) Upload(_ context.Context, userID string, req services.UploadRequest) (*models.File, error) {
	s.lastUpload = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.File{ID: "f1", UserID: userID, Name: req.Name, Type: models.FileKind(req.Type), ParentID: req.ParentID, IsPublic: req.IsPublic}, nil
}

func (s *stubFiles) Get(_ context.Context, userID, id string) (*models.File, error) {
	if s.panicOnGet {
		panic("boom")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &models.File{ID: id, UserID: userID, Name: "Photos", Type: models.KindFolder, ParentID: common.RootParentID}, nil
}

func (s *stubFiles) List(_ context.Context, userID, parentID string, page int) ([]*models.File, error) {
	s.lastList = [3]string{userID, parentID, fmt.Sprint(page)}
	if s.err != nil {
		return nil, s.err
	}
	return []*models.File{}, nil
}

func (s *stubFiles) SetPublic(_ context.Context, userID, id string, value bool) (*models.File, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.File{ID: id, UserID: userID, Name: "cat.png", Type: models.KindImage, ParentID: "p1", IsPublic: value}, nil
}

func (s *stubFiles) Content(_ context.Context, requesterID, id string, size int) (*services.Content, error) {
	s.lastContent = [2]string{requesterID, id}
	s.lastSize = size
	if s.err != nil {
		return nil, s.err
	}
	return &services.Content{Data: []byte("Hello Webstack!"), ContentType: "text/plain; charset=utf-8"}, nil
}

type stubStatus struct {
	statsErr error
}

func (s *stubStatus) Status(context.Context) services.Health {
	return services.Health{DB: true, Storage: false}
}

func (s *stubStatus) Stats(context.Context) (*services.Stats, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	return &services.Stats{Users: 4, Files: 30}, nil
}

type harness struct {
	users  *stubUsers
	files  *stubFiles
	status *stubStatus
	h      http.Handler
}

func newHarness() *harness {
	h := &harness{users: &stubUsers{}, files: &stubFiles{}, status: &stubStatus{}}
	h.h = NewServer(":0", h.users, h.files, h.status, logging.Nop{}).Handler()
	return h
}

func (h *harness) do(method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range hdr {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.h.ServeHTTP(w, r)
	return w
}

func authed() map[string]string {
	return map[string]string{common.SessionTokenHeaderName: goodToken}
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), w.Body.String())
	return e.Error
}

func TestStatusAndStats(t *testing.T) {
	h := newHarness()

	w := h.do("GET", "/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"db":true,"storage":false}`, w.Body.String())

	w = h.do("GET", "/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"users":4,"files":30}`, w.Body.String())

	h.status.statsErr = fmt.Errorf("%w: pq: relation missing", common.ErrorInternal)
	w = h.do("GET", "/stats", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", errorOf(t, w))
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestRegister(t *testing.T) {
	h := newHarness()

	w := h.do("POST", "/users", `{"email":"bob@dylan.com","password":"toto1234!"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"new-id","email":"bob@dylan.com"}`, w.Body.String())

	w = h.do("POST", "/users", `{"password":"x"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing email", errorOf(t, w))

	w = h.do("POST", "/users", `{"email":"bob@dylan.com"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing password", errorOf(t, w))

	w = h.do("POST", "/users", `not json`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	h.users.registerErr = common.ErrorConflict
	w = h.do("POST", "/users", `{"email":"bob@dylan.com","password":"x"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Already exist", errorOf(t, w))
}

func TestConnectDisconnect(t *testing.T) {
	h := newHarness()

	r := httptest.NewRequest("GET", "/connect", nil)
	r.SetBasicAuth("bob@dylan.com", "toto1234!")
	w := httptest.NewRecorder()
	h.h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"good-token"}`, w.Body.String())

	r = httptest.NewRequest("GET", "/connect", nil)
	r.SetBasicAuth("bob@dylan.com", "nope")
	w = httptest.NewRecorder()
	h.h.ServeHTTP(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", errorOf(t, w))

	w = h.do("GET", "/connect", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do("GET", "/disconnect", "", authed())
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, []string{goodToken}, h.users.disconnects)

	w = h.do("GET", "/disconnect", "", map[string]string{common.SessionTokenHeaderName: "random"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do("GET", "/disconnect", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	h := newHarness()

	w := h.do("GET", "/users/me", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"owner-1","email":"bob@dylan.com"}`, w.Body.String())

	w = h.do("GET", "/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpload(t *testing.T) {
	h := newHarness()

	w := h.do("POST", "/files", `{"name":"Photos","type":"folder","parentId":0}`, authed())
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"f1","userId":"owner-1","name":"Photos","type":"folder","isPublic":false,"parentId":0}`, w.Body.String())
	assert.Equal(t, "0", h.files.lastUpload.ParentID)

	w = h.do("POST", "/files", `{"name":"cat.png","type":"image","parentId":"p1","isPublic":true,"data":"aGk="}`, authed())
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "p1", h.files.lastUpload.ParentID)
	assert.Equal(t, "aGk=", h.files.lastUpload.Data)
	assert.True(t, h.files.lastUpload.IsPublic)

	w = h.do("POST", "/files", `{"name":"x"}`, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	h.files.err = common.NewValidationError("Parent is not a folder")
	w = h.do("POST", "/files", `{"name":"x","type":"folder","parentId":"f2"}`, authed())
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Parent is not a folder", errorOf(t, w))
}

func TestShowAndList(t *testing.T) {
	h := newHarness()

	w := h.do("GET", "/files/abc", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"abc"`)

	w = h.do("GET", "/files?parentId=p9&page=2", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
	assert.Equal(t, [3]string{ownerID, "p9", "2"}, h.files.lastList)

	w = h.do("GET", "/files?page=abc", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [3]string{ownerID, common.RootParentID, "0"}, h.files.lastList)

	h.files.err = common.ErrorNotFound
	w = h.do("GET", "/files/abc", "", authed())
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", errorOf(t, w))
}

func TestPublishUnpublish(t *testing.T) {
	h := newHarness()

	w := h.do("PUT", "/files/i1/publish", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isPublic":true`)
	assert.Contains(t, w.Body.String(), `"parentId":"p1"`)

	w = h.do("PUT", "/files/i1/unpublish", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isPublic":false`)

	w = h.do("PUT", "/files/i1/publish", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestData(t *testing.T) {
	h := newHarness()

	w := h.do("GET", "/files/i1/data", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello Webstack!", w.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, [2]string{"", "i1"}, h.files.lastContent)

	w = h.do("GET", "/files/i1/data?size=250", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]string{ownerID, "i1"}, h.files.lastContent)
	assert.Equal(t, 250, h.files.lastSize)

	// unknown tokens read as anonymous
	w = h.do("GET", "/files/i1/data", "", map[string]string{common.SessionTokenHeaderName: "stale"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]string{"", "i1"}, h.files.lastContent)

	w = h.do("GET", "/files/i1/data?size=big", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid size", errorOf(t, w))

	h.files.err = common.NewInvalidOperationError("A folder doesn't have content")
	w = h.do("GET", "/files/f1/data", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A folder doesn't have content", errorOf(t, w))

	h.files.err = common.ErrorNotFound
	w = h.do("GET", "/files/f1/data", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnavailableAndPanics(t *testing.T) {
	h := newHarness()

	h.files.err = fmt.Errorf("%w: context deadline exceeded", common.ErrorUnavailable)
	w := h.do("GET", "/files/i1/data", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	h.files.err = nil
	h.files.panicOnGet = true
	w = h.do("GET", "/files/abc", "", authed())
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", errorOf(t, w))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{common.ErrorUnauthorized, 401, "Unauthorized"},
		{common.ErrorNotFound, 404, "Not found"},
		{common.ErrorConflict, 400, "Already exist"},
		{common.NewValidationError("Missing name"), 400, "Missing name"},
		{common.ErrorValidation, 400, "Bad request"},
		{common.ErrorUnavailable, 503, "Service Unavailable"},
		{errors.New("disk on fire"), 500, "Internal Server Error"},
	}

	for _, tt := range tests {
		code, msg := statusFor(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.msg, msg, tt.err.Error())
	}
}

func TestFlexID(t *testing.T) {
	var req uploadRequest

	require.NoError(t, json.Unmarshal([]byte(`{"parentId":0}`), &req))
	assert.Equal(t, flexID("0"), req.ParentID)

	require.NoError(t, json.Unmarshal([]byte(`{"parentId":"5f1e"}`), &req))
	assert.Equal(t, flexID("5f1e"), req.ParentID)

	require.NoError(t, json.Unmarshal([]byte(`{"parentId":null}`), &req))
	assert.Equal(t, flexID(""), req.ParentID)

	require.Error(t, json.Unmarshal([]byte(`{"parentId":{}}`), &req))
}

func TestRequestLog_KeepsCallerAttrs(t *testing.T) {
	var buf strings.Builder
	l, err := logging.New(logging.Options{Level: "info", JSON: true, Writer: &buf})
	require.NoError(t, err)

	s := NewServer(":0", &stubUsers{}, &stubFiles{}, &stubStatus{}, l.With("module", "http"))
	r := httptest.NewRequest("GET", "/status", nil)
	s.Handler().ServeHTTP(httptest.NewRecorder(), r)

	out := strings.TrimSpace(buf.String())
	require.NotEmpty(t, out)
	for _, line := range strings.Split(out, "\n") {
		assert.Equal(t, 1, strings.Count(line, `"module"`), line)
		assert.Contains(t, line, `"module":"http"`)
	}
}
