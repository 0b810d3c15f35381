package httpapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type connectResponse struct {
	Token string `json:"token"`
}

// flexID accepts ids sent either as strings or as numbers (clients send 0
// for the root).
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type uploadRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID flexID `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

type fileResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID any    `json:"parentId"`
}

func toFileResponse(f *models.File) fileResponse {
	var parent any = f.ParentID
	// the root is reported as the number 0
	if f.ParentID == common.RootParentID || f.ParentID == "" {
		parent = 0
	}
	return fileResponse{
		ID:       f.ID,
		UserID:   f.UserID,
		Name:     f.Name,
		Type:     string(f.Type),
		IsPublic: f.IsPublic,
		ParentID: parent,
	}
}

func toFileResponses(items []*models.File) []fileResponse {
	out := make([]fileResponse, 0, len(items))
	for _, f := range items {
		out = append(out, toFileResponse(f))
	}
	return out
}

// atoiDefault parses s, returning def when s is empty or malformed.
func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
