package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolder_CreateAndList(t *testing.T) {
	s := newStack(t)
	alice := s.user(t, "alice@example.com")

	docs := s.mkdir(t, alice, "Docs", nil)
	s.mkdir(t, alice, "2025", &docs.ID)

	t.Run("roots only", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodGet, "/api/folders", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Folders []struct {
				ID       string `json:"id"`
				Name     string `json:"name"`
				Children []any  `json:"children"`
			} `json:"folders"`
		}
		decode(t, rr, &body)
		require.Len(t, body.Folders, 1)
		assert.Equal(t, "Docs", body.Folders[0].Name)
		assert.Empty(t, body.Folders[0].Children)
	})

	t.Run("nested", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodGet, "/api/folders?nested=true", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Folders []struct {
				Name     string `json:"name"`
				Children []struct {
					Name string `json:"name"`
				} `json:"children"`
			} `json:"folders"`
		}
		decode(t, rr, &body)
		require.Len(t, body.Folders, 1)
		require.Len(t, body.Folders[0].Children, 1)
		assert.Equal(t, "2025", body.Folders[0].Children[0].Name)
	})

	t.Run("duplicate sibling", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodPost, "/api/folders", map[string]any{"name": "Docs"})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodPost, "/api/folders", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		rr := s.do(t, 0, http.MethodGet, "/api/folders", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestFolder_GetForeign(t *testing.T) {
	s := newStack(t)
	alice := s.user(t, "alice@example.com")
	bob := s.user(t, "bob@example.com")
	docs := s.mkdir(t, alice, "Docs", nil)

	rr := s.do(t, bob, http.MethodGet, "/api/folders/"+docs.ID, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, alice, http.MethodGet, "/api/folders/"+docs.ID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, alice, http.MethodGet, "/api/folders/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFolder_Update(t *testing.T) {
	s := newStack(t)
	alice := s.user(t, "alice@example.com")
	a := s.mkdir(t, alice, "A", nil)
	b := s.mkdir(t, alice, "B", &a.ID)

	t.Run("rename", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodPatch, "/api/folders/"+b.ID, map[string]any{"name": "Bee"})
		require.Equal(t, http.StatusOK, rr.Code)
		var f struct {
			Name     string  `json:"name"`
			ParentID *string `json:"parent_id"`
		}
		decode(t, rr, &f)
		assert.Equal(t, "Bee", f.Name)
		require.NotNil(t, f.ParentID)
		assert.Equal(t, a.ID, *f.ParentID)
	})

	t.Run("move into descendant", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodPatch, "/api/folders/"+a.ID, map[string]any{"parent_id": b.ID})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("self parent", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodPatch, "/api/folders/"+a.ID, map[string]any{"parent_id": a.ID})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("move to root", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodPatch, "/api/folders/"+b.ID, map[string]any{"parent_id": nil})
		require.Equal(t, http.StatusOK, rr.Code)
		var f struct {
			ParentID *string `json:"parent_id"`
		}
		decode(t, rr, &f)
		assert.Nil(t, f.ParentID)
	})

	t.Run("bad parent id", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodPatch, "/api/folders/"+b.ID, map[string]any{"parent_id": "nope"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestFolder_Delete(t *testing.T) {
	s := newStack(t)
	alice := s.user(t, "alice@example.com")
	docs := s.mkdir(t, alice, "Docs", nil)
	s.mkdir(t, alice, "Inner", &docs.ID)
	rr := s.upload(t, alice, docs.ID, part{name: "a.txt", ctype: "text/plain", data: []byte("hello")})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	t.Run("not empty", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodDelete, "/api/folders/"+docs.ID, nil)
		require.Equal(t, http.StatusConflict, rr.Code)
		var body struct {
			Folders int `json:"folders"`
			Files   int `json:"files"`
		}
		decode(t, rr, &body)
		assert.Equal(t, 1, body.Folders)
		assert.Equal(t, 1, body.Files)
	})

	t.Run("recursive", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodDelete, "/api/folders/"+docs.ID+"?recursive=true", nil)
		require.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, 0, s.blobs.Len())

		rr = s.do(t, alice, http.MethodGet, "/api/folders/"+docs.ID, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("already gone", func(t *testing.T) {
		rr := s.do(t, alice, http.MethodDelete, "/api/folders/"+docs.ID, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
