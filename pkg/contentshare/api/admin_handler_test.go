package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/content-share/pkg/contentshare"
	"github.com/tendant/content-share/pkg/contentshare/auth"
)

func TestAdmin_RequiresAdminRole(t *testing.T) {
	rt := setupRouterTest(t)

	w := rt.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), rt.token(t, "u", "USER")))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), "forged.token.value"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), rt.token(t, "root", auth.RoleAdmin)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmin_Dashboard(t *testing.T) {
	rt := setupRouterTest(t)
	admin := rt.token(t, "root", auth.RoleAdmin)
	for i := 0; i < 25; i++ {
		rt.seed(t, "Item", "", "image/png")
	}

	var resp AdminDashboardResponse
	decodeJSON(t, rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), admin)), &resp)
	assert.Len(t, resp.Contents, 20)
	assert.Equal(t, 20, resp.PageSize)
	assert.Equal(t, 2, resp.TotalPages)

	decodeJSON(t, rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/dashboard?page=2&size=10", nil), admin)), &resp)
	assert.Len(t, resp.Contents, 10)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.CurrentPage)
}

func TestAdmin_UploadForm(t *testing.T) {
	rt := setupRouterTest(t)
	var resp FormResponse
	decodeJSON(t, rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/upload", nil), rt.token(t, "root", auth.RoleAdmin))), &resp)
	assert.Equal(t, "/admin/upload", resp.Action)
	assert.Len(t, resp.Fields, 4)
}

func TestAdmin_Upload(t *testing.T) {
	rt := setupRouterTest(t)
	admin := rt.token(t, "root", auth.RoleAdmin)

	t.Run("video", func(t *testing.T) {
		req := multipartRequest(t, "/admin/upload",
			map[string]string{"title": "Launch", "description": "Rocket", "tags": "space"},
			"launch.mp4", "video/mp4", "frames")
		w := rt.do(withBearer(req, admin))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
		assert.Equal(t, "Content uploaded successfully!", flashFrom(t, w)["uploadSuccess"])
		assert.Equal(t, 1, rt.store.Len())

		var resp DashboardResponse
		decodeJSON(t, rt.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil)), &resp)
		require.Len(t, resp.Contents, 1)
		item := resp.Contents[0]
		assert.Equal(t, "Launch", item.Title)
		assert.Equal(t, "video", item.FileType)
		assert.True(t, strings.HasSuffix(item.FilePath, ".mp4"))
		assert.Equal(t, item.MediaURL, item.ThumbnailURL)
	})

	t.Run("empty file", func(t *testing.T) {
		req := multipartRequest(t, "/admin/upload", map[string]string{"title": "Nothing"}, "empty.mp4", "video/mp4", "")
		w := rt.do(withBearer(req, admin))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.True(t, strings.HasPrefix(flashFrom(t, w)["uploadError"], "File upload failed: "))
		assert.Equal(t, 1, rt.store.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		req := multipartRequest(t, "/admin/upload", map[string]string{"title": "Nothing"}, "", "", "")
		w := rt.do(withBearer(req, admin))
		assert.Contains(t, flashFrom(t, w)["uploadError"], "file is required")
	})

	t.Run("too large", func(t *testing.T) {
		small := setupRouterTest(t, func(c *RouterConfig) { c.MaxUploadBytes = 64 })
		req := multipartRequest(t, "/admin/upload", map[string]string{"title": "Big"}, "big.png", "image/png", strings.Repeat("x", 1024))
		w := small.do(withBearer(req, small.token(t, "root", auth.RoleAdmin)))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.True(t, strings.HasPrefix(flashFrom(t, w)["uploadError"], "File upload failed: "))
		assert.Equal(t, 0, small.store.Len())
	})
}

func TestAdmin_EditAndUpdate(t *testing.T) {
	rt := setupRouterTest(t)
	admin := rt.token(t, "root", auth.RoleAdmin)
	content := rt.seed(t, "Draft", "old", "image/png")

	t.Run("edit form", func(t *testing.T) {
		var resp FormResponse
		decodeJSON(t, rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/edit/"+content.ID.String(), nil), admin)), &resp)
		assert.Equal(t, "/admin/update", resp.Action)
		require.NotNil(t, resp.Content)
		assert.Equal(t, "Draft", resp.Content.Title)
	})

	t.Run("edit unknown", func(t *testing.T) {
		id := uuid.New().String()
		w := rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/edit/"+id, nil), admin))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "Content ID "+id+" not found for editing.", flashFrom(t, w)["uploadError"])
	})

	t.Run("metadata only", func(t *testing.T) {
		req := multipartRequest(t, "/admin/update",
			map[string]string{"id": content.ID.String(), "title": "Final", "tags": "new"}, "", "", "")
		w := rt.do(withBearer(req, admin))
		assert.Equal(t, "Content ID "+content.ID.String()+" updated successfully!", flashFrom(t, w)["uploadSuccess"])

		updated, err := rt.service.GetContent(req.Context(), content.ID)
		require.NoError(t, err)
		assert.Equal(t, "Final", updated.Title)
		assert.Equal(t, "new", updated.Tags)
		assert.Equal(t, content.FilePath, updated.FilePath)
	})

	t.Run("replace file", func(t *testing.T) {
		req := multipartRequest(t, "/admin/update",
			map[string]string{"id": content.ID.String(), "title": "Final"}, "clip.mp4", "video/mp4", "frames")
		w := rt.do(withBearer(req, admin))
		assert.NotEmpty(t, flashFrom(t, w)["uploadSuccess"])

		updated, err := rt.service.GetContent(req.Context(), content.ID)
		require.NoError(t, err)
		assert.Equal(t, contentshare.FileTypeVideo, updated.FileType)
		assert.NotEqual(t, content.FilePath, updated.FilePath)
		assert.Equal(t, 2, rt.store.Len())
	})

	t.Run("update unknown", func(t *testing.T) {
		req := multipartRequest(t, "/admin/update", map[string]string{"id": uuid.New().String(), "title": "x"}, "", "", "")
		w := rt.do(withBearer(req, admin))
		assert.Equal(t, "Update failed: Content not found.", flashFrom(t, w)["uploadError"])
	})
}

func TestAdmin_Delete(t *testing.T) {
	rt := setupRouterTest(t)
	admin := rt.token(t, "root", auth.RoleAdmin)
	content := rt.seed(t, "Doomed", "", "image/png")

	w := rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/delete/"+content.ID.String(), nil), admin))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "Content deleted successfully!", flashFrom(t, w)["uploadSuccess"])
	assert.Equal(t, 0, rt.store.Len())

	w = rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/delete/"+content.ID.String(), nil), admin))
	assert.Equal(t, "Content ID "+content.ID.String()+" not found.", flashFrom(t, w)["uploadError"])
}
