package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/content-share/pkg/contentshare"
	"github.com/tendant/content-share/pkg/contentshare/auth"
	"github.com/tendant/content-share/pkg/contentshare/objectstore"
	"github.com/tendant/content-share/pkg/contentshare/repo/memory"
	memorystorage "github.com/tendant/content-share/pkg/contentshare/storage/memory"
	"github.com/tendant/content-share/pkg/contentshare/urlstrategy"
)

type routerTest struct {
	router  chi.Router
	service contentshare.Service
	store   *memorystorage.Backend
	tokens  *auth.Manager
}

// setupRouterTest creates the full router with in-memory backends for testing
func setupRouterTest(t *testing.T, mutate ...func(*RouterConfig)) *routerTest {
	t.Helper()

	store := memorystorage.New()
	storage := objectstore.New("memory", store,
		objectstore.WithURLStrategy(urlstrategy.NewCDNStrategy("https://cdn.example.com")))

	service, err := contentshare.New(
		contentshare.WithRepository(memory.New()),
		contentshare.WithObjectStorage(storage),
	)
	require.NoError(t, err)

	tokens, err := auth.NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	cfg := RouterConfig{Auth: tokens}
	for _, m := range mutate {
		m(&cfg)
	}

	return &routerTest{
		router:  NewRouter(service, storage, cfg),
		service: service,
		store:   store,
		tokens:  tokens,
	}
}

func (rt *routerTest) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := rt.tokens.GenerateToken(auth.Identity{UserID: userID, Name: userID, Role: role})
	require.NoError(t, err)
	return token
}

func (rt *routerTest) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	rt.router.ServeHTTP(w, req)
	return w
}

func (rt *routerTest) seed(t *testing.T, title, tags, contentType string) *contentshare.Content {
	t.Helper()
	content, err := rt.service.CreateContent(context.Background(), contentshare.CreateContentRequest{
		Title: title,
		Tags:  tags,
		File: &contentshare.FileUpload{
			Name:        "file.bin",
			ContentType: contentType,
			Size:        4,
			Reader:      strings.NewReader("data"),
		},
	})
	require.NoError(t, err)
	return content
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func flashFrom(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name != flashCookieName || c.Value == "" {
			continue
		}
		data, err := base64.RawURLEncoding.DecodeString(c.Value)
		require.NoError(t, err)
		var messages map[string]string
		require.NoError(t, json.Unmarshal(data, &messages))
		return messages
	}
	return nil
}

func cookieFrom(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileName, contentType, body string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	rt := setupRouterTest(t)
	w := rt.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestDashboard_PaginationAndTitles(t *testing.T) {
	rt := setupRouterTest(t)
	for i := 0; i < 12; i++ {
		tags := "misc"
		if i%3 == 0 {
			tags = "music"
		}
		rt.seed(t, fmt.Sprintf("Clip %02d", i), tags, "video/mp4")
	}

	t.Run("latest by default", func(t *testing.T) {
		w := rt.do(httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp DashboardResponse
		decodeJSON(t, w, &resp)
		assert.Len(t, resp.Contents, 9)
		assert.Equal(t, 1, resp.CurrentPage)
		assert.Equal(t, 2, resp.TotalPages)
		assert.Equal(t, "latest", resp.Filter)
		assert.Equal(t, "Latest Content", resp.ActiveFilterTitle)
		assert.Empty(t, resp.LikedContentIDs)
		assert.False(t, resp.IsAdmin)

		first := resp.Contents[0]
		assert.True(t, strings.HasPrefix(first.MediaURL, "https://cdn.example.com/website-content/"))
		assert.Equal(t, first.MediaURL, first.ThumbnailURL, "cdn urls have no poster frames")
	})

	t.Run("second page", func(t *testing.T) {
		w := rt.do(httptest.NewRequest(http.MethodGet, "/dashboard?page=2", nil))
		var resp DashboardResponse
		decodeJSON(t, w, &resp)
		assert.Len(t, resp.Contents, 3)
		assert.Equal(t, 2, resp.CurrentPage)
	})

	t.Run("tag outranks keyword", func(t *testing.T) {
		w := rt.do(httptest.NewRequest(http.MethodGet, "/dashboard?tag=music&keyword=Clip", nil))
		var resp DashboardResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, "Tag: music", resp.ActiveFilterTitle)
		assert.Equal(t, int64(4), resp.TotalItems)
	})

	t.Run("keyword search", func(t *testing.T) {
		w := rt.do(httptest.NewRequest(http.MethodGet, "/dashboard?keyword=clip%2001", nil))
		var resp DashboardResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, "Search: clip 01", resp.ActiveFilterTitle)
		assert.Equal(t, int64(1), resp.TotalItems)
	})

	t.Run("best videos ignores tag", func(t *testing.T) {
		w := rt.do(httptest.NewRequest(http.MethodGet, "/dashboard?filter=best_videos&tag=music", nil))
		var resp DashboardResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, "Best Videos", resp.ActiveFilterTitle)
		assert.Equal(t, int64(12), resp.TotalItems)
	})

	t.Run("most viewed", func(t *testing.T) {
		w := rt.do(httptest.NewRequest(http.MethodGet, "/dashboard?filter=MOST_VIEWED", nil))
		var resp DashboardResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, "Most Viewed", resp.ActiveFilterTitle)
		assert.Equal(t, "most_viewed", resp.Filter)
	})

	t.Run("admin flag", func(t *testing.T) {
		req := withBearer(httptest.NewRequest(http.MethodGet, "/dashboard", nil), rt.token(t, "root", auth.RoleAdmin))
		var resp DashboardResponse
		decodeJSON(t, rt.do(req), &resp)
		assert.True(t, resp.IsAdmin)
	})
}

func TestViewContent(t *testing.T) {
	rt := setupRouterTest(t)
	content := rt.seed(t, "Photo", "", "image/png")

	t.Run("found", func(t *testing.T) {
		w := rt.do(httptest.NewRequest(http.MethodGet, "/view/"+content.ID.String(), nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp ContentDetailResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, "Photo", resp.Content.Title)
		assert.Equal(t, resp.Content.MediaURL, resp.FullMediaURL)
		assert.Equal(t, resp.Content.MediaURL, resp.Content.ThumbnailURL)
		assert.False(t, resp.IsLiked)
		assert.False(t, resp.IsAuthenticated)
	})

	for _, id := range []string{uuid.New().String(), "not-a-uuid"} {
		t.Run("missing "+id, func(t *testing.T) {
			w := rt.do(httptest.NewRequest(http.MethodGet, "/view/"+id, nil))
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/dashboard", w.Header().Get("Location"))
			assert.Equal(t, "Content not found!", flashFrom(t, w)["error"])
		})
	}
}

func TestFlashIsShownOnce(t *testing.T) {
	rt := setupRouterTest(t)

	w := rt.do(httptest.NewRequest(http.MethodGet, "/view/"+uuid.New().String(), nil))
	flash := cookieFrom(w, flashCookieName)
	require.NotNil(t, flash)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(flash)
	w = rt.do(req)

	var resp DashboardResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Content not found!", resp.Flash["error"])

	cleared := cookieFrom(w, flashCookieName)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestIncrementViews(t *testing.T) {
	rt := setupRouterTest(t)
	content := rt.seed(t, "Clip", "", "video/mp4")

	for i := 1; i <= 2; i++ {
		w := rt.do(httptest.NewRequest(http.MethodPost, "/view/increment/"+content.ID.String(), nil))
		require.Equal(t, http.StatusOK, w.Code)
		var resp ViewCountResponse
		decodeJSON(t, w, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(i), resp.NewViews)
	}

	w := rt.do(httptest.NewRequest(http.MethodPost, "/view/increment/"+uuid.New().String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "Content not found.", resp.Error)
}

func TestToggleLike_AnonymousVisitors(t *testing.T) {
	rt := setupRouterTest(t)
	content := rt.seed(t, "Clip", "", "video/mp4")
	path := "/like/" + content.ID.String()

	w := rt.do(httptest.NewRequest(http.MethodPost, path, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp LikeResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, LikeResponse{Success: true, NewLikes: 1, IsLiked: true}, resp)

	visitor := cookieFrom(w, visitorCookieName)
	require.NotNil(t, visitor)

	// Another browser likes independently
	w = rt.do(httptest.NewRequest(http.MethodPost, path, nil))
	decodeJSON(t, w, &resp)
	assert.Equal(t, int64(2), resp.NewLikes)

	// The first browser sees its like and can take it back
	req := httptest.NewRequest(http.MethodGet, "/view/"+content.ID.String(), nil)
	req.AddCookie(visitor)
	var detail ContentDetailResponse
	decodeJSON(t, rt.do(req), &detail)
	assert.True(t, detail.IsLiked)

	req = httptest.NewRequest(http.MethodPost, path, nil)
	req.AddCookie(visitor)
	decodeJSON(t, rt.do(req), &resp)
	assert.Equal(t, LikeResponse{Success: true, NewLikes: 1, IsLiked: false}, resp)

	w = rt.do(httptest.NewRequest(http.MethodPost, "/like/"+uuid.New().String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleLike_SignedInUser(t *testing.T) {
	rt := setupRouterTest(t)
	content := rt.seed(t, "Clip", "", "video/mp4")
	token := rt.token(t, "user-1", "USER")

	w := rt.do(withBearer(httptest.NewRequest(http.MethodPost, "/like/"+content.ID.String(), nil), token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, cookieFrom(w, visitorCookieName))

	var resp DashboardResponse
	decodeJSON(t, rt.do(withBearer(httptest.NewRequest(http.MethodGet, "/dashboard", nil), token)), &resp)
	assert.Equal(t, []string{content.ID.String()}, resp.LikedContentIDs)

	// The token is also accepted from the auth cookie
	req := httptest.NewRequest(http.MethodGet, "/view/"+content.ID.String(), nil)
	req.AddCookie(&http.Cookie{Name: DefaultAuthCookieName, Value: token})
	var detail ContentDetailResponse
	decodeJSON(t, rt.do(req), &detail)
	assert.True(t, detail.IsLiked)
	assert.True(t, detail.IsAuthenticated)
}

func TestAddComment(t *testing.T) {
	rt := setupRouterTest(t)
	content := rt.seed(t, "Talk", "", "video/mp4")
	path := "/comment/" + content.ID.String()

	form := func(text string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(url.Values{"comment": {text}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	t.Run("anonymous is refused", func(t *testing.T) {
		w := rt.do(form("hello"))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/view/"+content.ID.String(), w.Header().Get("Location"))
		assert.Equal(t, "You must be logged in to comment.", flashFrom(t, w)["commentError"])
	})

	t.Run("signed in", func(t *testing.T) {
		w := rt.do(withBearer(form("hello"), rt.token(t, "amy", "USER")))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "Comment posted successfully!", flashFrom(t, w)["commentSuccess"])

		var detail ContentDetailResponse
		decodeJSON(t, rt.do(httptest.NewRequest(http.MethodGet, "/view/"+content.ID.String(), nil)), &detail)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "amy", detail.Comments[0].AuthorName)
		assert.Equal(t, "hello", detail.Comments[0].Text)
	})

	t.Run("empty text", func(t *testing.T) {
		w := rt.do(withBearer(form("   "), rt.token(t, "amy", "USER")))
		assert.Equal(t, "Failed to post comment due to an error.", flashFrom(t, w)["commentError"])
	})

	t.Run("unknown content", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/comment/"+uuid.New().String(),
			strings.NewReader(url.Values{"comment": {"hi"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := rt.do(withBearer(req, rt.token(t, "amy", "USER")))
		assert.Equal(t, "Failed to find content.", flashFrom(t, w)["commentError"])
	})
}

func TestAbout(t *testing.T) {
	rt := setupRouterTest(t)
	var resp AboutResponse
	decodeJSON(t, rt.do(httptest.NewRequest(http.MethodGet, "/about", nil)), &resp)
	assert.Equal(t, "About", resp.Title)
}

func TestRateLimit(t *testing.T) {
	rt := setupRouterTest(t, func(c *RouterConfig) {
		c.RateLimitRPS = 0.001
		c.RateLimitBurst = 1
	})
	content := rt.seed(t, "Clip", "", "video/mp4")
	path := "/view/increment/" + content.ID.String()

	assert.Equal(t, http.StatusOK, rt.do(httptest.NewRequest(http.MethodPost, path, nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, rt.do(httptest.NewRequest(http.MethodPost, path, nil)).Code)

	// Page routes are not limited
	assert.Equal(t, http.StatusOK, rt.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil)).Code)
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return clock }
	rl.lastSweep = clock

	for i := 0; i < 50; i++ {
		rl.limiter(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 50, rl.Len())

	// one client stays active while the rest go idle
	clock = clock.Add(3 * time.Minute)
	rl.limiter("10.0.0.7")

	clock = clock.Add(3 * time.Minute)
	rl.limiter("10.0.0.99")
	assert.Equal(t, 2, rl.Len(), "only recently seen clients are kept")

	// a returning client starts with a fresh bucket
	assert.True(t, rl.limiter("10.0.0.1").Allow())
}
