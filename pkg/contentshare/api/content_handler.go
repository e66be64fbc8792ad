package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/content-share/pkg/contentshare"
	"github.com/tendant/content-share/pkg/contentshare/auth"
)

// Dashboard filter values accepted in the "filter" query parameter
const (
	FilterLatest     = "latest"
	FilterBestVideos = "best_videos"
	FilterMostViewed = "most_viewed"
)

// ContentHandler serves the public pages and interaction endpoints
type ContentHandler struct {
	service  contentshare.Service
	storage  contentshare.ObjectStorage
	pageSize int
	limiter  *RateLimiter
	logger   *slog.Logger
}

// NewContentHandler creates a new content handler. A nil limiter disables rate limiting.
func NewContentHandler(service contentshare.Service, storage contentshare.ObjectStorage, pageSize int, limiter *RateLimiter, logger *slog.Logger) *ContentHandler {
	if pageSize <= 0 {
		pageSize = contentshare.DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentHandler{
		service:  service,
		storage:  storage,
		pageSize: pageSize,
		limiter:  limiter,
		logger:   logger,
	}
}

// Routes returns the routes for the public site
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Dashboard)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/about", h.About)
	r.Get("/view/{id}", h.ViewContent)

	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Middleware)
		}
		r.Post("/view/increment/{id}", h.IncrementViews)
		r.Post("/like/{id}", h.ToggleLike)
		r.Post("/comment/{id}", h.AddComment)
	})

	return r
}

// dashboardRequest maps the query parameters onto a listing request and the
// heading shown above it. best_videos and most_viewed ignore tag and keyword;
// otherwise a tag outranks a keyword.
func dashboardRequest(filter, tag, keyword string) (contentshare.ListContentRequest, string) {
	switch filter {
	case FilterBestVideos:
		return contentshare.ListContentRequest{Filter: contentshare.FilterMostLiked}, "Best Videos"
	case FilterMostViewed:
		return contentshare.ListContentRequest{Filter: contentshare.FilterMostViewed}, "Most Viewed"
	}

	switch {
	case tag != "":
		return contentshare.ListContentRequest{Filter: contentshare.FilterByTag, Query: tag}, "Tag: " + tag
	case keyword != "":
		return contentshare.ListContentRequest{Filter: contentshare.FilterLatest, Query: keyword}, "Search: " + keyword
	default:
		return contentshare.ListContentRequest{Filter: contentshare.FilterLatest}, "Latest Content"
	}
}

// Dashboard handles GET / and GET /dashboard
func (h *ContentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := strings.ToLower(strings.TrimSpace(q.Get("filter")))
	if filter == "" {
		filter = FilterLatest
	}
	tag := strings.TrimSpace(q.Get("tag"))
	keyword := strings.TrimSpace(q.Get("keyword"))

	req, title := dashboardRequest(filter, tag, keyword)
	req.Page = positiveInt(q.Get("page"), 1)
	req.PageSize = h.pageSize

	page, err := h.service.ListContent(ctx, req)
	if err != nil {
		h.logger.Error("Failed to list content", "filter", filter, "err", err)
		renderError(w, r, http.StatusInternalServerError, "Failed to load content.")
		return
	}

	liked := []string{}
	if liker := likerID(w, r, false); liker != "" {
		ids, err := h.service.LikedContentIDs(ctx, liker)
		if err != nil {
			h.logger.Warn("Failed to load liked content", "err", err)
		} else {
			liked = idStrings(ids)
		}
	}

	render.JSON(w, r, DashboardResponse{
		Contents:          contentViews(page.Items, h.storage),
		CurrentPage:       page.Page,
		TotalPages:        page.TotalPages,
		TotalItems:        page.TotalItems,
		Filter:            filter,
		Tag:               tag,
		Keyword:           keyword,
		ActiveFilterTitle: title,
		LikedContentIDs:   liked,
		IsAdmin:           auth.FromContext(ctx).IsAdmin(),
		Flash:             popFlash(w, r),
	})
}

// ViewContent handles GET /view/{id}
func (h *ContentHandler) ViewContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		redirectWithFlash(w, r, "/dashboard", "error", "Content not found!")
		return
	}

	content, err := h.service.GetContent(ctx, id)
	if err != nil {
		if contentshare.IsNotFound(err) {
			redirectWithFlash(w, r, "/dashboard", "error", "Content not found!")
			return
		}
		h.logger.Error("Failed to get content", "content_id", id, "err", err)
		renderError(w, r, http.StatusInternalServerError, "Failed to load content.")
		return
	}

	comments, err := h.service.ListComments(ctx, id)
	if err != nil {
		h.logger.Warn("Failed to load comments", "content_id", id, "err", err)
		comments = nil
	}

	isLiked := false
	if liker := likerID(w, r, false); liker != "" {
		if isLiked, err = h.service.IsLiked(ctx, id, liker); err != nil {
			h.logger.Warn("Failed to load like state", "content_id", id, "err", err)
		}
	}

	identity := auth.FromContext(ctx)
	view := contentView(content, h.storage)
	render.JSON(w, r, ContentDetailResponse{
		Content:         view,
		FullMediaURL:    view.MediaURL,
		Comments:        commentViews(comments),
		IsLiked:         isLiked,
		IsAuthenticated: !identity.Anonymous(),
		IsAdmin:         identity.IsAdmin(),
		Flash:           popFlash(w, r),
	})
}

// IncrementViews handles POST /view/increment/{id}
func (h *ContentHandler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusNotFound, "Content not found.")
		return
	}

	views, err := h.service.IncrementViews(r.Context(), id)
	if err != nil {
		if contentshare.IsNotFound(err) {
			renderError(w, r, http.StatusNotFound, "Content not found.")
			return
		}
		h.logger.Error("Failed to increment views", "content_id", id, "err", err)
		renderError(w, r, http.StatusInternalServerError, "Failed to increment view count on server.")
		return
	}

	render.JSON(w, r, ViewCountResponse{Success: true, NewViews: views})
}

// ToggleLike handles POST /like/{id}. Anonymous browsers like under their visitor id.
func (h *ContentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusNotFound, "Content not found.")
		return
	}

	result, err := h.service.ToggleLike(r.Context(), id, likerID(w, r, true))
	if err != nil {
		if contentshare.IsNotFound(err) {
			renderError(w, r, http.StatusNotFound, "Content not found.")
			return
		}
		h.logger.Error("Failed to toggle like", "content_id", id, "err", err)
		renderError(w, r, http.StatusInternalServerError, "Failed to toggle like status on server.")
		return
	}

	render.JSON(w, r, LikeResponse{Success: true, NewLikes: result.Likes, IsLiked: result.Liked})
}

// AddComment handles the POST /comment/{id} form
func (h *ContentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	back := "/view/" + rawID

	identity := auth.FromContext(r.Context())
	if identity.Anonymous() {
		redirectWithFlash(w, r, back, "commentError", "You must be logged in to comment.")
		return
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		redirectWithFlash(w, r, back, "commentError", "Failed to find content.")
		return
	}

	_, err = h.service.AddComment(r.Context(), contentshare.AddCommentRequest{
		ContentID:  id,
		AuthorName: identity.DisplayName(),
		Text:       r.FormValue("comment"),
	})
	switch {
	case err == nil:
		redirectWithFlash(w, r, back, "commentSuccess", "Comment posted successfully!")
	case contentshare.IsNotFound(err):
		redirectWithFlash(w, r, back, "commentError", "Failed to find content.")
	default:
		h.logger.Warn("Failed to add comment", "content_id", id, "err", err)
		redirectWithFlash(w, r, back, "commentError", "Failed to post comment due to an error.")
	}
}

// About handles GET /about
func (h *ContentHandler) About(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, AboutResponse{
		Title:       "About",
		Description: "Share videos and images, browse what others posted, and like or comment on your favourites.",
	})
}

// positiveInt parses s, falling back to def for empty, malformed or non-positive values
func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}
