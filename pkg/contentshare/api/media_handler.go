package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/content-share/pkg/contentshare"
)

// DefaultMediaPath is where the router serves blobs when the backend has no
// public address of its own.
const DefaultMediaPath = "/media"

const octetStream = "application/octet-stream"

type mimeTyper interface {
	MimeType(objectKey string) (string, bool)
}

// MediaHandler streams stored objects by key
type MediaHandler struct {
	store  contentshare.BlobStore
	logger *slog.Logger
}

// NewMediaHandler creates a handler that reads from store
func NewMediaHandler(store contentshare.BlobStore, logger *slog.Logger) *MediaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaHandler{store: store, logger: logger}
}

// Routes returns the media routes
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/*", h.Serve)
	return r
}

// Serve writes the object named by the wildcard path segment
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		renderError(w, r, http.StatusBadRequest, "object key is required")
		return
	}

	rc, err := h.store.Download(r.Context(), key)
	if err != nil {
		h.logger.Debug("Media lookup failed", "object_key", key, "err", err)
		renderError(w, r, http.StatusNotFound, "media not found")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if typer, ok := h.store.(mimeTyper); ok {
		if stored, found := typer.MimeType(key); found && stored != "" && stored != octetStream {
			contentType = stored
		}
	}
	if contentType == "" {
		contentType = octetStream
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("Media stream interrupted", "object_key", key, "err", err)
	}
}
