package api

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/content-share/pkg/contentshare"
)

const (
	// DefaultAdminPageSize is the admin listing page size
	DefaultAdminPageSize = 20

	// DefaultMaxUploadBytes bounds an admin multipart request
	DefaultMaxUploadBytes int64 = 512 << 20

	// multipartMemory is how much of a multipart body is kept in memory before spilling to disk
	multipartMemory = 32 << 20

	adminDashboardPath = "/admin/dashboard"
)

var uploadFields = []FormField{
	{Name: "title", Type: "text", Required: true},
	{Name: "description", Type: "textarea"},
	{Name: "tags", Type: "text"},
	{Name: "file", Type: "file", Required: true},
}

var editFields = []FormField{
	{Name: "id", Type: "hidden", Required: true},
	{Name: "title", Type: "text", Required: true},
	{Name: "description", Type: "textarea"},
	{Name: "tags", Type: "text"},
	{Name: "file", Type: "file"},
}

// AdminHandler serves the role-gated content management surface
type AdminHandler struct {
	service        contentshare.Service
	storage        contentshare.ObjectStorage
	pageSize       int
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service contentshare.Service, storage contentshare.ObjectStorage, pageSize int, maxUploadBytes int64, logger *slog.Logger) *AdminHandler {
	if pageSize <= 0 {
		pageSize = DefaultAdminPageSize
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		service:        service,
		storage:        storage,
		pageSize:       pageSize,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Routes returns the admin routes. Callers gate them with RequireRole.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/dashboard", h.Dashboard)
	r.Get("/upload", h.UploadForm)
	r.Get("/edit/{id}", h.EditForm)
	r.Get("/delete/{id}", h.Delete)

	r.Group(func(r chi.Router) {
		r.Use(RequestSizeLimit(h.maxUploadBytes))
		r.Post("/upload", h.Upload)
		r.Post("/update", h.Update)
	})

	return r
}

// RequestSizeLimit limits the size of request bodies
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// Dashboard handles GET /admin/dashboard?page&size
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.service.ListContent(r.Context(), contentshare.ListContentRequest{
		Filter:   contentshare.FilterLatest,
		Page:     positiveInt(q.Get("page"), 1),
		PageSize: positiveInt(q.Get("size"), h.pageSize),
	})
	if err != nil {
		h.logger.Error("Failed to list content", "err", err)
		renderError(w, r, http.StatusInternalServerError, "Failed to load content.")
		return
	}

	render.JSON(w, r, AdminDashboardResponse{
		Contents:    contentViews(page.Items, h.storage),
		CurrentPage: page.Page,
		TotalPages:  page.TotalPages,
		TotalItems:  page.TotalItems,
		PageSize:    page.PageSize,
		IsAdmin:     true,
		Flash:       popFlash(w, r),
	})
}

// UploadForm handles GET /admin/upload
func (h *AdminHandler) UploadForm(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, FormResponse{
		Action:  "/admin/upload",
		Method:  http.MethodPost,
		Fields:  uploadFields,
		IsAdmin: true,
	})
}

// Upload handles the POST /admin/upload multipart form
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", "File upload failed: "+err.Error())
		return
	}

	file, closeFile, err := formFile(r)
	if err != nil {
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", "File upload failed: "+err.Error())
		return
	}
	defer closeFile()

	content, err := h.service.CreateContent(r.Context(), contentshare.CreateContentRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
		File:        file,
	})
	if err != nil {
		h.logger.Warn("Upload failed", "err", err)
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", "File upload failed: "+err.Error())
		return
	}

	h.logger.Info("Content uploaded", "content_id", content.ID, "file_type", content.FileType)
	redirectWithFlash(w, r, adminDashboardPath, "uploadSuccess", "Content uploaded successfully!")
}

// EditForm handles GET /admin/edit/{id}
func (h *AdminHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	notFound := fmt.Sprintf("Content ID %s not found for editing.", rawID)

	id, err := uuid.Parse(rawID)
	if err != nil {
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", notFound)
		return
	}

	content, err := h.service.GetContent(r.Context(), id)
	if err != nil {
		if contentshare.IsNotFound(err) {
			redirectWithFlash(w, r, adminDashboardPath, "uploadError", notFound)
			return
		}
		h.logger.Error("Failed to get content", "content_id", id, "err", err)
		renderError(w, r, http.StatusInternalServerError, "Failed to load content.")
		return
	}

	view := contentView(content, h.storage)
	render.JSON(w, r, FormResponse{
		Action:  "/admin/update",
		Method:  http.MethodPost,
		Fields:  editFields,
		Content: &view,
		IsAdmin: true,
	})
}

// Update handles the POST /admin/update multipart form. The file is optional.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", "Update failed due to a file error: "+err.Error())
		return
	}

	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", "Update failed: Content not found.")
		return
	}

	file, closeFile, err := formFile(r)
	if err != nil {
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", "Update failed due to a file error: "+err.Error())
		return
	}
	defer closeFile()

	_, err = h.service.UpdateContent(r.Context(), contentshare.UpdateContentRequest{
		ID:          id,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
		File:        file,
	})
	switch {
	case err == nil:
		redirectWithFlash(w, r, adminDashboardPath, "uploadSuccess", fmt.Sprintf("Content ID %s updated successfully!", id))
	case contentshare.IsNotFound(err):
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", "Update failed: Content not found.")
	case contentshare.IsValidation(err):
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", "Update failed: "+err.Error())
	default:
		h.logger.Warn("Update failed", "content_id", id, "err", err)
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", "Update failed due to a file error: "+err.Error())
	}
}

// Delete handles GET /admin/delete/{id}
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	notFound := fmt.Sprintf("Content ID %s not found.", rawID)

	id, err := uuid.Parse(rawID)
	if err != nil {
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", notFound)
		return
	}

	err = h.service.DeleteContent(r.Context(), id)
	switch {
	case err == nil:
		redirectWithFlash(w, r, adminDashboardPath, "uploadSuccess", "Content deleted successfully!")
	case contentshare.IsNotFound(err):
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", notFound)
	default:
		redirectWithFlash(w, r, adminDashboardPath, "uploadError", "Deletion failed due to a file service error: "+err.Error())
	}
}

// formFile returns the "file" part as a FileUpload, or nil when none was sent.
// The returned func closes the part and is always safe to call.
func formFile(r *http.Request) (*contentshare.FileUpload, func(), error) {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return fileUpload(file, header), func() { file.Close() }, nil
}

func fileUpload(file multipart.File, header *multipart.FileHeader) *contentshare.FileUpload {
	return &contentshare.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}
}
