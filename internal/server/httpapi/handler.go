// Package httpapi exposes the upload coordinator over HTTP. Handlers are
// thin plumbing: decode the request, call the service, wrap the answer in
// the JSON envelope.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fileporter/fileporter/internal/logging"
	"github.com/fileporter/fileporter/internal/server/services"
)

// maxFormMemory caps how much of a multipart body is held in memory
// before spilling to temp files.
const maxFormMemory = 32 << 20

// UploadService is the slice of the coordinator the HTTP layer needs.
type UploadService interface {
	UploadSmall(ctx context.Context, fileName, identifier string, size int64, r io.Reader) (string, error)
	SecondUpload(ctx context.Context, identifier string) (bool, error)
	Delete(ctx context.Context, identifier string) error
	InitiateChunked(ctx context.Context, fileName, identifier string, totalSize, chunkSize int64) (*services.ChunkTaskInfo, error)
	UploadPart(ctx context.Context, identifier string, partNumber int, data []byte) error
	Progress(ctx context.Context, identifier string) (*services.ChunkTaskInfo, error)
	Merge(ctx context.Context, identifier string) (string, error)
	List(ctx context.Context, nameFilter string, page, pageSize int) ([]*services.FileInfo, error)
	Transfer(ctx context.Context, content string) (string, error)
}

type Handler struct {
	service UploadService
	logger  logging.Logger
}

func NewHandler(service UploadService, logger logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts all routes on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", h.uploadSmall).Methods(http.MethodPost)
	api.HandleFunc("/upload/second", h.secondUpload).Methods(http.MethodGet)
	api.HandleFunc("/upload/{identifier}", h.deleteFile).Methods(http.MethodDelete)
	api.HandleFunc("/upload/chunk/init", h.initiateChunked).Methods(http.MethodPost)
	api.HandleFunc("/upload/chunk", h.uploadPart).Methods(http.MethodPost)
	api.HandleFunc("/upload/chunk/progress", h.progress).Methods(http.MethodGet)
	api.HandleFunc("/upload/chunk/merge", h.merge).Methods(http.MethodPost)
	api.HandleFunc("/files", h.listFiles).Methods(http.MethodGet)
	api.HandleFunc("/transfer", h.transfer).Methods(http.MethodPost)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// uploadSmall handles POST /api/upload with a multipart form: a "file"
// part and an "identifier" field.
func (h *Handler) uploadSmall(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "missing 'file' part")
		return
	}
	defer file.Close()
	identifier := r.FormValue("identifier")

	url, err := h.service.UploadSmall(r.Context(), header.Filename, identifier, header.Size, file)
	if err != nil {
		h.logger.Error(r.Context(), "upload failed", "identifier", identifier, "error", err.Error())
		writeError(w, err)
		return
	}
	writeOK(w, map[string]string{"url": url})
}

// secondUpload handles GET /api/upload/second?identifier=...
func (h *Handler) secondUpload(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.SecondUpload(r.Context(), r.URL.Query().Get("identifier"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]bool{"exists": exists})
}

// deleteFile handles DELETE /api/upload/{identifier}.
func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	identifier := mux.Vars(r)["identifier"]
	if err := h.service.Delete(r.Context(), identifier); err != nil {
		h.logger.Error(r.Context(), "delete failed", "identifier", identifier, "error", err.Error())
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

type initiateRequest struct {
	FileName   string `json:"fileName"`
	Identifier string `json:"identifier"`
	TotalSize  int64  `json:"totalSize"`
	ChunkSize  int64  `json:"chunkSize"`
}

// initiateChunked handles POST /api/upload/chunk/init with a JSON body.
func (h *Handler) initiateChunked(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	if req.FileName == "" || req.Identifier == "" {
		writeBadRequest(w, "fileName and identifier are required")
		return
	}

	info, err := h.service.InitiateChunked(r.Context(), req.FileName, req.Identifier, req.TotalSize, req.ChunkSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, info)
}

// uploadPart handles POST /api/upload/chunk with a multipart form: a
// "file" part plus "identifier" and "partNumber" fields.
func (h *Handler) uploadPart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}
	identifier := r.FormValue("identifier")
	partNumber, err := strconv.Atoi(r.FormValue("partNumber"))
	if err != nil || partNumber < 1 {
		writeBadRequest(w, "partNumber must be a positive integer")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "missing 'file' part")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeBadRequest(w, "failed to read part body")
		return
	}

	if err := h.service.UploadPart(r.Context(), identifier, partNumber, data); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

// progress handles GET /api/upload/chunk/progress?identifier=...
func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Progress(r.Context(), r.URL.Query().Get("identifier"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, info)
}

// merge handles POST /api/upload/chunk/merge?identifier=...
func (h *Handler) merge(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("identifier")
	url, err := h.service.Merge(r.Context(), identifier)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]string{"url": url})
}

// listFiles handles GET /api/files?name=...&page=...&pageSize=...
func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intQuery(q.Get("page"), 1)
	pageSize := intQuery(q.Get("pageSize"), 10)

	files, err := h.service.List(r.Context(), q.Get("name"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, files)
}

type transferRequest struct {
	Content string `json:"content"`
}

// transfer handles POST /api/transfer with a JSON body.
func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	content, err := h.service.Transfer(r.Context(), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]string{"content": content})
}

func intQuery(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
