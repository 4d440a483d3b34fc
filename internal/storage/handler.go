package storage

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/salesdesk/api-commissions/internal/auth"
	"github.com/salesdesk/api-commissions/internal/submission"
)

// Handler serves document upload and download. Every upload is validated
// before it touches the store and keyed under a fresh uuid so filenames
// never collide or leak.
type Handler struct {
	Store BlobStore
}

// NewStoreFromEnv picks the backend: STORAGE_BACKEND=s3 for the bucket,
// anything else for local disk.
func NewStoreFromEnv(ctx context.Context) BlobStore {
	if os.Getenv("STORAGE_BACKEND") == "s3" {
		store, err := NewS3Store(ctx)
		if err != nil {
			log.Fatalf("s3 storage: %v", err)
		}
		return store
	}
	return NewDiskStore()
}

type uploadResponse struct {
	Path string `json:"path"`
}

// Upload handles POST /uploads. The multipart form carries the file and a
// kind field: "document" for the PDF backing a submission, "receipt" for a
// payout receipt.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := auth.UserFromContext(r.Context()); !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(submission.MaxDocumentSize); err != nil {
		http.Error(w, "file too large or malformed form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	kind := r.FormValue("kind")
	contentType := header.Header.Get("Content-Type")

	var errs submission.ValidationErrors
	switch kind {
	case "receipt":
		errs = submission.ValidateReceiptFile(header.Filename, header.Size, contentType)
	case "", "document":
		kind = "document"
		errs = submission.ValidateDocumentFile(header.Filename, header.Size, contentType)
	default:
		http.Error(w, "kind must be document or receipt", http.StatusBadRequest)
		return
	}
	if len(errs) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"errors": errs})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := kind + "s/" + uuid.NewString() + ext
	if err := h.Store.Put(r.Context(), key, contentType, file); err != nil {
		http.Error(w, "could not store file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(uploadResponse{Path: key})
}

// Download handles GET /uploads/{kind}/{name} and streams the stored file.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := auth.UserFromContext(r.Context()); !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	key := vars["kind"] + "/" + vars["name"]
	body, contentType, err := h.Store.Get(r.Context(), key)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	defer body.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, body); err != nil {
		log.Printf("download %s: %v", key, err)
	}
}
