package http

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/kahvecikaan/product-catalog/internal/files"
)

var (
	imageIDPattern       = regexp.MustCompile(`^[0-9]+$`)
	imageFilenamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-]+\.[a-z]{3,4}$`)
)

// ImageHandler reads and writes product images
type ImageHandler struct {
	log   hclog.Logger
	store files.Storage
}

// ImageResponse tells the client where an uploaded image is served from, so
// the URL can be used as a product's imageUrl
//
// swagger:model
type ImageResponse struct {
	URL string `json:"url"`
}

func NewImageHandler(l hclog.Logger, s files.Storage) *ImageHandler {
	return &ImageHandler{log: l, store: s}
}

// UploadREST handles POST /images/{id}/{filename} with the image as the raw body
func (h *ImageHandler) UploadREST(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	fn := vars["filename"]

	h.log.Info("Handle POST (REST)", "id", id, "filename", fn)

	h.saveFile(id, fn, w, r.Body)
}

// UploadMultipart handles POST /images with "id" and "file" form fields
func (h *ImageHandler) UploadMultipart(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(128 * 1024)
	if err != nil {
		h.log.Error("Unable to parse multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Unable to parse form")
		return
	}

	id := r.FormValue("id")
	if !imageIDPattern.MatchString(id) {
		h.log.Error("Invalid 'id' in form data", "id", id)
		writeError(w, http.StatusBadRequest, "Expected a numeric 'id' in form data")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		h.log.Error("Unable to get file from form data", "error", err)
		writeError(w, http.StatusBadRequest, "Unable to get file from form data")
		return
	}
	defer file.Close()

	fn := fileHeader.Filename
	if !imageFilenamePattern.MatchString(fn) {
		h.log.Error("Invalid file name", "filename", fn)
		writeError(w, http.StatusBadRequest, "Invalid file name")
		return
	}

	h.log.Info("Handle POST (multipart)", "id", id, "filename", fn)

	h.saveFile(id, fn, w, file)
}

// GetImage handles GET /images/{id}/{filename}
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	fn := vars["filename"]

	h.log.Debug("Handle GET", "id", id, "filename", fn)

	file, err := h.store.Get(filepath.Join(id, fn))
	if err != nil {
		h.log.Error("Unable to get the file", "error", err)
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	defer file.Close()

	contentType, err := detectContentType(file)
	if err != nil {
		h.log.Error("Unable to detect content type", "error", err)
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, file); err != nil {
		h.log.Error("Unable to write file to response", "error", err)
	}
}

func (h *ImageHandler) saveFile(id, fn string, w http.ResponseWriter, r io.Reader) {
	err := h.store.Save(filepath.Join(id, fn), r)
	if errors.Is(err, files.ErrFileTooLarge) {
		h.log.Error("Rejected oversized file", "id", id, "filename", fn)
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		h.log.Error("Unable to save the file", "error", err)
		writeError(w, http.StatusInternalServerError, "Unable to save the file")
		return
	}

	writeJSON(w, http.StatusCreated, ImageResponse{URL: path.Join("/images", id, fn)})
}

// detectContentType sniffs the first 512 bytes and rewinds the file
func detectContentType(file *os.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(buf[:n]), nil
}
