package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/souvenirshop/backend/internal/server/models"
	"github.com/souvenirshop/backend/internal/server/repositories/images"
)

// maxUploadSize caps multipart uploads at 10 MiB.
const maxUploadSize = 10 << 20

// ImageService is the slice of image business logic the handlers need.
type ImageService interface {
	Create(ctx context.Context, souvenirID int64, filename string, data []byte) (*models.Image, error)
	Upload(ctx context.Context, souvenirID int64, originalName string, data []byte) (*models.Image, error)
	Get(ctx context.Context, id int64) (*models.Image, error)
	List(ctx context.Context, f images.Filter) ([]*models.Image, error)
	ListBySouvenir(ctx context.Context, souvenirID int64) ([]*models.Image, error)
	Update(ctx context.Context, img *models.Image) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

// ImageHandler handles image CRUD, multipart upload and URL resolution.
type ImageHandler struct {
	Images ImageService
}

type imagePayload struct {
	Filename   string `json:"filename"`
	Filepath   string `json:"filepath"`
	SouvenirID int64  `json:"souvenirId"`
}

type imageResponse struct {
	ID         int64  `json:"id"`
	Filename   string `json:"filename"`
	Filepath   string `json:"filepath"`
	SouvenirID int64  `json:"souvenirId"`
}

func toImageResponse(img *models.Image) imageResponse {
	return imageResponse{
		ID:         img.ID,
		Filename:   img.Filename,
		Filepath:   img.Filepath,
		SouvenirID: img.SouvenirID,
	}
}

// Upload accepts a multipart form with an "image" file and stores it for the
// souvenir named in the URL.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	souvenirID, ok := idParam(w, r, "souvenirId")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Image is too large.")
			return
		}
		writeMessage(w, http.StatusBadRequest, "Error uploading image.")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No image file provided.")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		writeMessage(w, http.StatusBadRequest, "Only image files are allowed!")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Error uploading image.")
		return
	}

	img, err := h.Images.Upload(r.Context(), souvenirID, header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Success",
		"data":    toImageResponse(img),
	})
}

// Create registers image metadata whose payload already exists as bytes in
// the request body. Used by clients that upload out-of-band.
func (h *ImageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		imagePayload
		Data []byte `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	img, err := h.Images.Create(r.Context(), req.SouvenirID, req.Filename, req.Data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toImageResponse(img))
}

func (h *ImageHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	f := images.Filter{
		Filename: r.URL.Query().Get("filename"),
		Filepath: r.URL.Query().Get("filepath"),
	}

	list, err := h.Images.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]imageResponse, 0, len(list))
	for _, img := range list {
		resp = append(resp, toImageResponse(img))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ImageHandler) FindOne(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	img, err := h.Images.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toImageResponse(img))
}

func (h *ImageHandler) FindBySouvenir(w http.ResponseWriter, r *http.Request) {
	souvenirID, ok := idParam(w, r, "souvenirId")
	if !ok {
		return
	}

	list, err := h.Images.ListBySouvenir(r.Context(), souvenirID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]imageResponse, 0, len(list))
	for _, img := range list {
		resp = append(resp, toImageResponse(img))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req imagePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	n, err := h.Images.Update(r.Context(), &models.Image{
		ID:       id,
		Filename: req.Filename,
		Filepath: req.Filepath,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if n != 1 {
		writeMessage(w, http.StatusNotFound, "Cannot update Image. Maybe Image was not found!")
		return
	}

	writeMessage(w, http.StatusOK, "Image was updated successfully.")
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.Images.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Image was deleted successfully!")
}

// DeleteAll removes every image, blobs included.
func (h *ImageHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.Images.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("%d Images were deleted successfully!", n))
}

// ImageURL resolves the public URL a stored filename is served under.
func (h *ImageHandler) ImageURL(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		writeMessage(w, http.StatusBadRequest, "invalid filename")
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"imageUrl": fmt.Sprintf("%s://%s/uploads/%s", scheme, r.Host, filename),
	})
}
