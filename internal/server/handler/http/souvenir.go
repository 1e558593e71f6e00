package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/souvenirshop/backend/internal/server/models"
	"github.com/souvenirshop/backend/internal/server/repositories/souvenirs"
)

// SouvenirService is the slice of souvenir business logic the handlers need.
type SouvenirService interface {
	Create(ctx context.Context, sv *models.Souvenir) (*models.Souvenir, error)
	Get(ctx context.Context, id int64) (*models.Souvenir, error)
	List(ctx context.Context, f souvenirs.Filter) ([]*models.Souvenir, error)
	Update(ctx context.Context, sv *models.Souvenir) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	ListImages(ctx context.Context, id int64) ([]*models.Image, error)
}

// SouvenirHandler handles souvenir CRUD and the cascading delete endpoint.
type SouvenirHandler struct {
	Souvenirs SouvenirService
}

type souvenirPayload struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type souvenirResponse struct {
	ID          int64           `json:"id"`
	Category    string          `json:"category"`
	SubCategory string          `json:"sub_category,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Active      bool            `json:"active"`
	Images      []imageResponse `json:"images"`
}

func toSouvenirResponse(sv *models.Souvenir) souvenirResponse {
	imgs := make([]imageResponse, 0, len(sv.Images))
	for _, img := range sv.Images {
		imgs = append(imgs, toImageResponse(img))
	}
	return souvenirResponse{
		ID:          sv.ID,
		Category:    sv.Category,
		SubCategory: sv.SubCategory,
		Title:       sv.Title,
		Description: sv.Description,
		Active:      sv.Active,
		Images:      imgs,
	}
}

func (h *SouvenirHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req souvenirPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	sv, err := h.Souvenirs.Create(r.Context(), &models.Souvenir{
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSouvenirResponse(sv))
}

func (h *SouvenirHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	active := true
	f := souvenirs.Filter{
		Title:       r.URL.Query().Get("title"),
		Category:    r.URL.Query().Get("category"),
		SubCategory: r.URL.Query().Get("sub_category"),
		Active:      &active,
	}

	list, err := h.Souvenirs.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]souvenirResponse, 0, len(list))
	for _, sv := range list {
		resp = append(resp, toSouvenirResponse(sv))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SouvenirHandler) FindOne(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	sv, err := h.Souvenirs.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSouvenirResponse(sv))
}

func (h *SouvenirHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req souvenirPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	n, err := h.Souvenirs.Update(r.Context(), &models.Souvenir{
		ID:          id,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Title:       req.Title,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if n != 1 {
		writeMessage(w, http.StatusNotFound, "Cannot update Souvenir. Maybe Souvenir was not found!")
		return
	}

	writeMessage(w, http.StatusOK, "Souvenir was updated successfully.")
}

// Delete cascades to every image the souvenir owns. A partial cascade keeps
// the souvenir row and reports the image ids that failed; retrying is safe.
func (h *SouvenirHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.Souvenirs.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Souvenir was deleted successfully!")
}

// DeleteAll cascades through every souvenir in the catalog. Partial cascade
// failures surface the same way as on a single delete.
func (h *SouvenirHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.Souvenirs.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("%d Souvenirs were deleted successfully!", n))
}

func (h *SouvenirHandler) FindImages(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	imgs, err := h.Souvenirs.ListImages(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]imageResponse, 0, len(imgs))
	for _, img := range imgs {
		resp = append(resp, toImageResponse(img))
	}
	writeJSON(w, http.StatusOK, resp)
}
