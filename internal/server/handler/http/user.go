// Package http provides the HTTP handlers, middleware and routing for the
// souvenir catalog API.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/souvenirshop/backend/internal/server/models"
	"github.com/souvenirshop/backend/internal/server/repositories/users"
)

// UserService is the slice of user business logic the handlers need.
type UserService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	VerifyToken(tokenString string) (int64, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, f users.Filter) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// UserHandler handles registration, login and user CRUD endpoints.
type UserHandler struct {
	Users UserService
}

type userPayload struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Active:    u.Active,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	u, err := h.Users.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Authentication successful",
		"token":   token,
		"user":    toUserResponse(u),
	})
}

// VerifyToken checks the bearer token from the Authorization header.
func (h *UserHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeMessage(w, http.StatusBadRequest, "No token provided")
		return
	}

	if _, err := h.Users.VerifyToken(token); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid token")
		return
	}

	writeMessage(w, http.StatusOK, "Valid")
}

func (h *UserHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	f := users.Filter{
		FirstName:  r.URL.Query().Get("fname"),
		LastName:   r.URL.Query().Get("lname"),
		ActiveOnly: true,
	}

	list, err := h.Users.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]userResponse, 0, len(list))
	for _, u := range list {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) FindOne(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	n, err := h.Users.Update(r.Context(), &models.User{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if n != 1 {
		writeMessage(w, http.StatusNotFound, "Cannot update User. Maybe User was not found!")
		return
	}

	writeMessage(w, http.StatusOK, "User was updated successfully.")
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	n, err := h.Users.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if n != 1 {
		writeMessage(w, http.StatusNotFound, "Cannot delete User. Maybe User was not found!")
		return
	}

	writeMessage(w, http.StatusOK, "User was deleted successfully!")
}

func (h *UserHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.Users.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("%d Users were deleted successfully!", n))
}

// idParam parses a numeric URL parameter, answering 400 when it is malformed.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
