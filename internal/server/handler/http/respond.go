package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/souvenirshop/backend/internal/common"
)

// messageResponse is the error-and-status envelope the API uses throughout.
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps the closed set of service outcomes onto HTTP statuses.
// Everything unclassified is a 500 with a generic message.
func writeError(w http.ResponseWriter, err error) {
	var exists *common.AlreadyExistsError
	var cascade *common.CascadeError

	switch {
	case errors.As(err, &exists):
		writeMessage(w, http.StatusBadRequest, exists.Error())
	case errors.Is(err, common.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrParentNotFound):
		writeMessage(w, http.StatusNotFound, "Couldn't find any souvenir!")
	case errors.Is(err, common.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, common.ErrAccountNotFound), errors.Is(err, common.ErrInvalidCredentials):
		// Both render identically so account existence cannot be probed.
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, common.ErrInvalidToken):
		writeMessage(w, http.StatusBadRequest, "Invalid token")
	case errors.As(err, &cascade):
		writeMessage(w, http.StatusInternalServerError, cascade.Error())
	case errors.Is(err, common.ErrBlobWriteFailed),
		errors.Is(err, common.ErrBlobDeleteFailed),
		errors.Is(err, common.ErrRowCommitFailed),
		errors.Is(err, common.ErrRowDeleteFailed):
		writeMessage(w, http.StatusInternalServerError, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "Some error occurred.")
	}
}
