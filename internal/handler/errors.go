package handler

import (
	"errors"
	"log"
	"net/http"

	"vaultdrive/internal/domain"
)

// writeError maps core errors to HTTP statuses. Anything outside the
// taxonomy is an infrastructure failure and stays a 500 with a generic
// message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrAccessDenied):
		http.Error(w, "Access denied", http.StatusForbidden)
	case errors.Is(err, domain.ErrQuotaExceeded):
		http.Error(w, "Storage quota exceeded", http.StatusInsufficientStorage)
	case errors.Is(err, domain.ErrCycleDetected):
		http.Error(w, "Move would create a cycle", http.StatusConflict)
	case errors.Is(err, domain.ErrNameConflict):
		http.Error(w, "Name already exists", http.StatusConflict)
	default:
		log.Printf("[Handler] %s: %v", fallback, err)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}
