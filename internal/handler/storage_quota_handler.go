package handler

import (
	"encoding/json"
	"net/http"

	"vaultdrive/internal/auth"
	"vaultdrive/internal/service"
)

type StorageQuotaHandler struct {
	quotaService *service.QuotaService
}

func NewStorageQuotaHandler(quotaService *service.QuotaService) *StorageQuotaHandler {
	return &StorageQuotaHandler{quotaService: quotaService}
}

func (h *StorageQuotaHandler) GetQuotaInfo(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	info, err := h.quotaService.GetQuotaInfo(r.Context(), ownerID)
	if err != nil {
		writeError(w, err, "Failed to get quota info")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func (h *StorageQuotaHandler) UpdateQuotaLimit(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		NewLimit int64 `json:"new_limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.quotaService.UpdateQuotaLimit(r.Context(), ownerID, req.NewLimit); err != nil {
		writeError(w, err, "Failed to update quota limit")
		return
	}

	w.WriteHeader(http.StatusOK)
}
