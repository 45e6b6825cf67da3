package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vaultdrive/internal/auth"
	"vaultdrive/internal/service"
)

type ShareHandler struct {
	shareService *service.ShareService
	fileService  *service.FileService
}

func NewShareHandler(shareService *service.ShareService, fileService *service.FileService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		fileService:  fileService,
	}
}

func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		http.Error(w, "Invalid file UUID", http.StatusBadRequest)
		return
	}

	token, err := h.shareService.Share(r.Context(), fileUUID, ownerID)
	if err != nil {
		writeError(w, err, "Failed to create share")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Token string `json:"token"`
	}{Token: token})
}

func (h *ShareHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		http.Error(w, "Invalid file UUID", http.StatusBadRequest)
		return
	}

	if err := h.shareService.Unshare(r.Context(), fileUUID, ownerID); err != nil {
		writeError(w, err, "Failed to revoke share")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ResolveShare is the public path: no bearer token, the share token is the
// whole credential.
func (h *ShareHandler) ResolveShare(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	file, err := h.shareService.Resolve(r.Context(), token)
	if err != nil {
		writeError(w, err, "Failed to resolve share")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(file)
}

// DownloadShared streams a shared file's content to an anonymous caller.
func (h *ShareHandler) DownloadShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	file, err := h.shareService.Resolve(r.Context(), token)
	if err != nil {
		writeError(w, err, "Failed to resolve share")
		return
	}

	download, err := h.fileService.DownloadByFile(r.Context(), file)
	if err != nil {
		writeError(w, err, "Failed to download file")
		return
	}
	defer download.Body.Close()

	w.Header().Set("Content-Type", download.File.MIMEType)
	w.Header().Set("Content-Length", strconv.FormatInt(download.File.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.File.Name))
	io.Copy(w, download.Body)
}
