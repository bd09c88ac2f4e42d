package handler

import (
	"net/http"

	"github.com/go-accounts-api/internal/application/auth"
	"github.com/go-accounts-api/internal/transport/http/middleware"
)

// maxAvatarSize caps avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

// AvatarHandler handles avatar uploads for the authenticated user.
type AvatarHandler struct {
	svc auth.Service
}

func NewAvatarHandler(svc auth.Service) *AvatarHandler {
	return &AvatarHandler{svc: svc}
}

func (h *AvatarHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file required")
		return
	}
	defer file.Close()

	avatarURL, err := h.svc.UpdateAvatar(r.Context(), u.UserID, header.Filename, file)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AvatarEnvelope{AvatarURL: avatarURL})
}
