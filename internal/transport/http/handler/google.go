package handler

import (
	"net/http"

	"github.com/go-accounts-api/internal/application/auth"
)

// GoogleHandler handles the Google sign-on endpoints.
type GoogleHandler struct {
	svc auth.Service
}

func NewGoogleHandler(svc auth.Service) *GoogleHandler {
	return &GoogleHandler{svc: svc}
}

// URLEnvelope wraps the consent-screen URL response.
type URLEnvelope struct {
	URL string `json:"url"`
}

func (h *GoogleHandler) LoginURL(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, URLEnvelope{URL: h.svc.GoogleAuthURL()})
}

// Redirect is the OAuth callback: Google sends the user back here with an
// authorization code in the query string.
func (h *GoogleHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "authorization code required")
		return
	}
	token, err := h.svc.LoginWithGoogle(r.Context(), code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Token: token})
}
