package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/pathfinder/internal/captcha"
)

// captchaView is a challenge as shown to clients; the code itself never leaves the server
type captchaView struct {
	ID        string           `json:"id"`
	Attempts  int              `json:"attempts"`
	Verified  bool             `json:"verified"`
	Error     string           `json:"error,omitempty"`
	Noise     []captcha.Stroke `json:"noise"`
	ImageURL  string           `json:"image_url"`
	ExpiresAt time.Time        `json:"expires_at"`
}

func newCaptchaView(c *captcha.Challenge) captchaView {
	return captchaView{
		ID:        c.ID,
		Attempts:  c.Attempts,
		Verified:  c.Verified,
		Error:     c.Error,
		Noise:     c.Noise,
		ImageURL:  "/api/v1/captcha/" + c.ID + "/image.svg",
		ExpiresAt: c.ExpiresAt,
	}
}

// VerifyCaptchaRequest carries a guess at the challenge code
type VerifyCaptchaRequest struct {
	Input string `json:"input"`
}

// VerifyCaptchaResponse reports the outcome of a guess
type VerifyCaptchaResponse struct {
	Verified bool        `json:"verified"`
	Captcha  captchaView `json:"captcha"`
}

func (s *Server) handleCreateCaptcha(w http.ResponseWriter, r *http.Request) {
	c, err := s.captcha.Create(r.Context())
	if err != nil {
		respondServiceError(w, err, "create captcha")
		return
	}
	respondJSON(w, http.StatusCreated, newCaptchaView(c))
}

func (s *Server) handleGetCaptcha(w http.ResponseWriter, r *http.Request) {
	c, err := s.captcha.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "get captcha")
		return
	}
	respondJSON(w, http.StatusOK, newCaptchaView(c))
}

func (s *Server) handleCaptchaImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.captcha.Image(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "render captcha")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// handleCaptchaAudio returns the utterance a client should speak, or 204
// when speech is turned off
func (s *Server) handleCaptchaAudio(w http.ResponseWriter, r *http.Request) {
	var spoken *captcha.Utterance
	ok, err := s.captcha.Speak(r.Context(), chi.URLParam(r, "id"), captcha.SpeakerFunc(func(u captcha.Utterance) {
		spoken = &u
	}))
	if err != nil {
		respondServiceError(w, err, "speak captcha")
		return
	}
	if !ok || spoken == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, spoken)
}

func (s *Server) handleRefreshCaptcha(w http.ResponseWriter, r *http.Request) {
	c, err := s.captcha.Refresh(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "refresh captcha")
		return
	}
	respondJSON(w, http.StatusOK, newCaptchaView(c))
}

func (s *Server) handleVerifyCaptcha(w http.ResponseWriter, r *http.Request) {
	var req VerifyCaptchaRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, ok, err := s.captcha.Verify(r.Context(), chi.URLParam(r, "id"), req.Input)
	if err != nil {
		respondServiceError(w, err, "verify captcha")
		return
	}
	respondJSON(w, http.StatusOK, VerifyCaptchaResponse{Verified: ok, Captcha: newCaptchaView(c)})
}
