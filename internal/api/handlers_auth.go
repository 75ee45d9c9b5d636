package api

import (
	"encoding/json"
	"net/http"

	"github.com/yukyu/ledger/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondValidation(w, "malformed request body")
		return
	}
	if err := requireNonEmpty("email", in.Email); err != nil {
		respondValidation(w, err.Error())
		return
	}
	if err := requireNonEmpty("password", in.Password); err != nil {
		respondValidation(w, err.Error())
		return
	}

	token, user, err := h.AuthSvc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	csrfToken, err := auth.GenerateCSRFToken()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("X-CSRF-Token", csrfToken)

	var out loginResponse
	out.Token = token
	out.User.ID = user.ID
	out.User.Email = user.Email
	out.User.Name = user.Name
	out.User.Role = string(user.Role)
	respondOK(w, http.StatusOK, out)
}

// handleLogout is a no-op beyond acknowledging the request: tokens are
// stateless bearer JWTs (§4.5), so there is no server-side session to
// invalidate. The client is expected to discard the token.
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, map[string]string{"message": "logged out"})
}
