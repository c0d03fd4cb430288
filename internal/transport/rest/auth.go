package rest

import (
	"encoding/json"
	"log"
	"net/http"

	"carloan-service/internal/transport/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates the credentials and sets the session cookie. Mounted
// on the public root router.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}
	if req.Username == "" || req.Password == "" {
		ErrorBadRequest(w, "username and password are required")
		return
	}

	user := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if user == nil {
		ErrorUnauthorized(w, "invalid username or password")
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		log.Printf("[HTTP] create session error: %v", err)
		ErrorInternal(w, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	Success(w, "", map[string]any{
		"id":        user.ID,
		"username":  user.Username,
		"full_name": user.FullName,
	})
}

// logout drops the server-side session and expires the cookie.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if ck, err := r.Cookie(auth.SessionCookie); err == nil && ck.Value != "" {
		if err := h.sessions.Delete(r.Context(), ck.Value); err != nil {
			log.Printf("[HTTP] delete session error: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	Success(w, "", nil)
}
