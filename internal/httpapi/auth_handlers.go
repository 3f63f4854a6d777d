package httpapi

import (
	"net/http"
	"strings"

	"inkwell.blog/internal/obs"
)

type authenticateRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authenticateResponse struct {
	AccessToken string `json:"accessToken"`
}

func (a *API) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	login, password, ok := credentialsFromRequest(w, r)
	if !ok {
		return
	}
	if login == "" || password == "" {
		writeError(w, r, http.StatusBadRequest, "login and password are required")
		return
	}

	token, err := a.login.Login(r.Context(), login, password)
	if err != nil {
		obs.ObserveLogin("denied")
		a.audit(r.Context(), "auth.login.denied", map[string]any{"login": login})
		handleDomainError(w, r, err)
		return
	}

	obs.ObserveLogin("ok")
	a.audit(r.Context(), "auth.login.ok", map[string]any{"login": login})
	writeJSON(w, http.StatusOK, authenticateResponse{AccessToken: token})
}

// credentialsFromRequest accepts either a JSON body {login, password}
// or a classic form post with username/password fields.
func credentialsFromRequest(w http.ResponseWriter, r *http.Request) (login, password string, ok bool) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			writeError(w, r, http.StatusBadRequest, "malformed form body")
			return "", "", false
		}
		return strings.TrimSpace(r.PostFormValue("username")), r.PostFormValue("password"), true
	}

	var req authenticateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return strings.TrimSpace(req.Login), req.Password, true
}

type applyResetRequest struct {
	ResetKey    string `json:"resetKey"`
	NewPassword string `json:"newPassword"`
}

type requestResetResponse struct {
	ResetKey string `json:"resetKey"`
}

// handlePasswordReset serves /users/password/{username}/{email}/reset.
// GET issues a reset key, PATCH consumes one.
func (a *API) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/users/password/")
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[2] != "reset" || parts[0] == "" || parts[1] == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	username, email := parts[0], parts[1]

	switch r.Method {
	case http.MethodGet:
		a.requestPasswordReset(w, r, username, email)
	case http.MethodPatch:
		a.applyPasswordReset(w, r, username, email)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch)
	}
}

func (a *API) requestPasswordReset(w http.ResponseWriter, r *http.Request, username, email string) {
	key, err := a.resets.RequestReset(r.Context(), username, email)
	if err != nil {
		obs.ObservePasswordReset("request", "denied")
		a.audit(r.Context(), "auth.reset.request_denied", map[string]any{"username": username})
		handleDomainError(w, r, err)
		return
	}
	obs.ObservePasswordReset("request", "ok")
	a.audit(r.Context(), "auth.reset.requested", map[string]any{"username": username})
	writeJSON(w, http.StatusOK, requestResetResponse{ResetKey: key})
}

func (a *API) applyPasswordReset(w http.ResponseWriter, r *http.Request, username, email string) {
	var req applyResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.ResetKey == "" || req.NewPassword == "" {
		writeError(w, r, http.StatusBadRequest, "resetKey and newPassword are required")
		return
	}

	if err := a.resets.ApplyReset(r.Context(), req.ResetKey, username, email, req.NewPassword); err != nil {
		obs.ObservePasswordReset("apply", "denied")
		a.audit(r.Context(), "auth.reset.apply_denied", map[string]any{"username": username})
		handleDomainError(w, r, err)
		return
	}

	obs.ObservePasswordReset("apply", "ok")
	a.audit(r.Context(), "auth.reset.applied", map[string]any{"username": username})
	w.WriteHeader(http.StatusNoContent)
}
