package httpapi

import (
	"net/http"
	"strings"

	"inkwell.blog/internal/auth"
)

type tagRequest struct {
	Name string `json:"name"`
}

func (a *API) handleTagsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit, offset, err := pageParams(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		tags, err := a.service.ListTags(r.Context(), limit, offset)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": tags})
	case http.MethodPost:
		var req tagRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		principal, _ := auth.PrincipalFromContext(r.Context())
		tag, err := a.service.CreateTag(r.Context(), principal, req.Name)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.audit(r.Context(), "tag.created", map[string]any{"tag_id": tag.ID, "name": tag.Name})
		w.Header().Set("Location", "/api/tags/"+tag.ID)
		writeJSON(w, http.StatusCreated, tag)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTagResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/tags/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		tag, err := a.service.GetTag(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tag)
	case http.MethodPut, http.MethodPatch:
		var req tagRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		principal, _ := auth.PrincipalFromContext(r.Context())
		tag, err := a.service.UpdateTag(r.Context(), principal, id, req.Name)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.audit(r.Context(), "tag.updated", map[string]any{"tag_id": tag.ID})
		writeJSON(w, http.StatusOK, tag)
	case http.MethodDelete:
		principal, _ := auth.PrincipalFromContext(r.Context())
		if err := a.service.DeleteTag(r.Context(), principal, id); err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.audit(r.Context(), "tag.deleted", map[string]any{"tag_id": id})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}
