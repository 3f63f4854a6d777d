package httpapi

import (
	"net/http"
	"strings"
	"time"

	"inkwell.blog/internal/auth"
	"inkwell.blog/internal/stream"
)

type postRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

type commentRequest struct {
	Body string `json:"body"`
}

func (a *API) handlePostsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit, offset, err := pageParams(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		posts, err := a.service.ListPosts(r.Context(), limit, offset)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": posts})
	case http.MethodPost:
		a.createPost(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createPost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	post, err := a.service.CreatePost(r.Context(), principal, req.Title, req.Body, req.Tags)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	a.publish(stream.Event{
		Kind:      "post.created",
		PostID:    post.ID,
		Author:    principal.Username,
		Title:     post.Title,
		Timestamp: time.Now().UTC(),
	})
	a.audit(r.Context(), "post.created", map[string]any{"post_id": post.ID})
	w.Header().Set("Location", "/api/posts/"+post.ID)
	writeJSON(w, http.StatusCreated, post)
}

func (a *API) handlePostResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	segs := strings.Split(path, "/")
	switch {
	case len(segs) == 2 && segs[1] == "comments" && segs[0] != "":
		a.handleComments(w, r, segs[0])
		return
	case len(segs) == 3 && segs[1] == "comments" && segs[0] != "" && segs[2] != "":
		a.handleCommentResource(w, r, segs[2])
		return
	case len(segs) != 1:
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		post, err := a.service.GetPost(r.Context(), path)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	case http.MethodPut, http.MethodPatch:
		a.updatePost(w, r, path)
	case http.MethodDelete:
		principal, _ := auth.PrincipalFromContext(r.Context())
		if err := a.service.DeletePost(r.Context(), principal, path); err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.audit(r.Context(), "post.deleted", map[string]any{"post_id": path})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) updatePost(w http.ResponseWriter, r *http.Request, id string) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	post, err := a.service.UpdatePost(r.Context(), principal, id, req.Title, req.Body, req.Tags)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	a.publish(stream.Event{
		Kind:      "post.updated",
		PostID:    post.ID,
		Author:    principal.Username,
		Title:     post.Title,
		Timestamp: time.Now().UTC(),
	})
	a.audit(r.Context(), "post.updated", map[string]any{"post_id": post.ID})
	writeJSON(w, http.StatusOK, post)
}

func (a *API) handleComments(w http.ResponseWriter, r *http.Request, postID string) {
	switch r.Method {
	case http.MethodGet:
		limit, offset, err := pageParams(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		comments, err := a.service.ListComments(r.Context(), postID, limit, offset)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": comments})
	case http.MethodPost:
		var req commentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		principal, _ := auth.PrincipalFromContext(r.Context())
		c, err := a.service.CreateComment(r.Context(), principal, postID, req.Body)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		a.publish(stream.Event{
			Kind:      "comment.created",
			PostID:    postID,
			Author:    principal.Username,
			Timestamp: time.Now().UTC(),
		})
		a.audit(r.Context(), "comment.created", map[string]any{"comment_id": c.ID, "post_id": postID})
		writeJSON(w, http.StatusCreated, c)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleCommentResource(w http.ResponseWriter, r *http.Request, commentID string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	if err := a.service.DeleteComment(r.Context(), principal, commentID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.audit(r.Context(), "comment.deleted", map[string]any{"comment_id": commentID})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) publish(evt stream.Event) {
	if a.stream != nil {
		a.stream.Publish(evt)
	}
}
