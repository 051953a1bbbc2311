// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package web

import (
	"net/http"

	"github.com/samber/oops"

	"github.com/mediahub/mediahub/pkg/errutil"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (a *API) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	mediaID, err := pathID(r, "mediaId")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in commentRequest
	if err := a.decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	comment, err := a.content.CreateComment(r.Context(), mediaID, in.Content)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (a *API) handleEditComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in commentRequest
	if err := a.decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	comment, err := a.content.EditComment(r.Context(), commentID, in.Content)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (a *API) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.content.DeleteComment(r.Context(), commentID); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Comment deleted successfully"})
}

func (a *API) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	state, err := a.content.ToggleLike(r.Context(), commentID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleCommentQuery serves GET /api/comments/user/{nickName} and
// GET /api/comments/{commentId}/likes.
func (a *API) handleCommentQuery(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "user":
		a.commentsByNickName(w, r, second)
	case second == "likes":
		a.commentLikes(w, r, first)
	default:
		a.writeError(w, r, errutil.Wrap(errutil.KindNotFound, "Not found",
			oops.Code("HTTP_ROUTE_NOT_FOUND").With("path", r.URL.Path).Errorf("no route")))
	}
}

func (a *API) commentsByNickName(w http.ResponseWriter, r *http.Request, nickName string) {
	views, err := a.content.CommentsByNickName(r.Context(), nickName)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *API) commentLikes(w http.ResponseWriter, r *http.Request, rawID string) {
	commentID, err := parseID("commentId", rawID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	likes, err := a.content.CommentLikes(r.Context(), commentID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}
