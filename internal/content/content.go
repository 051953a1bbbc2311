// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by LikeRepository.Create when the owner already
// likes the comment.
var ErrDuplicate = errors.New("duplicate")

// MaxCommentLength bounds comment content in runes.
const MaxCommentLength = 2000

// Media is the item comments attach to. Media management lives elsewhere;
// only the fields comments need are modelled.
type Media struct {
	ID        ulid.ULID
	OwnerID   ulid.ULID
	Title     string
	CreatedAt time.Time
}

// Comment is a protected resource owned by its author.
type Comment struct {
	ID        ulid.ULID `json:"id"`
	MediaID   ulid.ULID `json:"mediaId"`
	OwnerID   ulid.ULID `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewComment creates a comment with a fresh ID.
func NewComment(mediaID, ownerID ulid.ULID, content string) *Comment {
	now := time.Now().UTC()
	return &Comment{
		ID:        ulid.Make(),
		MediaID:   mediaID,
		OwnerID:   ownerID,
		Content:   strings.TrimSpace(content),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MediaRef and OwnerRef are the summaries embedded in comment listings.
type (
	MediaRef struct {
		ID    ulid.ULID `json:"id"`
		Title string    `json:"title"`
	}
	OwnerRef struct {
		ID       ulid.ULID `json:"id"`
		NickName string    `json:"nickName"`
	}
)

// CommentView is a comment together with its media and author.
type CommentView struct {
	Comment
	Media MediaRef `json:"media"`
	User  OwnerRef `json:"user"`
}

// Like is a protected resource recording that OwnerID likes CommentID.
type Like struct {
	ID        ulid.ULID
	CommentID ulid.ULID
	OwnerID   ulid.ULID
	CreatedAt time.Time
}

// NewLike creates a like with a fresh ID.
func NewLike(commentID, ownerID ulid.ULID) *Like {
	return &Like{
		ID:        ulid.Make(),
		CommentID: commentID,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
}

// LikeState is the caller's view of a comment after a toggle.
type LikeState struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

// Likes lists who likes a comment.
type Likes struct {
	CommentID ulid.ULID  `json:"commentId"`
	Likes     int64      `json:"likes"`
	Users     []OwnerRef `json:"users"`
}

// MediaRepository reads media items.
type MediaRepository interface {
	// Get retrieves a media item by ID.
	Get(ctx context.Context, id ulid.ULID) (*Media, error)
}

// CommentRepository manages comment persistence.
type CommentRepository interface {
	// Create stores a comment. Returns an error wrapping ErrNotFound when
	// the media item or owner does not exist.
	Create(ctx context.Context, comment *Comment) error

	// Get retrieves a comment by ID.
	Get(ctx context.Context, id ulid.ULID) (*Comment, error)

	// UpdateContent replaces the content of a comment.
	UpdateContent(ctx context.Context, id ulid.ULID, content string, updatedAt time.Time) error

	// Delete removes a comment and, through the schema, its likes.
	Delete(ctx context.Context, id ulid.ULID) error

	// ListByNickName returns comments written by the identity with the
	// given nickname, newest first.
	ListByNickName(ctx context.Context, nickName string) ([]CommentView, error)
}

// LikeRepository manages like persistence.
type LikeRepository interface {
	// Find retrieves the like ownerID holds on commentID.
	Find(ctx context.Context, commentID, ownerID ulid.ULID) (*Like, error)

	// Create stores a like. Returns an error wrapping ErrDuplicate when the
	// owner already likes the comment.
	Create(ctx context.Context, like *Like) error

	// Delete removes a like. Returns an error wrapping ErrNotFound when it
	// is already gone.
	Delete(ctx context.Context, id ulid.ULID) error

	// Count returns the number of likes on a comment.
	Count(ctx context.Context, commentID ulid.ULID) (int64, error)

	// Likers returns the identities that like a comment.
	Likers(ctx context.Context, commentID ulid.ULID) ([]OwnerRef, error)
}
