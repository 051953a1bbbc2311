// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package content

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mediahub/mediahub/internal/access"
	"github.com/mediahub/mediahub/pkg/errutil"
)

var tracer = otel.Tracer("mediahub/content")

// Client-facing messages.
const (
	msgCommentNotFound = "Comment not found"
	msgMediaNotFound   = "Media not found"
	msgEditForbidden   = "Not allowed to edit this comment"
	msgDeleteForbidden = "Not allowed to delete this comment"
)

// Errors returned by NewGuard for missing dependencies.
var (
	ErrNilMediaRepository   = errors.New("media repository is required")
	ErrNilCommentRepository = errors.New("comment repository is required")
	ErrNilLikeRepository    = errors.New("like repository is required")
)

// GuardConfig holds dependencies for Guard.
type GuardConfig struct {
	Media    MediaRepository
	Comments CommentRepository
	Likes    LikeRepository
	Logger   *slog.Logger
}

// Guard runs comment and like operations for the principal attached to
// the request context. Mutations are authorized before they reach a
// repository. Repository failures are returned unchanged.
type Guard struct {
	media    MediaRepository
	comments CommentRepository
	likes    LikeRepository
	logger   *slog.Logger
}

// NewGuard creates a Guard.
func NewGuard(cfg GuardConfig) (*Guard, error) {
	if cfg.Media == nil {
		return nil, ErrNilMediaRepository
	}
	if cfg.Comments == nil {
		return nil, ErrNilCommentRepository
	}
	if cfg.Likes == nil {
		return nil, ErrNilLikeRepository
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{media: cfg.Media, comments: cfg.Comments, likes: cfg.Likes, logger: logger}, nil
}

// CreateComment adds a comment by the caller to a media item.
func (g *Guard) CreateComment(ctx context.Context, mediaID ulid.ULID, text string) (_ *Comment, err error) {
	ctx, end := startSpan(ctx, "create_comment")
	defer end(&err)

	p, err := access.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateContent(text); err != nil {
		return nil, err
	}

	if _, err := g.media.Get(ctx, mediaID); err != nil {
		return nil, notFound(err, msgMediaNotFound, "MEDIA_NOT_FOUND", "media_id", mediaID)
	}

	comment := NewComment(mediaID, p.ID, text)
	if err := g.comments.Create(ctx, comment); err != nil {
		return nil, notFound(err, msgMediaNotFound, "MEDIA_NOT_FOUND", "media_id", mediaID)
	}
	return comment, nil
}

// EditComment replaces the content of a comment. Only its owner may edit
// it, whatever the caller's role.
func (g *Guard) EditComment(ctx context.Context, commentID ulid.ULID, text string) (_ *Comment, err error) {
	ctx, end := startSpan(ctx, "edit_comment")
	defer end(&err)

	p, err := access.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	comment, err := g.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwner(p, comment.OwnerID); err != nil {
		return nil, errutil.Wrap(errutil.KindForbidden, msgEditForbidden, err)
	}
	if err := validateContent(text); err != nil {
		return nil, err
	}

	comment.Content = strings.TrimSpace(text)
	comment.UpdatedAt = time.Now().UTC()
	if err := g.comments.UpdateContent(ctx, comment.ID, comment.Content, comment.UpdatedAt); err != nil {
		return nil, notFound(err, msgCommentNotFound, "COMMENT_NOT_FOUND", "comment_id", commentID)
	}
	return comment, nil
}

// DeleteComment removes a comment. Its owner or an ADMIN may delete it.
func (g *Guard) DeleteComment(ctx context.Context, commentID ulid.ULID) (err error) {
	ctx, end := startSpan(ctx, "delete_comment")
	defer end(&err)

	p, err := access.RequireAuthenticated(ctx)
	if err != nil {
		return err
	}
	comment, err := g.getComment(ctx, commentID)
	if err != nil {
		return err
	}
	if err := access.RequireOwnerOrRole(p, comment.OwnerID, access.RoleAdmin); err != nil {
		return errutil.Wrap(errutil.KindForbidden, msgDeleteForbidden, err)
	}
	if err := g.comments.Delete(ctx, comment.ID); err != nil {
		return notFound(err, msgCommentNotFound, "COMMENT_NOT_FOUND", "comment_id", commentID)
	}

	g.logger.InfoContext(ctx, "comment deleted",
		"comment_id", comment.ID.String(),
		"identity_id", p.ID.String(),
		"owner", p.ID == comment.OwnerID,
	)
	return nil
}

// ToggleLike likes the comment for the caller, or removes the caller's
// like if one exists. A like created or removed concurrently by another
// request for the same caller is treated as the intended end state.
func (g *Guard) ToggleLike(ctx context.Context, commentID ulid.ULID) (_ LikeState, err error) {
	ctx, end := startSpan(ctx, "toggle_like")
	defer end(&err)

	p, err := access.RequireAuthenticated(ctx)
	if err != nil {
		return LikeState{}, err
	}
	comment, err := g.getComment(ctx, commentID)
	if err != nil {
		return LikeState{}, err
	}

	var liked bool
	existing, err := g.likes.Find(ctx, comment.ID, p.ID)
	switch {
	case err == nil:
		if err := g.likes.Delete(ctx, existing.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return LikeState{}, err
		}
	case errors.Is(err, ErrNotFound):
		if err := g.likes.Create(ctx, NewLike(comment.ID, p.ID)); err != nil && !errors.Is(err, ErrDuplicate) {
			return LikeState{}, notFound(err, msgCommentNotFound, "COMMENT_NOT_FOUND", "comment_id", commentID)
		}
		liked = true
	default:
		return LikeState{}, err
	}

	count, err := g.likes.Count(ctx, comment.ID)
	if err != nil {
		return LikeState{}, err
	}
	return LikeState{Liked: liked, Likes: count}, nil
}

// CommentLikes lists who likes a comment. No authentication is needed.
func (g *Guard) CommentLikes(ctx context.Context, commentID ulid.ULID) (_ *Likes, err error) {
	ctx, end := startSpan(ctx, "comment_likes")
	defer end(&err)

	if _, err := g.getComment(ctx, commentID); err != nil {
		return nil, err
	}
	users, err := g.likes.Likers(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []OwnerRef{}
	}
	return &Likes{CommentID: commentID, Likes: int64(len(users)), Users: users}, nil
}

// CommentsByNickName lists the comments written by an identity. An unknown
// nickname yields an empty list.
func (g *Guard) CommentsByNickName(ctx context.Context, nickName string) (_ []CommentView, err error) {
	ctx, end := startSpan(ctx, "comments_by_nickname")
	defer end(&err)

	views, err := g.comments.ListByNickName(ctx, strings.TrimSpace(nickName))
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []CommentView{}
	}
	return views, nil
}

func (g *Guard) getComment(ctx context.Context, id ulid.ULID) (*Comment, error) {
	comment, err := g.comments.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, msgCommentNotFound, "COMMENT_NOT_FOUND", "comment_id", id)
	}
	return comment, nil
}

func validateContent(text string) error {
	text = strings.TrimSpace(text)
	var msg string
	switch {
	case text == "":
		msg = "Content is required"
	case utf8.RuneCountInString(text) > MaxCommentLength:
		msg = "Content is too long"
	default:
		return nil
	}
	return errutil.Validation(map[string]string{"content": msg},
		oops.Code("CONTENT_VALIDATION_FAILED").Errorf("Invalid input"))
}

// notFound classifies err as NotFound with msg when it wraps ErrNotFound,
// and returns it unchanged otherwise.
func notFound(err error, msg, code, key string, id ulid.ULID) error {
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return errutil.Wrap(errutil.KindNotFound, msg, oops.Code(code).With(key, id.String()).Wrap(err))
}

func startSpan(ctx context.Context, operation string) (context.Context, func(*error)) {
	ctx, span := tracer.Start(ctx, "content."+operation)
	return ctx, func(errp *error) {
		if err := *errp; err != nil {
			kind := errutil.KindOf(err).String()
			span.SetAttributes(attribute.String("error.kind", kind))
			span.RecordError(err)
			span.SetStatus(codes.Error, kind)
		}
		span.End()
	}
}
