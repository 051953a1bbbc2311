// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/internal/content"
	"github.com/mediahub/mediahub/internal/store"
)

// CommentRepository implements content.CommentRepository using PostgreSQL.
type CommentRepository struct {
	db store.Querier
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db store.Querier) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create stores a comment.
func (r *CommentRepository) Create(ctx context.Context, c *content.Comment) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO comments (id, media_id, owner_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID.String(), c.MediaID.String(), c.OwnerID.String(), c.Content, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return oops.Code("COMMENT_REFERENCE_MISSING").
				With("media_id", c.MediaID.String()).
				With("owner_id", c.OwnerID.String()).
				Wrap(content.ErrNotFound)
		}
		return oops.Code("COMMENT_CREATE_FAILED").
			With("operation", "insert comment").
			With("comment_id", c.ID.String()).
			Wrap(err)
	}
	return nil
}

// Get retrieves a comment by ID.
func (r *CommentRepository) Get(ctx context.Context, id ulid.ULID) (*content.Comment, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, media_id, owner_id, content, created_at, updated_at
		FROM comments WHERE id = $1
	`, id.String())

	var (
		c                      content.Comment
		idStr, media, ownerStr string
	)
	err := row.Scan(&idStr, &media, &ownerStr, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("COMMENT_NOT_FOUND").With("id", id.String()).Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("COMMENT_SCAN_FAILED").With("operation", "scan comment").Wrap(err)
	}
	if err := scanIDs(&c, idStr, media, ownerStr); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateContent replaces the content of a comment.
func (r *CommentRepository) UpdateContent(ctx context.Context, id ulid.ULID, text string, updatedAt time.Time) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1
	`, id.String(), text, updatedAt)
	if err != nil {
		return oops.Code("COMMENT_UPDATE_FAILED").
			With("operation", "update comment").
			With("comment_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("COMMENT_NOT_FOUND").With("id", id.String()).Wrap(content.ErrNotFound)
	}
	return nil
}

// Delete removes a comment. Likes go with it through ON DELETE CASCADE.
func (r *CommentRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `DELETE FROM comments WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("COMMENT_DELETE_FAILED").
			With("operation", "delete comment").
			With("comment_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("COMMENT_NOT_FOUND").With("id", id.String()).Wrap(content.ErrNotFound)
	}
	return nil
}

// ListByNickName returns the comments written by nickName, newest first.
func (r *CommentRepository) ListByNickName(ctx context.Context, nickName string) ([]content.CommentView, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		SELECT c.id, c.media_id, c.owner_id, c.content, c.created_at, c.updated_at,
		       m.title, i.nick_name
		FROM comments c
		JOIN identities i ON i.id = c.owner_id
		JOIN media m ON m.id = c.media_id
		WHERE LOWER(i.nick_name) = LOWER($1)
		ORDER BY c.created_at DESC, c.id DESC
	`, nickName)
	if err != nil {
		return nil, oops.Code("COMMENT_LIST_FAILED").With("operation", "list comments").With("nick_name", nickName).Wrap(err)
	}
	defer rows.Close()

	var views []content.CommentView
	for rows.Next() {
		var (
			v                      content.CommentView
			idStr, media, ownerStr string
		)
		if err := rows.Scan(&idStr, &media, &ownerStr, &v.Content, &v.CreatedAt, &v.UpdatedAt,
			&v.Media.Title, &v.User.NickName); err != nil {
			return nil, oops.Code("COMMENT_SCAN_FAILED").With("operation", "scan comment view").Wrap(err)
		}
		if err := scanIDs(&v.Comment, idStr, media, ownerStr); err != nil {
			return nil, err
		}
		v.Media.ID = v.MediaID
		v.User.ID = v.OwnerID
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("COMMENT_LIST_FAILED").With("operation", "iterate comments").Wrap(err)
	}
	return views, nil
}

func scanIDs(c *content.Comment, id, mediaID, ownerID string) error {
	var err error
	if c.ID, err = parseID("id", id); err != nil {
		return err
	}
	if c.MediaID, err = parseID("media_id", mediaID); err != nil {
		return err
	}
	c.OwnerID, err = parseID("owner_id", ownerID)
	return err
}

func parseID(field, s string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("CONTENT_INVALID_ID").With(field, s).Wrap(err)
	}
	return id, nil
}

// Compile-time interface check.
var _ content.CommentRepository = (*CommentRepository)(nil)
