// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/internal/content"
	"github.com/mediahub/mediahub/internal/store"
)

const likeOwnerConstraint = "comment_likes_comment_owner_key"

// LikeRepository implements content.LikeRepository using PostgreSQL.
type LikeRepository struct {
	db store.Querier
}

// NewLikeRepository creates a new LikeRepository.
func NewLikeRepository(db store.Querier) *LikeRepository {
	return &LikeRepository{db: db}
}

// Find retrieves the like ownerID holds on commentID.
func (r *LikeRepository) Find(ctx context.Context, commentID, ownerID ulid.ULID) (*content.Like, error) {
	var (
		idStr string
		like  = content.Like{CommentID: commentID, OwnerID: ownerID}
	)
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, created_at FROM comment_likes WHERE comment_id = $1 AND owner_id = $2
	`, commentID.String(), ownerID.String()).Scan(&idStr, &like.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("LIKE_NOT_FOUND").
			With("comment_id", commentID.String()).
			With("owner_id", ownerID.String()).
			Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("LIKE_QUERY_FAILED").With("operation", "find like").Wrap(err)
	}
	if like.ID, err = parseID("id", idStr); err != nil {
		return nil, err
	}
	return &like, nil
}

// Create stores a like. The (comment_id, owner_id) constraint rejects a
// second like by the same owner.
func (r *LikeRepository) Create(ctx context.Context, like *content.Like) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO comment_likes (id, comment_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, like.ID.String(), like.CommentID.String(), like.OwnerID.String(), like.CreatedAt)
	if err == nil {
		return nil
	}
	if constraint, ok := store.UniqueViolation(err); ok && constraint == likeOwnerConstraint {
		return oops.Code("LIKE_DUPLICATE").
			With("comment_id", like.CommentID.String()).
			With("owner_id", like.OwnerID.String()).
			Wrap(content.ErrDuplicate)
	}
	if store.IsForeignKeyViolation(err) {
		return oops.Code("LIKE_REFERENCE_MISSING").
			With("comment_id", like.CommentID.String()).
			Wrap(content.ErrNotFound)
	}
	return oops.Code("LIKE_CREATE_FAILED").With("operation", "insert like").Wrap(err)
}

// Delete removes a like.
func (r *LikeRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `DELETE FROM comment_likes WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("LIKE_DELETE_FAILED").With("operation", "delete like").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("LIKE_NOT_FOUND").With("id", id.String()).Wrap(content.ErrNotFound)
	}
	return nil
}

// Count returns the number of likes on a comment.
func (r *LikeRepository) Count(ctx context.Context, commentID ulid.ULID) (int64, error) {
	var n int64
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1
	`, commentID.String()).Scan(&n)
	if err != nil {
		return 0, oops.Code("LIKE_COUNT_FAILED").With("comment_id", commentID.String()).Wrap(err)
	}
	return n, nil
}

// Likers returns the identities that like a comment, oldest like first.
func (r *LikeRepository) Likers(ctx context.Context, commentID ulid.ULID) ([]content.OwnerRef, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		SELECT i.id, i.nick_name
		FROM comment_likes l
		JOIN identities i ON i.id = l.owner_id
		WHERE l.comment_id = $1
		ORDER BY l.created_at, l.id
	`, commentID.String())
	if err != nil {
		return nil, oops.Code("LIKE_LIST_FAILED").With("comment_id", commentID.String()).Wrap(err)
	}
	defer rows.Close()

	refs := []content.OwnerRef{}
	for rows.Next() {
		var (
			idStr string
			ref   content.OwnerRef
		)
		if err := rows.Scan(&idStr, &ref.NickName); err != nil {
			return nil, oops.Code("LIKE_SCAN_FAILED").With("operation", "scan liker").Wrap(err)
		}
		if ref.ID, err = parseID("owner_id", idStr); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("LIKE_LIST_FAILED").With("operation", "iterate likers").Wrap(err)
	}
	return refs, nil
}

// Compile-time interface check.
var _ content.LikeRepository = (*LikeRepository)(nil)
