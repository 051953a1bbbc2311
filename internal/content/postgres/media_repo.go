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

// MediaRepository implements content.MediaRepository using PostgreSQL.
type MediaRepository struct {
	db store.Querier
}

// NewMediaRepository creates a new MediaRepository.
func NewMediaRepository(db store.Querier) *MediaRepository {
	return &MediaRepository{db: db}
}

// Get retrieves a media item by ID.
func (r *MediaRepository) Get(ctx context.Context, id ulid.ULID) (*content.Media, error) {
	var (
		m          content.Media
		ownerIDStr string
	)
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT owner_id, title, created_at FROM media WHERE id = $1
	`, id.String()).Scan(&ownerIDStr, &m.Title, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MEDIA_NOT_FOUND").With("id", id.String()).Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MEDIA_QUERY_FAILED").With("operation", "get media").With("id", id.String()).Wrap(err)
	}

	if m.OwnerID, err = ulid.Parse(ownerIDStr); err != nil {
		return nil, oops.Code("MEDIA_INVALID_OWNER_ID").With("owner_id", ownerIDStr).Wrap(err)
	}
	m.ID = id
	return &m, nil
}

// Compile-time interface check.
var _ content.MediaRepository = (*MediaRepository)(nil)
