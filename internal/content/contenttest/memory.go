// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package contenttest provides in-memory content repositories for tests.
package contenttest

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/internal/content"
)

// Store backs the in-memory repositories. Like uniqueness on
// (comment, owner) and cascading deletes mirror the SQL schema.
type Store struct {
	mu       sync.Mutex
	media    map[ulid.ULID]content.Media
	comments map[ulid.ULID]content.Comment
	likes    map[ulid.ULID]content.Like
	nicks    map[ulid.ULID]string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		media:    make(map[ulid.ULID]content.Media),
		comments: make(map[ulid.ULID]content.Comment),
		likes:    make(map[ulid.ULID]content.Like),
		nicks:    make(map[ulid.ULID]string),
	}
}

// AddIdentity registers an identity so comments and likes can reference it.
func (s *Store) AddIdentity(id ulid.ULID, nickName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nicks[id] = nickName
}

// AddMedia creates a media item owned by ownerID.
func (s *Store) AddMedia(ownerID ulid.ULID, title string) content.Media {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := content.Media{ID: ulid.Make(), OwnerID: ownerID, Title: title, CreatedAt: time.Now().UTC()}
	s.media[m.ID] = m
	return m
}

// LikeRows returns the number of stored likes for commentID.
func (s *Store) LikeRows(commentID ulid.ULID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.likes {
		if l.CommentID == commentID {
			n++
		}
	}
	return n
}

// MediaRepository returns a content.MediaRepository over s.
func (s *Store) MediaRepository() *MediaRepository { return &MediaRepository{s: s} }

// CommentRepository returns a content.CommentRepository over s.
func (s *Store) CommentRepository() *CommentRepository { return &CommentRepository{s: s} }

// LikeRepository returns a content.LikeRepository over s.
func (s *Store) LikeRepository() *LikeRepository { return &LikeRepository{s: s} }

// MediaRepository is an in-memory content.MediaRepository.
type MediaRepository struct{ s *Store }

// Get implements content.MediaRepository.
func (r *MediaRepository) Get(_ context.Context, id ulid.ULID) (*content.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.media[id]
	if !ok {
		return nil, oops.Code("MEDIA_NOT_FOUND").With("id", id.String()).Wrap(content.ErrNotFound)
	}
	return &m, nil
}

// CommentRepository is an in-memory content.CommentRepository.
type CommentRepository struct{ s *Store }

// Create implements content.CommentRepository.
func (r *CommentRepository) Create(_ context.Context, c *content.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.media[c.MediaID]; !ok {
		return oops.Code("COMMENT_MEDIA_MISSING").Wrap(content.ErrNotFound)
	}
	if _, ok := r.s.nicks[c.OwnerID]; !ok {
		return oops.Code("COMMENT_OWNER_MISSING").Wrap(content.ErrNotFound)
	}
	r.s.comments[c.ID] = *c
	return nil
}

// Get implements content.CommentRepository.
func (r *CommentRepository) Get(_ context.Context, id ulid.ULID) (*content.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, oops.Code("COMMENT_NOT_FOUND").With("id", id.String()).Wrap(content.ErrNotFound)
	}
	return &c, nil
}

// UpdateContent implements content.CommentRepository.
func (r *CommentRepository) UpdateContent(_ context.Context, id ulid.ULID, text string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return oops.Code("COMMENT_NOT_FOUND").With("id", id.String()).Wrap(content.ErrNotFound)
	}
	c.Content = text
	c.UpdatedAt = updatedAt
	r.s.comments[id] = c
	return nil
}

// Delete implements content.CommentRepository.
func (r *CommentRepository) Delete(_ context.Context, id ulid.ULID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return oops.Code("COMMENT_NOT_FOUND").With("id", id.String()).Wrap(content.ErrNotFound)
	}
	delete(r.s.comments, id)
	for lid, l := range r.s.likes {
		if l.CommentID == id {
			delete(r.s.likes, lid)
		}
	}
	return nil
}

// ListByNickName implements content.CommentRepository.
func (r *CommentRepository) ListByNickName(_ context.Context, nickName string) ([]content.CommentView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var views []content.CommentView
	for _, c := range r.s.comments {
		nick := r.s.nicks[c.OwnerID]
		if !strings.EqualFold(nick, nickName) {
			continue
		}
		m := r.s.media[c.MediaID]
		views = append(views, content.CommentView{
			Comment: c,
			Media:   content.MediaRef{ID: m.ID, Title: m.Title},
			User:    content.OwnerRef{ID: c.OwnerID, NickName: nick},
		})
	}
	slices.SortFunc(views, func(a, b content.CommentView) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), b.ID.Compare(a.ID))
	})
	return views, nil
}

// LikeRepository is an in-memory content.LikeRepository.
type LikeRepository struct{ s *Store }

// Find implements content.LikeRepository.
func (r *LikeRepository) Find(_ context.Context, commentID, ownerID ulid.ULID) (*content.Like, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.likes {
		if l.CommentID == commentID && l.OwnerID == ownerID {
			return &l, nil
		}
	}
	return nil, oops.Code("LIKE_NOT_FOUND").Wrap(content.ErrNotFound)
}

// Create implements content.LikeRepository.
func (r *LikeRepository) Create(_ context.Context, like *content.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[like.CommentID]; !ok {
		return oops.Code("LIKE_COMMENT_MISSING").Wrap(content.ErrNotFound)
	}
	for _, l := range r.s.likes {
		if l.CommentID == like.CommentID && l.OwnerID == like.OwnerID {
			return oops.Code("LIKE_DUPLICATE").Wrap(content.ErrDuplicate)
		}
	}
	r.s.likes[like.ID] = *like
	return nil
}

// Delete implements content.LikeRepository.
func (r *LikeRepository) Delete(_ context.Context, id ulid.ULID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.likes[id]; !ok {
		return oops.Code("LIKE_NOT_FOUND").Wrap(content.ErrNotFound)
	}
	delete(r.s.likes, id)
	return nil
}

// Count implements content.LikeRepository.
func (r *LikeRepository) Count(_ context.Context, commentID ulid.ULID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, l := range r.s.likes {
		if l.CommentID == commentID {
			n++
		}
	}
	return n, nil
}

// Likers implements content.LikeRepository.
func (r *LikeRepository) Likers(_ context.Context, commentID ulid.ULID) ([]content.OwnerRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var likes []content.Like
	for _, l := range r.s.likes {
		if l.CommentID == commentID {
			likes = append(likes, l)
		}
	}
	slices.SortFunc(likes, func(a, b content.Like) int { return a.CreatedAt.Compare(b.CreatedAt) })

	refs := make([]content.OwnerRef, 0, len(likes))
	for _, l := range likes {
		refs = append(refs, content.OwnerRef{ID: l.OwnerID, NickName: r.s.nicks[l.OwnerID]})
	}
	return refs, nil
}

var (
	_ content.MediaRepository   = (*MediaRepository)(nil)
	_ content.CommentRepository = (*CommentRepository)(nil)
	_ content.LikeRepository    = (*LikeRepository)(nil)
)
