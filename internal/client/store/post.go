package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/client/models"
	"github.com/itd-social/itd-client/internal/logging"
)

// PostStore is the mutable, client-side view of every post currently on
// screen. Pages from the feed, profile, and comment paginators are registered
// here; toggles mutate the registered copy in place so every surface showing
// the same post sees the flip.
type PostStore struct {
	api api.PostAPI
	eng *Engine
	log logging.Logger

	mu    sync.Mutex
	posts map[string]*models.Post
}

func NewPostStore(postAPI api.PostAPI, eng *Engine, log logging.Logger) *PostStore {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &PostStore{
		api:   postAPI,
		eng:   eng,
		log:   log,
		posts: make(map[string]*models.Post),
	}
}

// Track registers posts so later toggles find them. Re-tracking an id
// replaces the tracked copy; reposts register their original as well.
func (s *PostStore) Track(posts ...*models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range posts {
		if p == nil || p.ID == "" {
			continue
		}
		s.posts[p.ID] = p
		if p.OriginalPost != nil && p.OriginalPost.ID != "" {
			s.posts[p.OriginalPost.ID] = p.OriginalPost
		}
	}
}

// Get returns the tracked post for id, nil when unknown.
func (s *PostStore) Get(id string) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts[id]
}

// Forget drops posts from the store, e.g. when a list is reset.
func (s *PostStore) Forget(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.posts, id)
	}
}

// ToggleLike flips the like state optimistically and reports the new state.
// The counter moves with the flag and never goes below zero.
func (s *PostStore) ToggleLike(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("toggle like: unknown post %q", id)
	}
	p.IsLiked = !p.IsLiked
	if p.IsLiked {
		p.LikesCount++
	} else if p.LikesCount > 0 {
		p.LikesCount--
	}
	liked := p.IsLiked
	s.mu.Unlock()

	s.eng.Dispatch("like:"+id, func(ctx context.Context) error {
		if liked {
			return s.api.LikePost(ctx, id)
		}
		return s.api.UnlikePost(ctx, id)
	})
	return liked, nil
}

// ToggleRepost flips the repost state optimistically. The server exposes a
// single toggle endpoint for both directions.
func (s *PostStore) ToggleRepost(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("toggle repost: unknown post %q", id)
	}
	p.IsReposted = !p.IsReposted
	if p.IsReposted {
		p.RepostsCount++
	} else if p.RepostsCount > 0 {
		p.RepostsCount--
	}
	reposted := p.IsReposted
	s.mu.Unlock()

	s.eng.Dispatch("repost:"+id, func(ctx context.Context) error {
		return s.api.RepostPost(ctx, id)
	})
	return reposted, nil
}

// Delete is not optimistic: the post stays tracked until the server confirms
// the deletion, and the server's error is surfaced to the caller.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.Forget(id)
	return nil
}

// MarkViewed records a view fire-and-forget. Repeat views of the same post
// are not re-sent.
func (s *PostStore) MarkViewed(ctx context.Context, id string) {
	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok || p.IsViewed {
		s.mu.Unlock()
		return
	}
	p.IsViewed = true
	p.ViewsCount++
	s.mu.Unlock()

	s.eng.Dispatch("view:"+id, func(ctx context.Context) error {
		return s.api.MarkPostViewed(ctx, id)
	})
}
