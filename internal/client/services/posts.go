// Package services composes the API client, the paginators, and the
// optimistic stores into the operations the UI layer calls.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/client/models"
	"github.com/itd-social/itd-client/internal/client/paging"
	"github.com/itd-social/itd-client/internal/client/store"
	"github.com/itd-social/itd-client/internal/logging"
)

// DefaultPageLimit is used when the config does not override it.
const DefaultPageLimit = 20

// PostList is one paginated stream of posts. Every page is registered with
// the post store on arrival, so toggles reach the same copies the list holds.
type PostList struct {
	pager *paging.Paginator[*models.Post]
	store *store.PostStore
}

func newPostList(fetch paging.FetchFunc[*models.Post], posts *store.PostStore, limit int) *PostList {
	return &PostList{
		pager: paging.New(fetch, func(p *models.Post) string { return p.ID }, limit),
		store: posts,
	}
}

// LoadMore fetches the next page and returns what was appended.
func (l *PostList) LoadMore(ctx context.Context) ([]*models.Post, error) {
	appended, err := l.pager.Next(ctx)
	if err != nil {
		return nil, err
	}
	l.store.Track(appended...)
	return appended, nil
}

func (l *PostList) Posts() []*models.Post { return l.pager.Items() }
func (l *PostList) Exhausted() bool       { return l.pager.Exhausted() }
func (l *PostList) Reset()                { l.pager.Reset() }

// asPtrs adapts a value-returning list endpoint to the pointer pages the
// store tracks.
func asPtrs(posts []models.Post) []*models.Post {
	out := make([]*models.Post, len(posts))
	for i := range posts {
		out[i] = &posts[i]
	}
	return out
}

// PostService exposes the feed, profile feeds, comment threads, and post
// mutations.
type PostService struct {
	api   api.PostAPI
	posts *store.PostStore
	log   logging.Logger
	limit int

	mu   sync.Mutex
	tab  string
	feed *PostList
}

func NewPostService(postAPI api.PostAPI, posts *store.PostStore, log logging.Logger, limit int) *PostService {
	if log == nil {
		log = logging.NewDiscard()
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &PostService{api: postAPI, posts: posts, log: log, limit: limit}
}

// Feed returns the list for the given tab ("for-you", "following", ...).
// Switching tabs replaces the list; asking for the current tab again returns
// the same accumulated list.
func (s *PostService) Feed(tab string) *PostList {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feed == nil || s.tab != tab {
		s.tab = tab
		s.feed = newPostList(func(ctx context.Context, cursor string, limit int) ([]*models.Post, string, error) {
			page, next, err := s.api.Posts(ctx, tab, cursor, limit)
			return asPtrs(page), next, err
		}, s.posts, s.limit)
	}
	return s.feed
}

// RefreshFeed drops the current tab's accumulated pages.
func (s *PostService) RefreshFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feed != nil {
		s.feed.Reset()
	}
}

// UserPosts returns a fresh list over a profile's posts.
func (s *PostService) UserPosts(username, sort string) *PostList {
	return newPostList(func(ctx context.Context, cursor string, limit int) ([]*models.Post, string, error) {
		page, next, err := s.api.UserPosts(ctx, username, sort, cursor, limit)
		return asPtrs(page), next, err
	}, s.posts, s.limit)
}

// Comments returns a fresh list over a post's comment thread.
func (s *PostService) Comments(postID string) *PostList {
	return newPostList(func(ctx context.Context, cursor string, limit int) ([]*models.Post, string, error) {
		page, next, err := s.api.Comments(ctx, postID, cursor, limit)
		return asPtrs(page), next, err
	}, s.posts, s.limit)
}

// CreatePost publishes a new post and tracks the returned copy.
func (s *PostService) CreatePost(ctx context.Context, content string, attachmentIDs []string) (*models.Post, error) {
	if content == "" && len(attachmentIDs) == 0 {
		return nil, fmt.Errorf("create post: %w: empty post", api.ErrValidation)
	}
	created, err := s.api.CreatePost(ctx, content, attachmentIDs)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	p := &created
	s.posts.Track(p)
	return p, nil
}

// CreateComment publishes a reply and bumps the parent's comment counter.
func (s *PostService) CreateComment(ctx context.Context, postID, content string) (*models.Post, error) {
	if content == "" {
		return nil, fmt.Errorf("create comment: %w: empty comment", api.ErrValidation)
	}
	created, err := s.api.CreateComment(ctx, postID, content)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	c := &created
	s.posts.Track(c)
	if parent := s.posts.Get(postID); parent != nil {
		parent.CommentsCount++
	}
	return c, nil
}

func (s *PostService) ToggleLike(ctx context.Context, id string) (bool, error) {
	return s.posts.ToggleLike(ctx, id)
}

func (s *PostService) ToggleRepost(ctx context.Context, id string) (bool, error) {
	return s.posts.ToggleRepost(ctx, id)
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	return s.posts.Delete(ctx, id)
}

func (s *PostService) MarkViewed(ctx context.Context, id string) {
	s.posts.MarkViewed(ctx, id)
}

func (s *PostService) Post(id string) *models.Post {
	return s.posts.Get(id)
}
