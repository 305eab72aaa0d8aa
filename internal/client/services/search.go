package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/client/models"
	"github.com/itd-social/itd-client/internal/client/store"
	"github.com/itd-social/itd-client/internal/logging"
)

// SearchService exposes search and hashtag browsing.
type SearchService struct {
	api   api.SearchAPI
	posts *store.PostStore
	log   logging.Logger
	limit int
}

func NewSearchService(searchAPI api.SearchAPI, posts *store.PostStore, log logging.Logger, limit int) *SearchService {
	if log == nil {
		log = logging.NewDiscard()
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &SearchService{api: searchAPI, posts: posts, log: log, limit: limit}
}

// Search runs a combined users-and-posts query.
func (s *SearchService) Search(ctx context.Context, query string) (models.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.SearchResults{}, fmt.Errorf("search: %w: empty query", api.ErrValidation)
	}
	res, err := s.api.Search(ctx, query)
	if err != nil {
		return models.SearchResults{}, fmt.Errorf("search %q: %w", query, err)
	}
	return res, nil
}

// SearchUsers runs a user-only query, e.g. for mention completion.
func (s *SearchService) SearchUsers(ctx context.Context, query string) ([]models.UserSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search users: %w: empty query", api.ErrValidation)
	}
	users, err := s.api.SearchUsers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search users %q: %w", query, err)
	}
	return users, nil
}

// TrendingHashtags returns the current trending tags.
func (s *SearchService) TrendingHashtags(ctx context.Context) ([]models.Hashtag, error) {
	tags, err := s.api.TrendingHashtags(ctx)
	if err != nil {
		return nil, fmt.Errorf("trending hashtags: %w", err)
	}
	return tags, nil
}

// SearchHashtags matches tags by prefix, e.g. for composer completion.
func (s *SearchService) SearchHashtags(ctx context.Context, query string) ([]models.Hashtag, error) {
	query = strings.TrimSpace(strings.TrimPrefix(query, "#"))
	if query == "" {
		return nil, fmt.Errorf("search hashtags: %w: empty query", api.ErrValidation)
	}
	tags, err := s.api.SearchHashtags(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search hashtags %q: %w", query, err)
	}
	return tags, nil
}

// HashtagPosts returns a list over the posts carrying a tag.
func (s *SearchService) HashtagPosts(tag string) *PostList {
	tag = strings.TrimPrefix(tag, "#")
	return newPostList(func(ctx context.Context, cursor string, limit int) ([]*models.Post, string, error) {
		page, next, err := s.api.HashtagPosts(ctx, tag, cursor, limit)
		return asPtrs(page), next, err
	}, s.posts, s.limit)
}
