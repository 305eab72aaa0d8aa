package services

import (
	"context"
	"fmt"

	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/client/models"
	"github.com/itd-social/itd-client/internal/client/paging"
	"github.com/itd-social/itd-client/internal/client/store"
	"github.com/itd-social/itd-client/internal/logging"
)

// UserService exposes profiles, follow relations, and suggestions.
type UserService struct {
	api   api.UserAPI
	users *store.UserStore
	log   logging.Logger
	limit int
}

func NewUserService(userAPI api.UserAPI, users *store.UserStore, log logging.Logger, limit int) *UserService {
	if log == nil {
		log = logging.NewDiscard()
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &UserService{api: userAPI, users: users, log: log, limit: limit}
}

// Profile loads a profile and tracks it for follow toggles.
func (s *UserService) Profile(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("profile: %w: username required", api.ErrValidation)
	}
	u, err := s.api.UserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", username, err)
	}
	p := &u
	s.users.Track(p)
	return p, nil
}

// CurrentUser loads the signed-in user's own profile.
func (s *UserService) CurrentUser(ctx context.Context) (*models.User, error) {
	u, err := s.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	p := &u
	s.users.Track(p)
	return p, nil
}

// UpdateProfile applies partial profile edits and refreshes the tracked copy.
func (s *UserService) UpdateProfile(ctx context.Context, updates map[string]string) (*models.User, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("update profile: %w: nothing to update", api.ErrValidation)
	}
	u, err := s.api.UpdateProfile(ctx, updates)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	p := &u
	s.users.Track(p)
	return p, nil
}

func (s *UserService) ToggleFollow(ctx context.Context, username string) (bool, error) {
	return s.users.ToggleFollow(ctx, username)
}

// Followers returns a paginator over a profile's followers.
func (s *UserService) Followers(username string) *paging.Paginator[models.UserSuggestion] {
	return paging.New(func(ctx context.Context, cursor string, limit int) ([]models.UserSuggestion, string, error) {
		return s.api.Followers(ctx, username, cursor, limit)
	}, suggestionID, s.limit)
}

// Following returns a paginator over the accounts a profile follows.
func (s *UserService) Following(username string) *paging.Paginator[models.UserSuggestion] {
	return paging.New(func(ctx context.Context, cursor string, limit int) ([]models.UserSuggestion, string, error) {
		return s.api.Following(ctx, username, cursor, limit)
	}, suggestionID, s.limit)
}

func suggestionID(u models.UserSuggestion) string { return u.Username }

// WhoToFollow returns the server's follow suggestions.
func (s *UserService) WhoToFollow(ctx context.Context) ([]models.UserSuggestion, error) {
	users, err := s.api.WhoToFollow(ctx)
	if err != nil {
		return nil, fmt.Errorf("who to follow: %w", err)
	}
	return users, nil
}

// TopClans returns the clan leaderboard.
func (s *UserService) TopClans(ctx context.Context) ([]models.Clan, error) {
	clans, err := s.api.TopClans(ctx)
	if err != nil {
		return nil, fmt.Errorf("top clans: %w", err)
	}
	return clans, nil
}

func (s *UserService) User(username string) *models.User {
	return s.users.Get(username)
}
