package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/client/models"
	"github.com/itd-social/itd-client/internal/logging"
)

// UserStore tracks the user profiles on screen and applies the optimistic
// follow toggle, keyed by username.
type UserStore struct {
	api api.UserAPI
	eng *Engine
	log logging.Logger

	mu    sync.Mutex
	users map[string]*models.User
}

func NewUserStore(userAPI api.UserAPI, eng *Engine, log logging.Logger) *UserStore {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &UserStore{
		api:   userAPI,
		eng:   eng,
		log:   log,
		users: make(map[string]*models.User),
	}
}

func (s *UserStore) Track(users ...*models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if u == nil || u.Username == "" {
			continue
		}
		s.users[u.Username] = u
	}
}

func (s *UserStore) Get(username string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[username]
}

// ToggleFollow flips the follow state optimistically and reports the new
// state. The follower counter moves with the flag and never goes below zero.
func (s *UserStore) ToggleFollow(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	u, ok := s.users[username]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("toggle follow: unknown user %q", username)
	}
	u.IsFollowing = !u.IsFollowing
	if u.IsFollowing {
		u.FollowersCount++
	} else if u.FollowersCount > 0 {
		u.FollowersCount--
	}
	following := u.IsFollowing
	s.mu.Unlock()

	s.eng.Dispatch("follow:"+username, func(ctx context.Context) error {
		if following {
			return s.api.FollowUser(ctx, username)
		}
		return s.api.UnfollowUser(ctx, username)
	})
	return following, nil
}
