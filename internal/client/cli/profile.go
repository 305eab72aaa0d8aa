package cli

import (
	"context"
	"fmt"
	"log"
)

// Whoami shows the signed-in user's own profile.
func (a *App) Whoami(ctx context.Context) error {
	u, err := a.users.CurrentUser(ctx)
	if err != nil {
		log.Printf("Whoami: %s", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "@%s  %s\n  posts:%d followers:%d following:%d\n",
		u.Username, u.DisplayName, u.PostsCount, u.FollowersCount, u.FollowingCount)
	return nil
}

func (a *App) Profile(ctx context.Context, username string) error {
	u, err := a.users.Profile(ctx, username)
	if err != nil {
		log.Printf("Profile: %s", err.Error())
		return err
	}

	badge := ""
	if u.Verified {
		badge = " ✓"
	}
	rel := ""
	if u.IsFollowing {
		rel = " (following)"
	}
	fmt.Fprintf(a.out, "@%s%s  %s%s\n", u.Username, badge, u.DisplayName, rel)
	if u.Bio != "" {
		fmt.Fprintf(a.out, "  %s\n", u.Bio)
	}
	fmt.Fprintf(a.out, "  posts:%d followers:%d following:%d\n",
		u.PostsCount, u.FollowersCount, u.FollowingCount)

	// show the profile's latest posts under the header
	list := a.posts.UserPosts(username, "new")
	page, err := list.LoadMore(ctx)
	if err != nil {
		log.Printf("Loading posts: %s", err.Error())
		return err
	}
	a.printList(page)
	return nil
}

func (a *App) Follow(ctx context.Context, username string) error {
	if a.users.User(username) == nil {
		// the toggle needs a tracked profile
		if _, err := a.users.Profile(ctx, username); err != nil {
			log.Printf("Follow: %s", err.Error())
			return err
		}
	}
	following, err := a.users.ToggleFollow(ctx, username)
	if err != nil {
		log.Printf("Follow: %s", err.Error())
		return err
	}
	if following {
		log.Printf("Following @%s", username)
	} else {
		log.Printf("Unfollowed @%s", username)
	}
	return nil
}

func (a *App) Suggestions(ctx context.Context) error {
	users, err := a.users.WhoToFollow(ctx)
	if err != nil {
		log.Printf("Suggestions: %s", err.Error())
		return err
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "@%s  %s (%d followers)\n", u.Username, u.DisplayName, u.FollowersCount)
	}
	return nil
}

func (a *App) Clans(ctx context.Context) error {
	clans, err := a.users.TopClans(ctx)
	if err != nil {
		log.Printf("Clans: %s", err.Error())
		return err
	}
	for i, c := range clans {
		fmt.Fprintf(a.out, "%2d. %s  %d members\n", i+1, c.Avatar, c.MemberCount)
	}
	return nil
}
