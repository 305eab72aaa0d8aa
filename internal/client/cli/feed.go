package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/itd-social/itd-client/internal/client/models"
)

func (a *App) printPost(p *models.Post) {
	marks := ""
	if p.IsLiked {
		marks += " ♥"
	}
	if p.IsReposted {
		marks += " ⟳"
	}
	fmt.Fprintf(a.out, "[%s] @%s%s\n  %s\n  likes:%d comments:%d reposts:%d\n",
		p.ID, p.Author.Username, marks, p.Content,
		p.LikesCount, p.CommentsCount, p.RepostsCount)
	if p.OriginalPost != nil {
		fmt.Fprintf(a.out, "  ↳ reposts [%s] @%s: %s\n",
			p.OriginalPost.ID, p.OriginalPost.Author.Username, p.OriginalPost.Content)
	}
}

func (a *App) printList(list []*models.Post) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "(nothing here)")
		return
	}
	for _, p := range list {
		a.printPost(p)
	}
}

// Feed switches to a tab and shows its first page.
func (a *App) Feed(ctx context.Context, tab string) error {
	a.feed = a.posts.Feed(tab)
	if len(a.feed.Posts()) == 0 {
		if _, err := a.feed.LoadMore(ctx); err != nil {
			log.Printf("Loading feed: %s", err.Error())
			return err
		}
	}
	a.printList(a.feed.Posts())
	return nil
}

// More appends the next page of the current feed.
func (a *App) More(ctx context.Context) error {
	if a.feed == nil {
		return a.Feed(ctx, "for-you")
	}
	appended, err := a.feed.LoadMore(ctx)
	if err != nil {
		log.Printf("Loading more: %s", err.Error())
		return err
	}
	if len(appended) == 0 && a.feed.Exhausted() {
		fmt.Fprintln(a.out, "(end of feed)")
		return nil
	}
	a.printList(appended)
	return nil
}

// Refresh reloads the current feed from the top.
func (a *App) Refresh(ctx context.Context) error {
	if a.feed == nil {
		return a.Feed(ctx, "for-you")
	}
	a.feed.Reset()
	if _, err := a.feed.LoadMore(ctx); err != nil {
		log.Printf("Refreshing: %s", err.Error())
		return err
	}
	a.printList(a.feed.Posts())
	return nil
}

func (a *App) Compose(ctx context.Context) error {
	content, err := GetMultiline(a.reader, "Write your post", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	p, err := a.posts.CreatePost(ctx, content, nil)
	if err != nil {
		log.Printf("Posting: %s", err.Error())
		return err
	}
	log.Printf("Posted as %s", p.ID)
	return nil
}

func (a *App) Comment(ctx context.Context, postID string) error {
	content, err := GetMultiline(a.reader, "Write your reply", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	c, err := a.posts.CreateComment(ctx, postID, content)
	if err != nil {
		log.Printf("Replying: %s", err.Error())
		return err
	}
	log.Printf("Replied as %s", c.ID)
	return nil
}

// Thread shows a post with its comment thread under it.
func (a *App) Thread(ctx context.Context, postID string) error {
	if p := a.posts.Post(postID); p != nil {
		a.printPost(p)
	}
	list := a.posts.Comments(postID)
	page, err := list.LoadMore(ctx)
	if err != nil {
		log.Printf("Loading comments: %s", err.Error())
		return err
	}
	a.printList(page)
	return nil
}

func (a *App) Like(ctx context.Context, postID string) error {
	liked, err := a.posts.ToggleLike(ctx, postID)
	if err != nil {
		log.Printf("%s", err.Error())
		return err
	}
	if liked {
		log.Printf("Liked %s", postID)
	} else {
		log.Printf("Unliked %s", postID)
	}
	return nil
}

func (a *App) Repost(ctx context.Context, postID string) error {
	reposted, err := a.posts.ToggleRepost(ctx, postID)
	if err != nil {
		log.Printf("%s", err.Error())
		return err
	}
	if reposted {
		log.Printf("Reposted %s", postID)
	} else {
		log.Printf("Removed repost of %s", postID)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, postID string) error {
	if err := a.posts.Delete(ctx, postID); err != nil {
		log.Printf("Deleting: %s", err.Error())
		return err
	}
	log.Printf("Deleted %s", postID)
	return nil
}
