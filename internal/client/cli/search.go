package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) Search(ctx context.Context, query string) error {
	res, err := a.search.Search(ctx, query)
	if err != nil {
		log.Printf("Search: %s", err.Error())
		return err
	}
	for _, u := range res.Users {
		fmt.Fprintf(a.out, "@%s  %s\n", u.Username, u.DisplayName)
	}
	for _, h := range res.Hashtags {
		fmt.Fprintf(a.out, "#%s  %d posts\n", h.Tag, h.PostsCount)
	}
	if len(res.Users) == 0 && len(res.Hashtags) == 0 {
		fmt.Fprintln(a.out, "(no results)")
	}
	return nil
}

func (a *App) Tags(ctx context.Context) error {
	tags, err := a.search.TrendingHashtags(ctx)
	if err != nil {
		log.Printf("Trending: %s", err.Error())
		return err
	}
	for _, h := range tags {
		fmt.Fprintf(a.out, "#%s  %d posts\n", h.Tag, h.PostsCount)
	}
	return nil
}

func (a *App) Tag(ctx context.Context, name string) error {
	list := a.search.HashtagPosts(name)
	page, err := list.LoadMore(ctx)
	if err != nil {
		log.Printf("Hashtag: %s", err.Error())
		return err
	}
	a.printList(page)
	return nil
}
