package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) Notifications(ctx context.Context) error {
	list := a.notifs.List("")
	page, err := list.Next(ctx)
	if err != nil {
		log.Printf("Notifications: %s", err.Error())
		return err
	}
	if len(page) == 0 {
		fmt.Fprintln(a.out, "(no notifications)")
		return nil
	}

	var ids []string
	for _, n := range page {
		mark := " "
		if !n.IsRead {
			mark = "*"
			ids = append(ids, n.ID)
		}
		actor := ""
		if n.FromUser != nil {
			actor = "@" + n.FromUser.Username + " "
		}
		fmt.Fprintf(a.out, "%s [%s] %s%s\n", mark, n.Type, actor, n.Message)
	}

	// viewing the list marks what was shown as read
	if err := a.notifs.MarkRead(ctx, ids); err != nil {
		log.Printf("Marking read: %s", err.Error())
	}
	return nil
}

// Unread shows the current unread total, fetched fresh.
func (a *App) Unread(ctx context.Context) error {
	n, err := a.notifs.UnreadCount(ctx)
	if err != nil {
		log.Printf("Unread: %s", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "%d unread\n", n)
	return nil
}

func (a *App) ReadAll(ctx context.Context) error {
	if err := a.notifs.MarkAllRead(ctx); err != nil {
		log.Printf("Mark all read: %s", err.Error())
		return err
	}
	log.Printf("All notifications marked read")
	return nil
}
