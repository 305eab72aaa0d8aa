package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	VerifyOtp(ctx context.Context, code string) error
	ResendOtp(ctx context.Context) error
	Back(ctx context.Context) error
	Logout(ctx context.Context) error

	Feed(ctx context.Context, tab string) error
	More(ctx context.Context) error
	Refresh(ctx context.Context) error
	Compose(ctx context.Context) error
	Comment(ctx context.Context, postID string) error
	Thread(ctx context.Context, postID string) error
	Like(ctx context.Context, postID string) error
	Repost(ctx context.Context, postID string) error
	Delete(ctx context.Context, postID string) error

	Whoami(ctx context.Context) error
	Profile(ctx context.Context, username string) error
	Follow(ctx context.Context, username string) error
	Suggestions(ctx context.Context) error
	Clans(ctx context.Context) error

	Notifications(ctx context.Context) error
	Unread(ctx context.Context) error
	ReadAll(ctx context.Context) error

	Search(ctx context.Context, query string) error
	Tags(ctx context.Context) error
	Tag(ctx context.Context, name string) error
}

const (
	helpLoggedOut = "Available commands: login, register, otp <code>, resend, back, exit"
	helpLoggedIn  = "Available commands: feed [tab], more, refresh, post, comment <id>, " +
		"comments <id>, like <id>, repost <id>, delete <id>, whoami, profile <user>, " +
		"follow <user>, suggestions, clans, notifications, count, readall, " +
		"search <query>, tags, tag <name>, logout, exit"
)

// runREPL reads a line, takes the first token as the command, and dispatches.
// Handlers print their own errors; the loop only reports unknown commands and
// missing arguments. Exits on EOF, "exit", or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("itd %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		arg := func(usage string) (string, bool) {
			if len(args) == 0 {
				printlnFn("Usage: " + usage)
				return "", false
			}
			return args[0], true
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			_ = a.Login(ctx)
		case "register":
			_ = a.Register(ctx)
		case "otp":
			if code, ok := arg("otp <code>"); ok {
				_ = a.VerifyOtp(ctx, code)
			}
		case "resend":
			_ = a.ResendOtp(ctx)
		case "back":
			_ = a.Back(ctx)
		case "logout":
			_ = a.Logout(ctx)

		case "feed", "f":
			tab := "for-you"
			if len(args) > 0 {
				tab = args[0]
			}
			_ = a.Feed(ctx, tab)
		case "more", "m":
			_ = a.More(ctx)
		case "refresh":
			_ = a.Refresh(ctx)
		case "post":
			_ = a.Compose(ctx)
		case "comment":
			if id, ok := arg("comment <id>"); ok {
				_ = a.Comment(ctx, id)
			}
		case "comments":
			if id, ok := arg("comments <id>"); ok {
				_ = a.Thread(ctx, id)
			}
		case "like":
			if id, ok := arg("like <id>"); ok {
				_ = a.Like(ctx, id)
			}
		case "repost":
			if id, ok := arg("repost <id>"); ok {
				_ = a.Repost(ctx, id)
			}
		case "delete":
			if id, ok := arg("delete <id>"); ok {
				_ = a.Delete(ctx, id)
			}

		case "whoami":
			_ = a.Whoami(ctx)
		case "profile":
			if name, ok := arg("profile <user>"); ok {
				_ = a.Profile(ctx, name)
			}
		case "follow":
			if name, ok := arg("follow <user>"); ok {
				_ = a.Follow(ctx, name)
			}
		case "suggestions":
			_ = a.Suggestions(ctx)
		case "clans":
			_ = a.Clans(ctx)

		case "notifications", "n":
			_ = a.Notifications(ctx)
		case "count":
			_ = a.Unread(ctx)
		case "readall":
			_ = a.ReadAll(ctx)

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <query>")
				continue
			}
			_ = a.Search(ctx, strings.Join(args, " "))
		case "tags":
			_ = a.Tags(ctx)
		case "tag":
			if name, ok := arg("tag <name>"); ok {
				_ = a.Tag(ctx, name)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
