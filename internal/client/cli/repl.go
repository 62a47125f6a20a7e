package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Contacts(ctx context.Context) error
	Sync(ctx context.Context) error
	Match(ctx context.Context) error
	AddContact(ctx context.Context) error
	RemoveContact(ctx context.Context) error
	Invite(ctx context.Context) error
	AcceptInvite(ctx context.Context) error
	Share(ctx context.Context) error
	Inbox(ctx context.Context) error
	Accept(ctx context.Context) error
	Notes(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the NoteLink CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate this device
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - contacts       — list cached contacts
//	  - sync           — refresh contacts from the server
//	  - match          — find registered users among phone numbers
//	  - add            — add a contact by account id
//	  - remove         — remove a contact
//	  - invite         — print a personal invite link
//	  - accept-invite  — accept someone's invite link
//	  - share          — share a note by phone number
//	  - inbox          — list incoming shares
//	  - accept         — accept an incoming share
//	  - notes          — list accepted shared notes
//	  - whoami         — show the current account
//	  - logout         — drop the session token
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("nl> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: contacts, sync, match, add, remove, invite, accept-invite, share, inbox, accept, notes, whoami, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "contacts":
			_ = a.Contacts(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "match":
			_ = a.Match(ctx)

		case "add":
			_ = a.AddContact(ctx)

		case "remove":
			_ = a.RemoveContact(ctx)

		case "invite":
			_ = a.Invite(ctx)

		case "accept-invite":
			_ = a.AcceptInvite(ctx)

		case "share":
			_ = a.Share(ctx)

		case "inbox":
			_ = a.Inbox(ctx)

		case "accept":
			_ = a.Accept(ctx)

		case "notes":
			_ = a.Notes(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
