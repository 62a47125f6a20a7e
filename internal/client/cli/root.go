package cli

import (
	"bufio"
	"context"
	"log"
	"os"
)

func (a *App) getStatus() string {
	if a.isLoggedIn() {
		return "logged in"
	}
	return "logged out"
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to NoteLink CLI (type 'help' for commands)")

	// Deep-linked invite: log in first if needed, then accept.
	if a.config.InviteToken != "" {
		if !a.isLoggedIn() {
			_ = a.Login(ctx)
		}
		if a.isLoggedIn() {
			if contact, err := a.contactService.AcceptInvite(ctx, a.config.InviteToken); err == nil {
				log.Printf("Invite accepted: you and %s are now contacts", contact.AccountID)
			} else {
				log.Printf("Invite not accepted: %v", err)
			}
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
