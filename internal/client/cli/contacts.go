package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Contacts prints the cached contact list. It never touches the network, so
// it keeps working offline; use Sync to refresh.
func (a *App) Contacts(ctx context.Context) error {
	list, err := a.contactService.CachedContacts(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	if len(list) == 0 {
		fmt.Println("No contacts cached. Try 'sync'.")
		return nil
	}

	for _, c := range list {
		marker := " "
		if c.Mutual {
			marker = "*"
		}
		fmt.Printf("%s %s  %s\n", marker, c.AccountID, c.Username)
	}
	fmt.Println("(* = mutual)")
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	list, err := a.contactService.RefreshContacts(ctx)
	if err != nil {
		fmt.Printf("Sync failed: %v\n", err)
		return err
	}
	fmt.Printf("Synced %d contact(s).\n", len(list))
	return nil
}

// Match reads a comma-separated list of phone numbers and reports which of
// them belong to registered users.
func (a *App) Match(ctx context.Context) error {
	line, err := GetSimpleText(a.reader, "Phone numbers (comma-separated)", os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	phones := strings.Split(line, ",")
	for i := range phones {
		phones[i] = strings.TrimSpace(phones[i])
	}

	users, err := a.contactService.FindUsersFromPhoneContacts(ctx, phones)
	if err != nil {
		fmt.Printf("Match failed: %v\n", err)
		return err
	}

	if len(users) == 0 {
		fmt.Println("No registered users found.")
		return nil
	}
	for _, u := range users {
		fmt.Printf("%s  %s\n", u.ID, u.Username)
	}
	return nil
}

func (a *App) AddContact(ctx context.Context) error {
	userID, err := GetSimpleText(a.reader, "Account id to add", os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	contact, err := a.contactService.AddContact(ctx, userID)
	if err != nil {
		fmt.Printf("Add failed: %v\n", err)
		return err
	}

	if contact.Mutual {
		fmt.Println("Contact added. You are now mutual contacts.")
	} else {
		fmt.Println("Contact added.")
	}
	return nil
}

func (a *App) RemoveContact(ctx context.Context) error {
	userID, err := GetSimpleText(a.reader, "Account id to remove", os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	if err := a.contactService.RemoveContact(ctx, userID); err != nil {
		fmt.Printf("Remove failed: %v\n", err)
		return err
	}
	fmt.Println("Contact removed.")
	return nil
}

func (a *App) Invite(ctx context.Context) error {
	link, err := a.contactService.GetInviteLink(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}
	fmt.Printf("Share this link: %s\n", link)
	return nil
}

func (a *App) AcceptInvite(ctx context.Context) error {
	link, err := GetSimpleText(a.reader, "Invite link (or token)", os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	contact, err := a.contactService.AcceptInvite(ctx, link)
	if err != nil {
		fmt.Printf("Accept failed: %v\n", err)
		return err
	}
	fmt.Printf("You and %s are now contacts.\n", contact.AccountID)
	return nil
}
