package cli

import (
	"context"
	"fmt"
	"os"
)

// Share sends a note to a recipient by phone number. The recipient does not
// have to be registered yet; the share waits for them server-side.
func (a *App) Share(ctx context.Context) error {
	phone, err := GetSimpleText(a.reader, "Recipient phone number", os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}
	noteID, err := GetSimpleText(a.reader, "Note id", os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	share, err := a.shareService.ShareNote(ctx, phone, noteID)
	if err != nil {
		fmt.Printf("Share failed: %v\n", err)
		return err
	}

	if share.Status == "resolved" {
		fmt.Println("Shared. The recipient will see it right away.")
	} else {
		fmt.Println("Shared. The note will be delivered when the recipient signs up.")
	}
	return nil
}

func (a *App) Inbox(ctx context.Context) error {
	list, err := a.shareService.IncomingShares(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	if len(list) == 0 {
		fmt.Println("No incoming shares.")
		return nil
	}
	for _, s := range list {
		fmt.Printf("%s  note %s from %s  [%s]\n", s.ID, s.NoteID, s.InviterID, s.Status)
	}
	return nil
}

func (a *App) Accept(ctx context.Context) error {
	shareID, err := GetSimpleText(a.reader, "Share id to accept", os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	note, err := a.shareService.AcceptShare(ctx, shareID)
	if err != nil {
		fmt.Printf("Accept failed: %v\n", err)
		return err
	}
	fmt.Printf("Note %s saved locally.\n", note.ID)
	return nil
}

func (a *App) Notes(ctx context.Context) error {
	list, err := a.shareService.AcceptedNotes(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	if len(list) == 0 {
		fmt.Println("No shared notes accepted yet.")
		return nil
	}
	for _, n := range list {
		fmt.Printf("%s  from %s  accepted %s\n", n.ID, n.SharedBy, n.AcceptedAt.Format("2006-01-02"))
	}
	return nil
}
