package cli

import (
	"context"
	"fmt"
	"os"
)

// Login authenticates this device. The phone number is optional: leaving it
// empty keeps the account reachable only by invite links and direct adds.
func (a *App) Login(ctx context.Context) error {
	phone, err := GetSimpleText(a.reader, "Phone number (optional, enables contact matching)", os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	result, err := a.authService.Authenticate(ctx, phone)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return err
	}

	if result.IsNewUser {
		fmt.Println("Welcome! A new account was created for this device.")
	} else {
		fmt.Println("Welcome back!")
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("Account: %s\n", a.authService.AccountID(ctx))
	return nil
}
