// Package cli implements the interactive NoteLink command-line client.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/notelinkapp/notelink/internal/client/client"
	"github.com/notelinkapp/notelink/internal/client/config"
	"github.com/notelinkapp/notelink/internal/client/repositories/contacts"
	"github.com/notelinkapp/notelink/internal/client/repositories/metadata"
	"github.com/notelinkapp/notelink/internal/client/repositories/notes"
	"github.com/notelinkapp/notelink/internal/client/securestore"
	"github.com/notelinkapp/notelink/internal/client/services"
	"github.com/notelinkapp/notelink/internal/phonehash"

	_ "modernc.org/sqlite"
)

type App struct {
	config         *config.Config
	authService    services.AuthService
	contactService services.ContactService
	shareService   services.ShareService
	reader         *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)

	store, err := securestore.New(metadata.NewSQLiteRepository(db), c.SecretPath)
	if err != nil {
		return nil, err
	}

	hasher := phonehash.NewHMACStrategy([]byte(c.PhoneHashSalt))

	as := services.NewAuthService(apiClient, store)
	cs := services.NewContactService(apiClient, contacts.NewSQLiteRepository(db), hasher, as)
	ss := services.NewShareService(apiClient, notes.NewSQLiteRepository(db), hasher, as)

	if err := as.RestoreSession(ctx); err != nil {
		log.Printf("error restoring session: %s", err.Error())
	}

	return &App{
		config:         c,
		authService:    as,
		contactService: cs,
		shareService:   ss,
		reader:         bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsLoggedIn(context.Background())
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}
