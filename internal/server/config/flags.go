package config

import (
	"flag"
	"os"
	"time"

	"github.com/notelinkapp/notelink/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-p string   phone hash salt
//	-l int      pending share TTL, hours (0 disables expiry)
//	-j int      janitor interval, minutes
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-p", "-l", "-j"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.PhoneHashSalt, "p", config.PhoneHashSalt, "phone hash salt")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	pendingShareTTL := fs.Int("l", int(config.PendingShareTTL.Hours()), "pending share TTL (in hours, 0 disables expiry)")
	janitorInterval := fs.Int("j", int(config.JanitorInterval.Minutes()), "janitor interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.PendingShareTTL = time.Duration(*pendingShareTTL) * time.Hour
	config.JanitorInterval = time.Duration(*janitorInterval) * time.Minute
}
