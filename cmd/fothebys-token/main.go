// Command fothebys-token mints development bearer tokens signed with the
// configured auth secret.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	user := flag.String("user", "", "user id (token subject)")
	role := flag.String("role", string(auth.RoleBuyer), "role: admin, seller or buyer")
	clientID := flag.String("client", "", "client identifier carried in the token")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	tok, err := auth.NewTokens(cfg.Auth, clock.Real{}).Issue(auth.Identity{
		UserID:   *user,
		ClientID: *clientID,
		Role:     auth.Role(*role),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "issuing token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
