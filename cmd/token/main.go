// Command token signs an access token for local testing and administration.
//
//	JWT_SECRET=... token -user alice -role ADMIN
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tendant/content-share/pkg/contentshare/auth"
	"github.com/tendant/content-share/pkg/contentshare/config"
)

func main() {
	_ = config.LoadDotEnv()

	userID := flag.String("user", "", "user id placed in the token subject")
	name := flag.String("name", "", "display name")
	role := flag.String("role", "", "role, e.g. ADMIN")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	flag.Parse()

	manager, err := auth.NewManager(os.Getenv("JWT_SECRET"), *ttl)
	if err != nil {
		slog.Error("JWT_SECRET must be set", "err", err)
		os.Exit(2)
	}

	token, err := manager.GenerateToken(auth.Identity{UserID: *userID, Name: *name, Role: *role})
	if err != nil {
		slog.Error("Failed to sign token", "err", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
