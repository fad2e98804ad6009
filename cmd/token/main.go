// Command token issues a bearer token for local testing of the API.
//
//	JWT_SECRET=... go run ./cmd/token -user 7c9e6679-7425-40de-944b-e07fc1f90ae7 -email a@campus.edu
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"campusengage/internal/adapters/auth"
)

func main() {
	userID := flag.String("user", "", "user ID (subject)")
	email := flag.String("email", "", "email claim")
	expiry := flag.Duration("expiry", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" || *userID == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET and -user are required")
		os.Exit(2)
	}

	token, err := auth.NewJWT(secret).Issue(*userID, *email, *expiry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
