// seed signs up a handful of dev accounts against the configured auth
// project so the sign-in flow can be tried locally.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/ErlanBelekov/social-discovery/internal/authclient"
	"github.com/ErlanBelekov/social-discovery/internal/domain"
)

const seedPassword = "discovery-dev-123"

var accounts = []string{
	"ada@discovery.test",
	"grace@discovery.test",
	"linus@discovery.test",
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	baseURL := os.Getenv("SUPABASE_URL")
	anonKey := os.Getenv("SUPABASE_ANON_KEY")
	if baseURL == "" || anonKey == "" {
		log.Fatal("SUPABASE_URL and SUPABASE_ANON_KEY must be set (run: direnv allow)")
	}

	api := authclient.NewAPI(baseURL, anonKey, &http.Client{Timeout: 10 * time.Second})
	if err := api.Ping(ctx); err != nil {
		log.Fatalf("auth service: %v", err)
	}

	var created, confirm, existing int
	for _, email := range accounts {
		res, err := api.SignUp(ctx, email, seedPassword)
		var ae *domain.AuthError
		switch {
		case errors.As(err, &ae) && ae.Kind == domain.KindUserExists:
			existing++
		case err != nil:
			log.Fatalf("sign up %s: %v", email, err)
		case res.Session == nil:
			confirm++
		default:
			created++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Accounts ready:         %d\n", created)
	fmt.Printf("  Awaiting confirmation:  %d  (check the project's inbox)\n", confirm)
	fmt.Printf("  Already registered:     %d\n", existing)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  open http://localhost:8080/auth")
	fmt.Println()
	for _, email := range accounts {
		fmt.Printf("    %-24s %s\n", email, seedPassword)
	}
}
