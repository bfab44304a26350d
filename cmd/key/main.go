package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ship-track/internal/cli"
)

func main() {
	var (
		actorID    = flag.String("actor-id", "", "ID of the actor (subject)")
		capability = flag.String("capability", "PUBLIC", "Actor capability: ADMIN | PUBLIC")
		secret     = flag.String("secret", "", "JWT HMAC secret (HS256)")
	)
	flag.Parse()

	if *actorID == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: key --actor-id=<id> --capability=ADMIN --secret='<secret>'")
		os.Exit(2)
	}

	token, claims, err := cli.GenerateActorToken(*secret, *actorID, *capability)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println("TOKEN:")
	fmt.Println(token)
	fmt.Println("\nCLAIMS:")
	fmt.Printf("  sub:        %s\n", claims.Subject)
	fmt.Printf("  capability: %s\n", claims.Capability)
	fmt.Printf("  iat:        %s\n", claims.IssuedAt.Time.UTC().Format(time.RFC3339))
	fmt.Printf("  exp:        %s\n", claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
}
