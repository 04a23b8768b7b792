// Command tokengen mints scoped bearer tokens for agents.
//
// The token name follows the "<agent>-<env>" convention the hub uses to bind
// producer identity, e.g.:
//
//	tokengen -agent energyapp -env prod -scopes hub:write
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"hubgate/internal/platform/config"
	"hubgate/internal/token"
)

func main() {
	agent := flag.String("agent", "test-agent", "agent name, becomes the token's bound source identity")
	env := flag.String("env", "dev", "deployment environment suffix")
	scopes := flag.String("scopes", token.ScopeWrite, "comma-separated scopes")
	userID := flag.String("user", "", "issuing user id recorded as the token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime; 0 issues a non-expiring token")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	name := fmt.Sprintf("%s-%s", *agent, *env)
	scopeList := strings.Split(*scopes, ",")
	for i := range scopeList {
		scopeList[i] = strings.TrimSpace(scopeList[i])
	}

	tokens := token.NewJWTService(cfg.TokenSigningKey, cfg.TokenIssuer)
	signed, err := tokens.Issue(name, *userID, scopeList, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to issue token:", err)
		os.Exit(1)
	}

	fmt.Printf("agent:  %s\n", *agent)
	fmt.Printf("env:    %s\n", *env)
	fmt.Printf("scopes: %s\n", strings.Join(scopeList, ", "))
	if *ttl > 0 {
		fmt.Printf("expiry: %s\n", time.Now().Add(*ttl).Format(time.RFC3339))
	}
	fmt.Printf("token:  %s\n", signed)
}
