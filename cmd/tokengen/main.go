// Package main provides a CLI tool for generating test session tokens for the
// refchain API. These tokens use the dev signing key and will NOT work in
// production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"refchain/internal/platform/middleware"
)

// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
const devSigningKey = "dev-secret-key-change-in-production"

const defaultTokenTTL = time.Hour

type tokenOutput struct {
	Token     string            `json:"token"`
	TenantID  string            `json:"tenant_id"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	tenantID := flag.String("tenant-id", "", "Tenant ID (UUID). Generated if empty.")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	signingKey := flag.String("signing-key", devSigningKey, "HMAC signing key (must match JWT_SIGNING_KEY)")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	tid := *tenantID
	if tid == "" {
		tid = uuid.New().String()
	} else if _, err := uuid.Parse(tid); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid tenant-id UUID: %s\n", tid)
		os.Exit(1)
	}

	now := time.Now()
	claims := middleware.SessionClaims{
		TenantID: tid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(*signingKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(tokenOutput{
			Token:     token,
			TenantID:  tid,
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Tenant Session Token (JWT)")
	fmt.Println("==========================")
	fmt.Printf("Tenant ID:  %s\n", tid)
	fmt.Printf("Expires In: %s\n", ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/references")
}
