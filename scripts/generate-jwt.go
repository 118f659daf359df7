//go:build ignore

// generate-jwt.go - Generates a development JWT plus the matching JWKS
//
// The bridge-server authenticates callers with RS256 tokens fetched from a
// JWKS endpoint. This script creates a throwaway RSA key, signs a token
// carrying the caller address, and writes the JWKS document that validates
// it. Serve the JWKS with any static file server and point jwks.url at it.
//
// Usage:
//   go run scripts/generate-jwt.go -address 0x<64 hex chars> [-sub dev-user]
//
// Output:
//   jwt-token.txt  the signed token, pass it as the Bearer token
//   jwks.json      the key set for the validator

package main

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	address  = flag.String("address", "", "Caller address claim (0x-prefixed, 32 bytes)")
	subject  = flag.String("sub", "dev-user", "Subject claim")
	issuer   = flag.String("issuer", "", "Issuer claim, must match jwks.issuer when set")
	lifetime = flag.Duration("lifetime", time.Hour, "Token lifetime")
	tokenOut = flag.String("token-out", "jwt-token.txt", "Token output file")
	jwksOut  = flag.String("jwks-out", "jwks.json", "JWKS output file")
)

func main() {
	flag.Parse()

	if *address == "" {
		fmt.Fprintln(os.Stderr, "missing -address: the validator maps the address claim onto the caller")
		os.Exit(1)
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate key: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     *subject,
		"address": *address,
		"iat":     now.Unix(),
		"exp":     now.Add(*lifetime).Unix(),
	}
	if *issuer != "" {
		claims["iss"] = *issuer
	}

	const kid = "dev-1"
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}

	jwks := map[string]any{
		"keys": []map[string]string{{
			"kid": kid,
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}},
	}
	jwksJSON, err := json.MarshalIndent(jwks, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode JWKS: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*tokenOut, []byte(signed+"\n"), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write token: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*jwksOut, append(jwksJSON, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write JWKS: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Bridge API JWT ===")
	fmt.Println()
	fmt.Printf("Token written to %s\n", *tokenOut)
	fmt.Printf("JWKS written to %s\n", *jwksOut)
	fmt.Println()
	fmt.Println("Claims:")
	claimsJSON, _ := json.MarshalIndent(claims, "", "  ")
	fmt.Println(string(claimsJSON))
	fmt.Println()
	fmt.Println("To use:")
	fmt.Printf("1. Serve the key set: python3 -m http.server --directory . 9999\n")
	fmt.Printf("2. Set jwks.url: http://localhost:9999/%s\n", *jwksOut)
	fmt.Printf("3. Call the API with: Authorization: Bearer $(cat %s)\n", *tokenOut)
}
