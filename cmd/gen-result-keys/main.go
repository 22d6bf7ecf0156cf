// gen-result-keys creates the RSA key pair used to sign game results and can
// sign sample results for local testing.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/osse101/WinLedger_Go/internal/ingest"
)

const (
	privateKeyFile = "result_private.pem"
	publicKeyFile  = "result_public.pem"
	defaultBits    = 2048
	tokenLifetime  = 10 * time.Minute
)

func main() {
	outDir := flag.String("out", "keys", "Directory the key pair is written to")
	bits := flag.Int("bits", defaultBits, "RSA key size")
	signWith := flag.String("sign", "", "Private key to sign a sample result with instead of generating keys")
	guild := flag.String("guild", "", "Guild id the sample result belongs to")
	points := flag.Float64("points", 10, "Points of the sample result")
	clients := flag.String("clients", "", "Comma separated usernames of the sample result")
	flag.Parse()

	if *signWith != "" {
		token, err := signSample(*signWith, *guild, *points, strings.Split(*clients, ","))
		if err != nil {
			log.Fatalf("Failed to sign result: %v", err)
		}
		fmt.Println(token)
		return
	}

	if err := generate(*outDir, *bits); err != nil {
		log.Fatalf("Failed to generate keys: %v", err)
	}
	fmt.Printf("Generated %s and %s in %s\n", privateKeyFile, publicKeyFile, *outDir)
	fmt.Printf("Set RESULT_PUBLIC_KEY_PATH=%s\n", filepath.Join(*outDir, publicKeyFile))
}

func generate(dir string, bits int) error {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	priv := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	if err := os.WriteFile(filepath.Join(dir, privateKeyFile), priv, 0600); err != nil {
		return err
	}

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return err
	}
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return os.WriteFile(filepath.Join(dir, publicKeyFile), pub, 0644)
}

func signSample(keyPath, guild string, points float64, usernames []string) (string, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return "", err
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(raw)
	if err != nil {
		return "", err
	}

	claims := ingest.ResultClaims{
		Points: points,
		Clan:   guild,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		},
	}
	for _, u := range usernames {
		if u = strings.TrimSpace(u); u != "" {
			claims.Clients = append(claims.Clients, ingest.Client{Username: u})
		}
	}
	return jwt.NewWithClaims(jwt.GetSigningMethod(ingest.SigningMethod), claims).SignedString(key)
}
