// AngelaMos | 2026
// main.go

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apptnu/portal/internal/auth"
)

func main() {
	privateKey := flag.String("private", "keys/private.pem", "private key output path")
	publicKey := flag.String("public", "keys/public.pem", "public key output path")
	flag.Parse()

	for _, path := range []string{*privateKey, *publicKey} {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
			os.Exit(1)
		}
	}

	if err := auth.GenerateKeyPair(*privateKey, *publicKey); err != nil {
		fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s and %s\n", *privateKey, *publicKey)
}
