package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/crypto"
)

// apikey-gen mints an API key secret offline and prints both the secret and
// the SHA-256 digest stored in the api_keys table, for seeding keys without
// going through the admin API.
func main() {
	count := flag.Int("count", 1, "number of keys to generate")
	flag.Parse()

	if err := validateCount(*count); err != nil {
		log.Fatal(err)
	}

	for i := 0; i < *count; i++ {
		secret, digest, err := buildCredential()
		if err != nil {
			log.Fatalf("failed to generate api key: %v", err)
		}
		fmt.Printf("API_KEY=%s\n", secret)
		fmt.Printf("KEY_HASH=%s\n", digest)
	}
}

func validateCount(count int) error {
	if count < 1 || count > 100 {
		return fmt.Errorf("invalid count: %d (must be 1-100)", count)
	}
	return nil
}

func buildCredential() (secret, digest string, err error) {
	secret, err = crypto.GenerateApiKeySecret()
	if err != nil {
		return "", "", err
	}
	return secret, crypto.HashSecret(secret), nil
}
