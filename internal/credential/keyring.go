package credential

import (
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "trello-bridge"

// Credential keys stored in the system keyring. Each has an
// environment variable override for headless deployments.
const (
	KeyDiscordToken = "discord_token"
	KeyTrelloAPIKey = "trello_api_key"
	KeyTrelloToken  = "trello_token"
)

// envOverrides maps credential keys to their environment variables.
var envOverrides = map[string]string{
	KeyDiscordToken: "DISCORD_TOKEN",
	KeyTrelloAPIKey: "TRELLO_API_KEY",
	KeyTrelloToken:  "TRELLO_TOKEN",
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/trello-bridge/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("trello-bridge-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential, preferring the environment variable
// override and falling back to the system keyring.
func Get(key string) (string, error) {
	if env, ok := envOverrides[key]; ok {
		if value := os.Getenv(env); value != "" {
			return value, nil
		}
	}

	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
