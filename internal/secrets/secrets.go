package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "ftalerts"

// GetClientSecret resolves the OAuth client secret: OS keychain first, then
// the FT_CLIENT_SECRET environment variable.
func GetClientSecret(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		secret, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(secret) != "" {
			return secret, nil
		}
	}
	if v := strings.TrimSpace(os.Getenv("FT_CLIENT_SECRET")); v != "" {
		return v, nil
	}
	return "", errors.New("API client secret not found (set it in the keychain or via FT_CLIENT_SECRET)")
}

func SetClientSecret(account string, secret string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, secret)
}

func DeleteClientSecret(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// ClientSecretAccount names the keychain entry for a given API client id.
func ClientSecretAccount(clientID string) string {
	return fmt.Sprintf("ftalerts:api:%s", clientID)
}
