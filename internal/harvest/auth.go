package harvest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

const (
	// KeyringService is the OS keyring service name; the account id is the keyring user
	KeyringService = "timesheet-bot"
	// TokenEnvVar overrides the keyring when the config has no token
	TokenEnvVar = "HARVEST_ACCESS_TOKEN"
)

// ErrNoToken is returned when no access token is configured anywhere
var ErrNoToken = errors.New("no Harvest access token configured")

// ResolveToken picks the access token from, in order:
// the config value, $HARVEST_ACCESS_TOKEN, the OS keyring.
func ResolveToken(configToken, accountID string, logger *zap.Logger) (string, error) {
	if token := strings.TrimSpace(configToken); token != "" {
		logger.Debug("Using access token from config")
		return token, nil
	}

	if token := strings.TrimSpace(os.Getenv(TokenEnvVar)); token != "" {
		logger.Debug("Using access token from environment", zap.String("var", TokenEnvVar))
		return token, nil
	}

	token, err := keyring.Get(KeyringService, accountID)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: set harvest.access_token, %s or run 'auth set'", ErrNoToken, TokenEnvVar)
		}
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}

	logger.Debug("Using access token from keyring", zap.String("account_id", accountID))
	return token, nil
}

// StoreToken saves the access token for accountID in the OS keyring
func StoreToken(accountID, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token must not be empty")
	}
	if err := keyring.Set(KeyringService, accountID, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// ClearToken removes the stored access token. A missing token is not an error.
func ClearToken(accountID string) error {
	if err := keyring.Delete(KeyringService, accountID); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}
