package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the app's secrets in the OS keychain.
	KeyringService = "jobwatch"
)

var ErrTokenNotFound = errors.New("telegram bot token not found in keyring")

// TelegramAccount is the keyring account holding the bot token for chatID.
func TelegramAccount(chatID string) string {
	return fmt.Sprintf("telegram:%s", strings.TrimSpace(chatID))
}

func GetBotToken(chatID string) (string, error) {
	if strings.TrimSpace(chatID) == "" {
		return "", errors.New("chat id is empty")
	}
	tok, err := keyring.Get(KeyringService, TelegramAccount(chatID))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring get: %w", err)
	}
	if strings.TrimSpace(tok) == "" {
		return "", ErrTokenNotFound
	}
	return strings.TrimSpace(tok), nil
}

func SetBotToken(chatID, token string) error {
	if strings.TrimSpace(chatID) == "" {
		return errors.New("chat id is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, TelegramAccount(chatID), strings.TrimSpace(token))
}

func DeleteBotToken(chatID string) error {
	if strings.TrimSpace(chatID) == "" {
		return errors.New("chat id is empty")
	}
	err := keyring.Delete(KeyringService, TelegramAccount(chatID))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrTokenNotFound
	}
	return err
}

// ResolveBotToken keeps an explicit token and otherwise falls back to the
// keyring. A keyring miss is not an error; the caller validates emptiness.
func ResolveBotToken(explicit, chatID string) (string, error) {
	if t := strings.TrimSpace(explicit); t != "" {
		return t, nil
	}
	tok, err := GetBotToken(chatID)
	if errors.Is(err, ErrTokenNotFound) {
		return "", nil
	}
	return tok, err
}
