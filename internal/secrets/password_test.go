package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestBotTokenLifecycle(t *testing.T) {
	keyring.MockInit()

	_, err := GetBotToken("42")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, SetBotToken("42", " 123:abc "))
	tok, err := GetBotToken("42")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", tok)

	require.NoError(t, DeleteBotToken("42"))
	_, err = GetBotToken("42")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	assert.ErrorIs(t, DeleteBotToken("42"), ErrTokenNotFound)
}

func TestResolveBotToken(t *testing.T) {
	keyring.MockInit()

	tok, err := ResolveBotToken(" env-token ", "42")
	require.NoError(t, err)
	assert.Equal(t, "env-token", tok)

	tok, err = ResolveBotToken("", "42")
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, SetBotToken("42", "kr-token"))
	tok, err = ResolveBotToken("", "42")
	require.NoError(t, err)
	assert.Equal(t, "kr-token", tok)
}

func TestEmptyArguments(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, SetBotToken("", "x"))
	assert.Error(t, SetBotToken("1", " "))
	assert.Error(t, DeleteBotToken(""))
	_, err := GetBotToken("")
	assert.Error(t, err)
}

func TestTelegramAccount(t *testing.T) {
	assert.Equal(t, "telegram:-100123", TelegramAccount(" -100123 "))
}
