package authentication

// The session token lives in the OS keyring, never on disk.
import (
	"encoding/json"
	"errors"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "aquarium-cli"
	tokenKey    = "session"
)

type StoredCredentials struct {
	Token     string `json:"token"`
	APIURL    string `json:"api_url"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	ExpiresAt int64  `json:"expires_at"`
}

// Expired reports whether the stored session has passed its expiry.
func (c *StoredCredentials) Expired(now time.Time) bool {
	return c.ExpiresAt > 0 && now.Unix() >= c.ExpiresAt
}

func StoreTokens(creds *StoredCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, tokenKey, string(data))
}

// GetTokens returns nil and no error when nobody is logged in.
func GetTokens() (*StoredCredentials, error) {
	value, err := keyring.Get(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var creds StoredCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func DeleteTokens() error {
	err := keyring.Delete(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
