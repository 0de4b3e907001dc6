package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// QRCodeKey builds the lookup key for a scan code search. Empty parts are kept so that
// a wallet-only search never collides with a wallet+email search.
func QRCodeKey(walletAddress, email string) string {
	return "qr:wallet=" + walletAddress + ":email=" + email
}

// QRCodeKeys returns every lookup key a patient with these identifiers can be found under
func QRCodeKeys(walletAddress, email string) []string {
	var keys []string
	if walletAddress != "" {
		keys = append(keys, QRCodeKey(walletAddress, ""))
	}
	if email != "" {
		keys = append(keys, QRCodeKey("", email))
	}
	if walletAddress != "" && email != "" {
		keys = append(keys, QRCodeKey(walletAddress, email))
	}
	return keys
}
