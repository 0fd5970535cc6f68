package docserver

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const (
	apiKeyPrefix = "ds_live_"
	keyLength    = 32
)

var base62Chars = []byte("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")

// GenerateAPIKey returns a new random plaintext API key.
func GenerateAPIKey() (string, error) {
	secret := make([]byte, keyLength)
	for i := range secret {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base62Chars))))
		if err != nil {
			return "", fmt.Errorf("generate random key: %w", err)
		}
		secret[i] = base62Chars[n.Int64()]
	}
	return apiKeyPrefix + string(secret), nil
}

// HashKey returns the hex sha256 of a plaintext key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// keyID is the short, loggable identifier for a key.
func keyID(key string) string {
	s := strings.TrimPrefix(key, apiKeyPrefix)
	if len(s) > 8 {
		s = s[:8]
	}
	return s
}

// KeySet holds hashed API keys. Plaintext keys are dropped after construction.
type KeySet struct {
	hashes [][]byte
	ids    []string
}

// NewKeySet hashes keys.
func NewKeySet(keys []string) *KeySet {
	ks := &KeySet{}
	for _, k := range keys {
		sum := sha256.Sum256([]byte(k))
		ks.hashes = append(ks.hashes, sum[:])
		ks.ids = append(ks.ids, keyID(k))
	}
	return ks
}

// Enabled reports whether any key is configured.
func (ks *KeySet) Enabled() bool {
	return len(ks.hashes) > 0
}

// Verify returns the id of the matching key. Every configured key is
// compared so timing does not depend on which one matched.
func (ks *KeySet) Verify(token string) (string, bool) {
	sum := sha256.Sum256([]byte(token))
	match := -1
	for i, h := range ks.hashes {
		if subtle.ConstantTimeCompare(sum[:], h) == 1 {
			match = i
		}
	}
	if match < 0 {
		return "", false
	}
	return ks.ids[match], true
}
