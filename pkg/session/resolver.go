package session

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"
)

var ErrEmptySecret = errors.New("session: secret must not be empty")

// Resolver derives pseudonymous session keys from caller identities.
// Keys are keyed blake2b-256 digests, so the identity cannot be recovered
// without the secret and the same identity maps to the same key across restarts.
type Resolver struct {
	key []byte
}

func NewResolver(secret []byte) (*Resolver, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	// blake2b accepts keys up to 64 bytes; compress whatever was configured.
	k := blake2b.Sum256(secret)
	return &Resolver{key: k[:]}, nil
}

// Resolve returns the session key for identity as 64 lowercase hex characters.
func (r *Resolver) Resolve(identity string) string {
	h, err := blake2b.New256(r.key)
	if err != nil {
		// unreachable: the key is always 32 bytes
		panic(err)
	}
	h.Write([]byte(identity))
	return hex.EncodeToString(h.Sum(nil))
}
