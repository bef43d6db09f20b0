// Package token generates the opaque link tokens embedded in shareable
// deep links. Uniqueness is enforced by the user registry, which retries
// on collision.
package token

import (
	"crypto/rand"
	"math/big"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Length of a link token. 62^8 is plenty for collision-checked issuance.
	Length = 8
)

// New returns a random alphanumeric token of the given length.
func New(length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
