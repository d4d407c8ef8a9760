// internal/keygen/keygen.go

// Package keygen produces license keys of the form LS-XX-XXXX-XXXX.
//
// Keys are drawn from the full uppercase-alphanumeric alphabet, giving a
// 36^10 keyspace. Uniqueness is not guaranteed by construction; the
// database unique constraint on the license key column is the backstop,
// and callers retry generation when an insert reports a duplicate.
package keygen

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const (
	// Prefix tags every generated key.
	Prefix = "LS"

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var segments = []int{2, 4, 4}

// Pattern matches every key Generate can produce.
var Pattern = regexp.MustCompile(`^LS-[A-Z0-9]{2}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// Generate returns a new license key. It reads from the process-wide
// crypto/rand source and has no other side effects.
func Generate() (string, error) {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, Prefix)

	for _, length := range segments {
		segment := make([]byte, length)
		for i := range segment {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
			if err != nil {
				return "", err
			}
			segment[i] = alphabet[n.Int64()]
		}
		parts = append(parts, string(segment))
	}

	return strings.Join(parts, "-"), nil
}
