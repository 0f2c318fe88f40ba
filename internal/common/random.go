package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// MakeRandHexString generates size random bytes and returns them encoded
// as hex, so the resulting string is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MakeRandDigits returns a string of n random decimal digits, suitable for
// one-time verification codes. Digits are drawn from crypto/rand.
func MakeRandDigits(n int) (string, error) {
	out := make([]byte, n)
	for i := range out {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("random digit: %w", err)
		}
		out[i] = byte('0' + d.Int64())
	}
	return string(out), nil
}

// WipeByteArray overwrites the contents of b with zeros. Used to clear
// passwords from memory after use. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
