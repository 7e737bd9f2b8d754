package internal

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// CodeDigits is the fixed width of a one-time verification code.
	CodeDigits = 6

	codeBound = 1_000_000
)

// NewVerificationCode returns a cryptographically random code, uniform over
// [0, 1,000,000) and zero-padded to six digits.
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeBound))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeDigits, n.Int64()), nil
}
