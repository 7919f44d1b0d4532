package auth

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	// LoginCodeAlphabet omits 0/O and 1/I so codes can be read aloud and retyped.
	LoginCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// LoginCodeLength is the number of characters in a login code.
	LoginCodeLength = 8

	// RecoveryCodeAlphabet is plain ASCII alphanumerics.
	RecoveryCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// RecoveryCodeLength is the number of characters in a recovery code.
	RecoveryCodeLength = 128
)

// ErrEmptyAlphabet is returned when GenerateCode is given nothing to draw from.
var ErrEmptyAlphabet = errors.New("alphabet must not be empty")

// GenerateCode returns length characters drawn uniformly from alphabet using crypto/rand.
func GenerateCode(length int, alphabet string) (string, error) {
	if alphabet == "" {
		return "", ErrEmptyAlphabet
	}
	if length <= 0 {
		return "", nil
	}

	runes := []rune(alphabet)
	limit := big.NewInt(int64(len(runes)))

	var b strings.Builder
	b.Grow(length)
	for range length {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteRune(runes[n.Int64()])
	}
	return b.String(), nil
}

// GenerateLoginCode returns a fresh 8-character login code.
func GenerateLoginCode() (string, error) {
	return GenerateCode(LoginCodeLength, LoginCodeAlphabet)
}

// GenerateRecoveryCode returns a fresh 128-character recovery code.
func GenerateRecoveryCode() (string, error) {
	return GenerateCode(RecoveryCodeLength, RecoveryCodeAlphabet)
}

// NormalizeLoginCode strips display formatting and uppercases user input,
// so "abcd-2345" and " ABCD2345 " compare equal.
func NormalizeLoginCode(input string) string {
	s := strings.ReplaceAll(strings.TrimSpace(input), "-", "")
	return strings.ToUpper(s)
}

// FormatLoginCode splits an 8-character code with a dash for display ("ABCD-2345").
// Codes of any other length are returned unchanged.
func FormatLoginCode(code string) string {
	if len(code) != LoginCodeLength {
		return code
	}
	return code[:4] + "-" + code[4:]
}
