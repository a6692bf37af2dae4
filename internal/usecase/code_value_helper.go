package usecase

import (
	"crypto/rand"
	"io"
)

// randomCodeValue draws one candidate code value: the 2-letter campaign
// prefix, 4 independently random uppercase letters, a hyphen and 4 digits.
// Uniqueness is the caller's problem; this only guarantees the shape.
func randomCodeValue(prefix string) (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const digits = "0123456789"

	buf := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}

	out := make([]byte, 0, len(prefix)+9)
	out = append(out, prefix...)
	for i := 0; i < 4; i++ {
		out = append(out, letters[int(buf[i])%len(letters)])
	}
	out = append(out, '-')
	for i := 4; i < 8; i++ {
		out = append(out, digits[int(buf[i])%len(digits)])
	}
	return string(out), nil
}

// valueAddressSpace is 26^4 letter combinations times 10^4 digit combinations
// per prefix. Requested batch sizes must stay a small fraction of this to
// keep expected rejection-sampling retries bounded.
const valueAddressSpace = 26 * 26 * 26 * 26 * 10_000
