package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"strings"
)

const (
	VerificationCodeLength = 6
	// 0, 1, I, O and l are left out as easily misread glyphs.
	VerificationCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
)

// GenerateVerificationCode draws a ride completion code from crypto/rand.
// Bytes that would bias the alphabet are rejected and redrawn.
func GenerateVerificationCode() (string, error) {
	n := len(VerificationCodeAlphabet)
	limit := 256 - 256%n

	code := make([]byte, 0, VerificationCodeLength)
	buf := make([]byte, VerificationCodeLength*2)
	for len(code) < VerificationCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, VerificationCodeAlphabet[int(b)%n])
			if len(code) == VerificationCodeLength {
				break
			}
		}
	}
	return string(code), nil
}

// VerificationCodeMatches compares a supplied code against the stored one
// without regard to case.
func VerificationCodeMatches(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	a := []byte(strings.ToUpper(strings.TrimSpace(stored)))
	b := []byte(strings.ToUpper(strings.TrimSpace(supplied)))
	return subtle.ConstantTimeCompare(a, b) == 1
}
