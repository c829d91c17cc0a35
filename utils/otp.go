package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// GenerateOTP returns a random 6 digit one-time code.
func GenerateOTP() (string, error) {
	var otp strings.Builder
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		otp.WriteString(n.String())
	}
	return otp.String(), nil
}

// RandomState returns a random hex string for OAuth state parameters.
func RandomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return fmt.Sprintf("%x", b), nil
}
